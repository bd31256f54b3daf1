package orm

import (
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/pescuma/thanks/lib/consoles"
	"github.com/pescuma/thanks/lib/model"
	"github.com/pescuma/thanks/lib/storages"
)

const countChunkSize = 10000

type gormStorage struct {
	mutex   *sync.Mutex
	db      *gorm.DB
	console consoles.Console
	inTx    bool
}

func NewGormStorage(d gorm.Dialector, console consoles.Console) (storages.Storage, error) {
	l := logger.New(
		consoles.Logger(console),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(d, &gorm.Config{
		NamingStrategy: &NamingStrategy{},
		Logger:         l,
	})
	if err != nil {
		return nil, err
	}

	if sd, ok := d.(*sqlite.Dialector); ok && sd.DSN == ":memory:" {
		// Every connection to :memory: gets its own database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	err = db.AutoMigrate(
		&sqlConfig{},
		&sqlProject{},
		&sqlRelease{},
		&sqlAuthor{},
		&sqlCommit{},
	)
	if err != nil {
		return nil, err
	}

	return &gormStorage{
		mutex:   &sync.Mutex{},
		db:      db,
		console: console,
	}, nil
}

func (s *gormStorage) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}

	return db.Close()
}

func (s *gormStorage) Transaction(fn func(tx storages.Storage) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormStorage{
			mutex:   s.mutex,
			db:      tx,
			console: s.console,
			inTx:    true,
		})
	})
}

func (s *gormStorage) ListProjects() ([]*model.Project, error) {
	var rows []*sqlProject
	err := s.db.Order("name").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return lo.Map(rows, func(r *sqlProject, _ int) *model.Project { return r.ToModel() }), nil
}

func (s *gormStorage) GetProject(name string) (*model.Project, error) {
	var rows []*sqlProject
	err := s.db.Where("name = ?", name).Limit(1).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.Wrapf(storages.ErrNotFound, "project %v", name)
	}

	return rows[0].ToModel(), nil
}

func (s *gormStorage) CreateProject(proj *model.Project) error {
	row := newSqlProject(proj)

	err := s.db.Create(row).Error
	if err != nil {
		return errors.Wrapf(err, "error creating project %v", proj.Name)
	}

	proj.ID = row.ID
	return nil
}

func (s *gormStorage) DeleteProject(name string) error {
	return s.Transaction(func(tx storages.Storage) error {
		db := tx.(*gormStorage).db

		proj, err := tx.GetProject(name)
		if err != nil {
			return err
		}

		releases := db.Model(&sqlRelease{}).Select("id").Where("project_id = ?", proj.ID)

		err = db.Where("release_id IN (?)", releases).Delete(&sqlCommit{}).Error
		if err != nil {
			return err
		}

		err = db.Where("project_id = ?", proj.ID).Delete(&sqlRelease{}).Error
		if err != nil {
			return err
		}

		return db.Delete(&sqlProject{}, proj.ID).Error
	})
}

func (s *gormStorage) ListReleases(projectID model.ID) ([]*model.Release, error) {
	var rows []*sqlRelease
	err := s.db.Where("project_id = ?", projectID).Order("position").Order("id").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return lo.Map(rows, func(r *sqlRelease, _ int) *model.Release { return r.ToModel() }), nil
}

func (s *gormStorage) GetRelease(projectID model.ID, version string) (*model.Release, error) {
	var rows []*sqlRelease
	err := s.db.Where("project_id = ? AND version = ?", projectID, version).Limit(1).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.Wrapf(storages.ErrNotFound, "release %v", version)
	}

	return rows[0].ToModel(), nil
}

func (s *gormStorage) GetOrCreateRelease(release *model.Release) (*model.Release, error) {
	row := newSqlRelease(release)
	row.ID = 0

	err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error
	if err != nil {
		return nil, errors.Wrapf(err, "error creating release %v", release.Version)
	}

	return s.GetRelease(release.ProjectID, release.Version)
}

func (s *gormStorage) UpdateRelease(release *model.Release) error {
	row := newSqlRelease(release)

	result := s.db.Model(&sqlRelease{}).
		Where("id = ?", release.ID).
		Select("ref", "previous", "position", "visible", "link").
		Updates(row)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		err := s.db.Model(&sqlRelease{}).Where("id = ?", release.ID).Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			return errors.Wrapf(storages.ErrNotFound, "release %v", release.Version)
		}
	}

	return nil
}

func (s *gormStorage) FindAuthors(ids []model.Identity) ([]*model.Author, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	pairs := lo.Map(ids, func(i model.Identity, _ int) []any { return []any{i.Name, i.Email} })

	var rows []*sqlAuthor
	err := s.db.Where("(name, email) IN ?", pairs).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return lo.Map(rows, func(r *sqlAuthor, _ int) *model.Author { return r.ToModel() }), nil
}

func (s *gormStorage) CreateAuthorsIfAbsent(ids []model.Identity) error {
	if len(ids) == 0 {
		return nil
	}

	rows := lo.Map(ids, func(i model.Identity, _ int) *sqlAuthor { return newSqlAuthor(i) })

	db := s.db.Session(&gorm.Session{
		CreateBatchSize: 1000,
	})

	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (s *gormStorage) SetAuthorVisibility(email string, visible bool) (int, error) {
	result := s.db.Model(&sqlAuthor{}).
		Where("LOWER(email) = LOWER(?)", email).
		Update("visible", visible)
	if result.Error != nil {
		return 0, result.Error
	}

	var count int64
	err := s.db.Model(&sqlAuthor{}).Where("LOWER(email) = LOWER(?)", email).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

func (s *gormStorage) UpsertCommits(commits []*model.Commit) error {
	if len(commits) == 0 {
		return nil
	}

	rows := lo.Map(commits, func(c *model.Commit, _ int) *sqlCommit { return newSqlCommit(c) })

	db := s.db.Session(&gorm.Session{
		CreateBatchSize: 300,
	})

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sha"}},
		DoUpdates: clause.AssignmentColumns([]string{"release_id", "author_id", "updated_at"}),
	}).Create(&rows).Error
}

func (s *gormStorage) CountReleaseCommits(releaseID model.ID, shas []string) (int, error) {
	total := 0

	for _, chunk := range lo.Chunk(shas, countChunkSize) {
		var count int64
		err := s.db.Model(&sqlCommit{}).
			Where("release_id = ? AND sha IN ?", releaseID, chunk).
			Count(&count).Error
		if err != nil {
			return 0, err
		}

		total += int(count)
	}

	return total, nil
}

func (s *gormStorage) QueryCommitCounts(query *storages.CommitCountQuery) ([]*storages.AuthorCommits, error) {
	q := s.db.Table("commits").
		Select("authors.id AS author_id, authors.name AS name, authors.email AS email, COUNT(*) AS commits").
		Joins("JOIN authors ON authors.id = commits.author_id").
		Joins("JOIN releases ON releases.id = commits.release_id").
		Where("releases.project_id = ?", query.ProjectID)

	if query.ReleaseID != nil {
		q = q.Where("commits.release_id = ?", *query.ReleaseID)
	}

	if !query.IncludeHidden {
		q = q.Where("authors.visible = ? AND releases.visible = ?", true, true)
	}

	var result []*storages.AuthorCommits
	err := q.Group("authors.id, authors.name, authors.email").Scan(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *gormStorage) LoadConfig() (map[string]string, error) {
	var rows []*sqlConfig
	err := s.db.Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return lo.Associate(rows, func(r *sqlConfig) (string, string) { return r.Key, r.Value }), nil
}

func (s *gormStorage) WriteConfig(key string, value string) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(newSqlConfig(key, value)).Error
}

func (s *gormStorage) Purge() error {
	return s.Transaction(func(tx storages.Storage) error {
		db := tx.(*gormStorage).db.Session(&gorm.Session{AllowGlobalUpdate: true})

		for _, table := range []any{&sqlCommit{}, &sqlRelease{}, &sqlAuthor{}, &sqlProject{}} {
			err := db.Delete(table).Error
			if err != nil {
				return err
			}
		}

		return nil
	})
}
