package orm

import (
	"time"

	"github.com/pescuma/thanks/lib/model"
)

type sqlRelease struct {
	ID        model.ID
	ProjectID model.ID `gorm:"uniqueIndex:idx_releases_version"`
	Version   string   `gorm:"size:255;uniqueIndex:idx_releases_version"`
	Ref       string
	Previous  string
	Position  int
	Visible   bool
	Link      string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func newSqlRelease(r *model.Release) *sqlRelease {
	return &sqlRelease{
		ID:        r.ID,
		ProjectID: r.ProjectID,
		Version:   r.Version,
		Ref:       r.Ref,
		Previous:  r.Previous,
		Position:  r.Position,
		Visible:   r.Visible,
		Link:      r.Link,
	}
}

func (s *sqlRelease) ToModel() *model.Release {
	return &model.Release{
		ID:        s.ID,
		ProjectID: s.ProjectID,
		Version:   s.Version,
		Ref:       s.Ref,
		Previous:  s.Previous,
		Position:  s.Position,
		Visible:   s.Visible,
		Link:      s.Link,
	}
}
