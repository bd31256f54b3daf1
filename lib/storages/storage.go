package storages

import (
	"github.com/pkg/errors"

	"github.com/pescuma/thanks/lib/model"
)

var ErrNotFound = errors.New("not found")

const ConfigMaintenance = "maintenance:enabled"

type Storage interface {
	// Transaction runs fn with a storage bound to a single transaction. If fn
	// returns an error everything is rolled back.
	Transaction(fn func(tx Storage) error) error

	ListProjects() ([]*model.Project, error)
	GetProject(name string) (*model.Project, error)
	CreateProject(proj *model.Project) error
	// DeleteProject removes the project, its releases and their commits.
	DeleteProject(name string) error

	ListReleases(projectID model.ID) ([]*model.Release, error)
	GetRelease(projectID model.ID, version string) (*model.Release, error)
	// GetOrCreateRelease inserts the release if no release with the same version
	// exists for the project and returns the stored one.
	GetOrCreateRelease(release *model.Release) (*model.Release, error)
	UpdateRelease(release *model.Release) error

	// FindAuthors returns the authors matching the identities. Missing ones are
	// not returned.
	FindAuthors(ids []model.Identity) ([]*model.Author, error)
	// CreateAuthorsIfAbsent inserts the identities, ignoring the ones that
	// already exist.
	CreateAuthorsIfAbsent(ids []model.Identity) error
	SetAuthorVisibility(email string, visible bool) (int, error)

	// UpsertCommits inserts new commits and moves existing ones to the given
	// release and author.
	UpsertCommits(commits []*model.Commit) error
	// CountReleaseCommits returns how many of shas are attributed to the release.
	CountReleaseCommits(releaseID model.ID, shas []string) (int, error)
	QueryCommitCounts(query *CommitCountQuery) ([]*AuthorCommits, error)

	LoadConfig() (map[string]string, error)
	WriteConfig(key string, value string) error

	// Purge removes all projects, releases, commits and authors.
	Purge() error

	Close() error
}

type CommitCountQuery struct {
	ProjectID model.ID
	// ReleaseID restricts the count to one release.
	ReleaseID *model.ID
	// IncludeHidden also counts opted-out authors and hidden releases.
	IncludeHidden bool
}

type AuthorCommits struct {
	AuthorID model.ID
	Name     string
	Email    string
	Commits  int
}
