package orm

import (
	"time"

	"github.com/pescuma/thanks/lib/model"
)

type sqlProject struct {
	ID         model.ID
	Name       string `gorm:"size:255;uniqueIndex"`
	URLPath    string
	GithubName string
	RepoDir    string
	RepoURL    string
	Branch     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func newSqlProject(p *model.Project) *sqlProject {
	return &sqlProject{
		ID:         p.ID,
		Name:       p.Name,
		URLPath:    p.URLPath,
		GithubName: p.GithubName,
		RepoDir:    p.RepoDir,
		RepoURL:    p.RepoURL,
		Branch:     p.Branch,
	}
}

func (s *sqlProject) ToModel() *model.Project {
	return &model.Project{
		ID:         s.ID,
		Name:       s.Name,
		URLPath:    s.URLPath,
		GithubName: s.GithubName,
		RepoDir:    s.RepoDir,
		RepoURL:    s.RepoURL,
		Branch:     s.Branch,
	}
}
