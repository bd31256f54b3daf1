package server

import (
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/pescuma/thanks/lib/model"
	"github.com/pescuma/thanks/lib/storages"
)

// findProject accepts either the URL path or the name of the project.
func (s *server) findProject(key string) (*model.Project, error) {
	projs, err := s.reports.Projects()
	if err != nil {
		return nil, err
	}

	for _, p := range projs {
		if p.URLPath == key {
			return p, nil
		}
	}
	for _, p := range projs {
		if p.Name == key {
			return p, nil
		}
	}

	return nil, errors.Wrapf(storages.ErrNotFound, "project %v", key)
}

func (s *server) toProject(p *model.Project) gin.H {
	return gin.H{
		"name":       p.Name,
		"urlPath":    p.URLPath,
		"githubName": p.GithubName,
	}
}

func (s *server) toRelease(r *model.Release) gin.H {
	return gin.H{
		"version":    r.Version,
		"unreleased": r.IsUnreleased(),
		"link":       r.Link,
	}
}
