package server

import (
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/pescuma/thanks/lib/model"
)

type ProjectParams struct {
	Project string `uri:"project"`
}

type ReleaseParams struct {
	Project string `uri:"project"`
	Release string `uri:"release"`
}

type LeaderboardParams struct {
	GridParams
	Project string `uri:"project"`
	Release string `form:"release"`
}

func (s *server) initProjects(r *gin.RouterGroup) {
	r.GET("/projects", get(s.projectsList))
	r.GET("/projects/:project", getP[ProjectParams](s.projectGet))
	r.GET("/projects/:project/all-time", getP[ProjectParams](s.projectAllTime))
	r.GET("/projects/:project/leaderboard", getP[LeaderboardParams](s.projectLeaderboard))
	r.GET("/projects/:project/releases/:release", getP[ReleaseParams](s.releaseGet))
}

func (s *server) projectsList() (any, error) {
	projs, err := s.reports.Projects()
	if err != nil {
		return nil, err
	}

	return lo.Map(projs, func(p *model.Project, _ int) gin.H { return s.toProject(p) }), nil
}

func (s *server) projectGet(params *ProjectParams) (any, error) {
	proj, err := s.findProject(params.Project)
	if err != nil {
		return nil, err
	}

	rels, err := s.reports.Releases(proj.Name)
	if err != nil {
		return nil, err
	}

	result := s.toProject(proj)
	result["releases"] = lo.Map(rels, func(r *model.Release, _ int) gin.H { return s.toRelease(r) })
	return result, nil
}

func (s *server) projectAllTime(params *ProjectParams) (any, error) {
	proj, err := s.findProject(params.Project)
	if err != nil {
		return nil, err
	}

	return s.reports.AllTime(proj.Name)
}

func (s *server) projectLeaderboard(params *LeaderboardParams) (any, error) {
	proj, err := s.findProject(params.Project)
	if err != nil {
		return nil, err
	}

	entries, err := s.reports.Leaderboard(proj.Name, params.Release)
	if err != nil {
		return nil, err
	}

	return gin.H{
		"project": proj.Name,
		"release": params.Release,
		"total":   len(entries),
		"data":    paginate(entries, params.Offset, params.Limit),
	}, nil
}

func (s *server) releaseGet(params *ReleaseParams) (any, error) {
	proj, err := s.findProject(params.Project)
	if err != nil {
		return nil, err
	}

	return s.reports.Release(proj.Name, params.Release)
}
