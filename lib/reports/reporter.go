// Package reports builds the contributor lists shown to users.
package reports

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/pescuma/thanks/lib/model"
	"github.com/pescuma/thanks/lib/ranking"
	"github.com/pescuma/thanks/lib/storages"
)

type Contributors struct {
	Project      string   `json:"project"`
	Release      string   `json:"release,omitempty"`
	Link         string   `json:"link,omitempty"`
	Names        []string `json:"names"`
	Contributors int      `json:"contributors"`
	Commits      int      `json:"commits"`
}

type Reporter struct {
	storage storages.Storage
}

func NewReporter(storage storages.Storage) *Reporter {
	return &Reporter{
		storage: storage,
	}
}

func (r *Reporter) Projects() ([]*model.Project, error) {
	return r.storage.ListProjects()
}

// Releases lists the visible releases of the project, unreleased first and
// then newest to oldest.
func (r *Reporter) Releases(project string) ([]*model.Release, error) {
	proj, err := r.storage.GetProject(project)
	if err != nil {
		return nil, err
	}

	all, err := r.storage.ListReleases(proj.ID)
	if err != nil {
		return nil, err
	}

	result := lo.Filter(all, func(rel *model.Release, _ int) bool { return rel.Visible })

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].IsUnreleased() != result[j].IsUnreleased() {
			return result[i].IsUnreleased()
		}
		return result[i].Position > result[j].Position
	})

	return result, nil
}

// Release lists who contributed to one visible release.
func (r *Reporter) Release(project string, version string) (*Contributors, error) {
	proj, rel, err := r.findRelease(project, version)
	if err != nil {
		return nil, err
	}

	counts, err := r.storage.QueryCommitCounts(&storages.CommitCountQuery{ProjectID: proj.ID, ReleaseID: &rel.ID})
	if err != nil {
		return nil, err
	}

	result := newContributors(proj, counts)
	result.Release = rel.Version
	result.Link = rel.Link
	return result, nil
}

// AllTime lists who contributed to any visible release of the project.
func (r *Reporter) AllTime(project string) (*Contributors, error) {
	proj, err := r.storage.GetProject(project)
	if err != nil {
		return nil, err
	}

	counts, err := r.storage.QueryCommitCounts(&storages.CommitCountQuery{ProjectID: proj.ID})
	if err != nil {
		return nil, err
	}

	return newContributors(proj, counts), nil
}

// Leaderboard ranks the contributors of a release, or of all visible releases
// when version is empty.
func (r *Reporter) Leaderboard(project string, version string) ([]*ranking.Entry, error) {
	var proj *model.Project
	query := &storages.CommitCountQuery{}

	if version == "" {
		var err error
		proj, err = r.storage.GetProject(project)
		if err != nil {
			return nil, err
		}
	} else {
		var rel *model.Release
		var err error
		proj, rel, err = r.findRelease(project, version)
		if err != nil {
			return nil, err
		}
		query.ReleaseID = &rel.ID
	}

	query.ProjectID = proj.ID

	counts, err := r.storage.QueryCommitCounts(query)
	if err != nil {
		return nil, err
	}

	entries := ranking.Rank(lo.Map(counts, func(c *storages.AuthorCommits, _ int) *ranking.AuthorCount {
		return &ranking.AuthorCount{Author: c.Name, Email: c.Email, Commits: c.Commits}
	}))

	for _, e := range entries {
		e.Email = ""
	}

	return entries, nil
}

func (r *Reporter) findRelease(project string, version string) (*model.Project, *model.Release, error) {
	proj, err := r.storage.GetProject(project)
	if err != nil {
		return nil, nil, err
	}

	rel, err := r.storage.GetRelease(proj.ID, version)
	if err != nil {
		return nil, nil, err
	}

	if !rel.Visible {
		return nil, nil, errors.Wrapf(storages.ErrNotFound, "release %v", version)
	}

	return proj, rel, nil
}

func newContributors(proj *model.Project, counts []*storages.AuthorCommits) *Contributors {
	names := lo.Uniq(lo.Map(counts, func(c *storages.AuthorCommits, _ int) string { return c.Name }))

	return &Contributors{
		Project:      proj.Name,
		Names:        ranking.SortForDisplay(names),
		Contributors: len(counts),
		Commits:      lo.SumBy(counts, func(c *storages.AuthorCommits) int { return c.Commits }),
	}
}
