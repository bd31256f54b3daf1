// Package attribution assigns every commit of a release to the release and to
// its canonical author.
package attribution

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/pescuma/thanks/lib/authors"
	"github.com/pescuma/thanks/lib/consoles"
	"github.com/pescuma/thanks/lib/history"
	"github.com/pescuma/thanks/lib/model"
	"github.com/pescuma/thanks/lib/repos"
	"github.com/pescuma/thanks/lib/storages"
)

type Options struct {
	// ChunkSize is the maximum number of commits written per statement.
	// Defaults to 10000.
	ChunkSize int
}

type Engine struct {
	console consoles.Console
	storage storages.Storage
	authors *authors.Store
	repo    repos.Repository
	walker  *history.RangeWalker
	opts    Options
}

func NewEngine(console consoles.Console, storage storages.Storage, store *authors.Store, repo repos.Repository, opts *Options) *Engine {
	o := Options{
		ChunkSize: 10000,
	}
	if opts != nil && opts.ChunkSize > 0 {
		o.ChunkSize = opts.ChunkSize
	}

	return &Engine{
		console: console,
		storage: storage,
		authors: store,
		repo:    repo,
		walker:  history.NewRangeWalker(repo),
		opts:    o,
	}
}

// Assign attributes the commits to the release with the given version. A commit
// already attributed to another release is moved. Either all commits are
// attributed or none is. Returns the number of commits attributed.
func (e *Engine) Assign(project *model.Project, version string, shas []string) (int, error) {
	e.console.PushPrefix("%v %v: ", project.Name, version)
	defer e.console.PopPrefix()

	release, err := e.storage.GetRelease(project.ID, version)
	if err != nil {
		return 0, err
	}

	shas = lo.Uniq(shas)
	if len(shas) == 0 {
		e.console.Printf("no commits to assign\n")
		return 0, nil
	}

	raw := make([]model.Identity, len(shas))
	for i, sha := range shas {
		raw[i], err = e.repo.Author(sha)
		if err != nil {
			return 0, err
		}
	}

	people, err := e.authors.GetOrCreateBatch(raw)
	if err != nil {
		return 0, err
	}

	commits := make([]*model.Commit, len(shas))
	for i, sha := range shas {
		commits[i] = &model.Commit{
			Sha:       sha,
			ReleaseID: release.ID,
			AuthorID:  people[i].ID,
		}
	}

	err = e.storage.Transaction(func(tx storages.Storage) error {
		for _, chunk := range lo.Chunk(commits, e.opts.ChunkSize) {
			err := tx.UpsertCommits(chunk)
			if err != nil {
				return err
			}
		}

		count, err := tx.CountReleaseCommits(release.ID, shas)
		if err != nil {
			return err
		}

		if count != len(shas) {
			return errors.Wrapf(ErrConsistency, "%v %v: expected %v commits but found %v",
				project.Name, version, len(shas), count)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	e.console.Printf("%v commits assigned\n", len(shas))

	return len(shas), nil
}

// AssignRelease computes the commits of the release from its previous release
// and attributes them.
func (e *Engine) AssignRelease(project *model.Project, release *model.Release) (int, error) {
	shas, err := e.commitsOf(project, release)
	if err != nil {
		return 0, err
	}

	return e.Assign(project, release.Version, shas)
}

func (e *Engine) commitsOf(project *model.Project, release *model.Release) ([]string, error) {
	if release.Previous == "" {
		return e.walker.CommitsUpTo(release.RevisionRef())
	}

	previousRef := release.Previous

	previous, err := e.storage.GetRelease(project.ID, release.Previous)
	switch {
	case err == nil:
		previousRef = previous.RevisionRef()
	case !errors.Is(err, storages.ErrNotFound):
		return nil, err
	}

	return e.walker.CommitsBetween(previousRef, release.RevisionRef())
}

// AssignAll attributes the releases in order. Failing releases are reported
// and skipped. If any failed, the returned error is a *BatchError.
func (e *Engine) AssignAll(project *model.Project, releases []*model.Release) error {
	var failed []*ReleaseError

	for _, release := range releases {
		_, err := e.AssignRelease(project, release)
		if err != nil {
			e.console.Errorf("%v %v: error assigning commits: %v\n", project.Name, release.Version, err)

			failed = append(failed, &ReleaseError{
				Project: project.Name,
				Release: release.Version,
				Err:     err,
			})
		}
	}

	if len(failed) > 0 {
		return &BatchError{Errors: failed}
	}

	return nil
}
