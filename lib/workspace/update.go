package workspace

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/pescuma/thanks/lib/attribution"
	"github.com/pescuma/thanks/lib/authors"
	"github.com/pescuma/thanks/lib/consoles"
	"github.com/pescuma/thanks/lib/mailmap"
	"github.com/pescuma/thanks/lib/model"
	"github.com/pescuma/thanks/lib/ranking"
	"github.com/pescuma/thanks/lib/releases"
	"github.com/pescuma/thanks/lib/repos"
	"github.com/pescuma/thanks/lib/utils"
)

type UpdateOptions struct {
	// Projects to update. Empty means all.
	Projects []string
	// Fetch pulls branches and tags from the remote before updating.
	Fetch bool
	// MailmapFile replaces the .mailmap of the repositories.
	MailmapFile  string
	LinkTemplate string
	// Parallelism is the number of projects updated at the same time.
	Parallelism int
}

// UpdateError lists the projects that could not be updated.
type UpdateError struct {
	Failed map[string]error
}

func (e *UpdateError) Error() string {
	names := lo.Keys(e.Failed)
	sort.Strings(names)

	msgs := lo.Map(names, func(name string, _ int) string { return fmt.Sprintf("%v: %v", name, e.Failed[name]) })
	return fmt.Sprintf("error updating %v projects: %v", len(names), strings.Join(msgs, "; "))
}

func (e *UpdateError) Unwrap() []error {
	return lo.Values(e.Failed)
}

// Update discovers the releases of the projects from their tags and attributes
// all their commits.
func (w *Workspace) Update(opts *UpdateOptions) error {
	if opts == nil {
		opts = &UpdateOptions{}
	}

	projs, err := w.selectProjects(opts.Projects)
	if err != nil {
		return err
	}

	errs := utils.ParallelForEach(projs, func(proj *model.Project) error {
		return w.updateProject(proj, opts)
	}, utils.ParallelOptions{Routines: opts.Parallelism})
	if errs == nil {
		return nil
	}

	result := &UpdateError{Failed: map[string]error{}}
	for i, err := range errs {
		if err != nil {
			result.Failed[projs[i].Name] = err
		}
	}

	return result
}

func (w *Workspace) selectProjects(names []string) ([]*model.Project, error) {
	if len(names) == 0 {
		return w.storage.ListProjects()
	}

	result := make([]*model.Project, 0, len(names))
	for _, name := range names {
		proj, err := w.storage.GetProject(name)
		if err != nil {
			return nil, err
		}

		result = append(result, proj)
	}

	return result, nil
}

func (w *Workspace) updateProject(proj *model.Project, opts *UpdateOptions) error {
	console := w.console.WithField("project", proj.Name)

	repo, mm, err := w.openRepository(console, proj, opts.MailmapFile, opts.Fetch)
	if err != nil {
		return err
	}

	tags, err := repo.Tags()
	if err != nil {
		return err
	}

	ordered, skipped := releases.Order(tags)
	if len(skipped) > 0 {
		console.Warnf("Ignoring %v tags that are not versions: %v\n", len(skipped), strings.Join(skipped, ", "))
	}

	chain, err := releases.Chain(proj, ordered, &releases.ChainOptions{
		LinkTemplate: opts.LinkTemplate,
		IsAncestor:   repo.IsAncestor,
	})
	if err != nil {
		return err
	}

	stored := make([]*model.Release, 0, len(chain))
	for _, r := range chain {
		s, err := w.storage.GetOrCreateRelease(r)
		if err != nil {
			return err
		}

		if s.Ref != r.Ref || s.Previous != r.Previous || s.Position != r.Position {
			s.Ref = r.Ref
			s.Previous = r.Previous
			s.Position = r.Position

			err = w.storage.UpdateRelease(s)
			if err != nil {
				return err
			}
		}

		stored = append(stored, s)
	}

	console.Printf("%v releases found\n", len(stored))

	store := authors.NewStore(console, w.storage, mm, nil)

	err = store.WarmCache(repo)
	if err != nil {
		return err
	}

	engine := attribution.NewEngine(console, w.storage, store, repo, nil)

	return engine.AssignAll(proj, stored)
}

func (w *Workspace) openRepository(console consoles.Console, proj *model.Project, mailmapFile string, fetch bool) (*repos.GitRepository, *mailmap.Mailmap, error) {
	repo, err := repos.OpenOrClone(console, proj.RepoDir, proj.RepoURL)
	if err != nil {
		return nil, nil, err
	}

	if fetch && proj.RepoURL != "" {
		console.Printf("Fetching %v...\n", proj.RepoURL)

		err = repo.Fetch()
		if err != nil {
			return nil, nil, err
		}
	}

	mm, err := loadMailmap(repo, mailmapFile)
	if err != nil {
		return nil, nil, err
	}

	return repo, mm, nil
}

func loadMailmap(repo repos.Repository, file string) (*mailmap.Mailmap, error) {
	if file != "" {
		contents, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.Wrapf(err, "error reading mailmap %v", file)
		}

		return mailmap.Parse(string(contents)), nil
	}

	text, err := repo.Mailmap()
	if err != nil {
		return nil, err
	}

	return mailmap.Parse(text), nil
}

// Scores ranks the authors of the repository at dir without using the store.
func (w *Workspace) Scores(dir string, mailmapFile string) ([]*ranking.Entry, error) {
	repo, err := repos.Open(dir)
	if err != nil {
		return nil, err
	}

	mm, err := loadMailmap(repo, mailmapFile)
	if err != nil {
		return nil, err
	}

	return ranking.ScoreRepository(repo, mm)
}
