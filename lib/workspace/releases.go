package workspace

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/pescuma/thanks/lib/attribution"
	"github.com/pescuma/thanks/lib/authors"
	"github.com/pescuma/thanks/lib/model"
	"github.com/pescuma/thanks/lib/releases"
)

type ReleaseOptions struct {
	Project string
	Version string
	// Previous is the release the commit range starts from. Defaults to the
	// newest release in the history of Ref.
	Previous string
	// Ref is the revision of the release. Defaults to the version.
	Ref    string
	Link   string
	Hidden bool

	MailmapFile string
}

// AddRelease creates a release newer than all the existing ones and attributes
// its commits. The unreleased release, if present, is moved after it. Returns
// the number of commits attributed to the new release.
func (w *Workspace) AddRelease(opts *ReleaseOptions) (*model.Release, int, error) {
	if opts.Version == "" {
		return nil, 0, errors.New("release version is required")
	}
	if opts.Version == model.UnreleasedVersion {
		return nil, 0, errors.Errorf("%v is reserved for unreleased commits", model.UnreleasedVersion)
	}

	proj, err := w.storage.GetProject(opts.Project)
	if err != nil {
		return nil, 0, err
	}

	existing, err := w.storage.ListReleases(proj.ID)
	if err != nil {
		return nil, 0, err
	}

	if lo.ContainsBy(existing, func(r *model.Release) bool { return r.Version == opts.Version }) {
		return nil, 0, errors.Errorf("%v: release %v already exists", proj.Name, opts.Version)
	}

	unreleased, hasUnreleased := lo.Find(existing, func(r *model.Release) bool { return r.IsUnreleased() })
	tagged := lo.Filter(existing, func(r *model.Release, _ int) bool { return !r.IsUnreleased() })

	repo, mm, err := w.openRepository(w.console, proj, opts.MailmapFile, false)
	if err != nil {
		return nil, 0, err
	}

	ref := opts.Ref
	if ref == "" {
		ref = opts.Version
	}

	refs := lo.SliceToMap(tagged, func(r *model.Release) (string, string) { return r.Version, r.RevisionRef() })
	refs[opts.Version] = ref
	refs[model.UnreleasedVersion] = proj.HeadRef()
	if hasUnreleased {
		refs[model.UnreleasedVersion] = unreleased.RevisionRef()
	}
	isAncestor := func(ancestor string, descendant string) (bool, error) {
		return repo.IsAncestor(refs[ancestor], refs[descendant])
	}

	versions := lo.Map(tagged, func(r *model.Release, _ int) string { return r.Version })

	position := 0
	if len(tagged) > 0 {
		newest := lo.MaxBy(tagged, func(a, b *model.Release) bool { return a.Position > b.Position })
		position = newest.Position + 1
	}

	previous := opts.Previous
	if previous == "" {
		previous, err = releases.Predecessor(versions, opts.Version, isAncestor)
		if err != nil {
			return nil, 0, err
		}
	}

	release, err := w.storage.GetOrCreateRelease(&model.Release{
		ProjectID: proj.ID,
		Version:   opts.Version,
		Ref:       opts.Ref,
		Previous:  previous,
		Position:  position,
		Visible:   !opts.Hidden,
		Link:      opts.Link,
	})
	if err != nil {
		return nil, 0, err
	}

	if hasUnreleased {
		// The new release is not always in the history of the branch
		unreleased.Previous, err = releases.Predecessor(append(versions, release.Version), model.UnreleasedVersion, isAncestor)
		if err != nil {
			return nil, 0, err
		}
		unreleased.Position = position + 1

		err = w.storage.UpdateRelease(unreleased)
		if err != nil {
			return nil, 0, err
		}
	}

	store := authors.NewStore(w.console, w.storage, mm, nil)
	engine := attribution.NewEngine(w.console, w.storage, store, repo, nil)

	count, err := engine.AssignRelease(proj, release)
	if err != nil {
		return nil, 0, err
	}

	if hasUnreleased {
		_, err = engine.AssignRelease(proj, unreleased)
		if err != nil {
			return nil, 0, err
		}
	}

	return release, count, nil
}

func (w *Workspace) SetReleaseVisibility(project string, version string, visible bool) error {
	proj, err := w.storage.GetProject(project)
	if err != nil {
		return err
	}

	release, err := w.storage.GetRelease(proj.ID, version)
	if err != nil {
		return err
	}

	release.Visible = visible

	return w.storage.UpdateRelease(release)
}

func (w *Workspace) ListReleases(project string) ([]*model.Release, error) {
	proj, err := w.storage.GetProject(project)
	if err != nil {
		return nil, err
	}

	return w.storage.ListReleases(proj.ID)
}

