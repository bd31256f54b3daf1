package workspace

import (
	"github.com/pkg/errors"

	"github.com/pescuma/thanks/lib/model"
	"github.com/pescuma/thanks/lib/storages"
)

type ProjectOptions struct {
	Name       string
	URLPath    string
	GithubName string
	RepoDir    string
	RepoURL    string
	Branch     string
}

func (w *Workspace) AddProject(opts *ProjectOptions) (*model.Project, error) {
	if opts.Name == "" {
		return nil, errors.New("project name is required")
	}
	if opts.RepoDir == "" {
		return nil, errors.Errorf("%v: repository dir is required", opts.Name)
	}

	_, err := w.storage.GetProject(opts.Name)
	switch {
	case err == nil:
		return nil, errors.Errorf("project %v already exists", opts.Name)
	case !errors.Is(err, storages.ErrNotFound):
		return nil, err
	}

	proj := &model.Project{
		Name:       opts.Name,
		URLPath:    opts.URLPath,
		GithubName: opts.GithubName,
		RepoDir:    opts.RepoDir,
		RepoURL:    opts.RepoURL,
		Branch:     opts.Branch,
	}
	if proj.URLPath == "" {
		proj.URLPath = proj.Name
	}

	err = w.storage.CreateProject(proj)
	if err != nil {
		return nil, err
	}

	w.console.Printf("Project %v added\n", proj.Name)

	return proj, nil
}

// RemoveProject deletes the project with its releases and commits. Authors are
// kept since they can be shared with other projects.
func (w *Workspace) RemoveProject(name string) error {
	err := w.storage.DeleteProject(name)
	if err != nil {
		return err
	}

	w.console.Printf("Project %v removed\n", name)

	return nil
}

func (w *Workspace) ListProjects() ([]*model.Project, error) {
	return w.storage.ListProjects()
}
