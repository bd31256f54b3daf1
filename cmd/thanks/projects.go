package main

import (
	"fmt"

	"github.com/pescuma/thanks/lib/workspace"
)

type ProjectAddCmd struct {
	Name       string `arg:"" help:"Project name."`
	RepoDir    string `arg:"" help:"Where the git repository is, or where to clone it." type:"path"`
	URL        string `help:"URL of the repository to clone."`
	Branch     string `help:"Branch with unreleased commits. Default is HEAD."`
	URLPath    string `help:"Path used in the API. Default is the name."`
	GithubName string `help:"Name of the project on GitHub."`
}

func (c *ProjectAddCmd) Run(ctx *context) error {
	_, err := ctx.ws.AddProject(&workspace.ProjectOptions{
		Name:       c.Name,
		URLPath:    c.URLPath,
		GithubName: c.GithubName,
		RepoDir:    c.RepoDir,
		RepoURL:    c.URL,
		Branch:     c.Branch,
	})
	return err
}

type ProjectRemoveCmd struct {
	Name string `arg:"" help:"Project name."`
}

func (c *ProjectRemoveCmd) Run(ctx *context) error {
	return ctx.ws.RemoveProject(c.Name)
}

type ProjectListCmd struct {
}

func (c *ProjectListCmd) Run(ctx *context) error {
	projs, err := ctx.ws.ListProjects()
	if err != nil {
		return err
	}

	for _, p := range projs {
		fmt.Printf("%v\t%v\t%v\n", p.Name, p.RepoDir, p.RepoURL)
	}

	return nil
}
