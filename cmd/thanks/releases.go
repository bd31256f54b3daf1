package main

import (
	"fmt"

	"github.com/pescuma/thanks/lib/workspace"
)

type ReleaseAddCmd struct {
	Project  string `arg:"" help:"Project name."`
	Version  string `arg:"" help:"Release version."`
	Previous string `help:"Release to compute the commits from. Default is the newest release."`
	Ref      string `help:"Revision of the release. Default is the version."`
	Link     string `help:"Link to the release notes."`
	Hidden   bool   `help:"Create the release hidden."`
	Mailmap  string `help:"Mailmap file to use instead of the .mailmap of the repository." type:"existingfile"`
}

func (c *ReleaseAddCmd) Run(ctx *context) error {
	rel, count, err := ctx.ws.AddRelease(&workspace.ReleaseOptions{
		Project:     c.Project,
		Version:     c.Version,
		Previous:    c.Previous,
		Ref:         c.Ref,
		Link:        c.Link,
		Hidden:      c.Hidden,
		MailmapFile: c.Mailmap,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Release %v added with %v\n", rel.Version, formatCount(count, "commit"))
	return nil
}

type ReleaseListCmd struct {
	Project string `arg:"" help:"Project name."`
}

func (c *ReleaseListCmd) Run(ctx *context) error {
	rels, err := ctx.ws.ListReleases(c.Project)
	if err != nil {
		return err
	}

	for _, r := range rels {
		visibility := "visible"
		if !r.Visible {
			visibility = "hidden"
		}

		fmt.Printf("%v\t%v\tfrom %v\t%v\n", r.Version, r.RevisionRef(), r.Previous, visibility)
	}

	return nil
}

type releaseArgs struct {
	Project string `arg:"" help:"Project name."`
	Version string `arg:"" help:"Release version."`
}

type ReleaseShowCmd struct {
	releaseArgs
}

func (c *ReleaseShowCmd) Run(ctx *context) error {
	return ctx.ws.SetReleaseVisibility(c.Project, c.Version, true)
}

type ReleaseHideCmd struct {
	releaseArgs
}

func (c *ReleaseHideCmd) Run(ctx *context) error {
	return ctx.ws.SetReleaseVisibility(c.Project, c.Version, false)
}
