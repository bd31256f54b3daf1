package main

import (
	"github.com/pescuma/thanks/lib/workspace"
)

type UpdateCmd struct {
	Projects    []string `arg:"" optional:"" help:"Projects to update. Default is all."`
	Fetch       bool     `help:"Fetch branches and tags from the remote first."`
	Mailmap     string   `help:"Mailmap file to use instead of the .mailmap of the repositories." type:"existingfile"`
	Link        string   `help:"Template of release links. {version} is replaced by the release version."`
	Parallelism int      `default:"1" help:"How many projects to update at the same time."`
}

func (c *UpdateCmd) Run(ctx *context) error {
	return ctx.ws.Update(&workspace.UpdateOptions{
		Projects:     c.Projects,
		Fetch:        c.Fetch,
		MailmapFile:  c.Mailmap,
		LinkTemplate: c.Link,
		Parallelism:  c.Parallelism,
	})
}
