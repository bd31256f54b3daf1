package main

import (
	"fmt"

	"github.com/pkg/errors"
)

type AuthorOptOutCmd struct {
	Email string `arg:"" help:"Email of the author."`
}

func (c *AuthorOptOutCmd) Run(ctx *context) error {
	return setAuthorVisibility(ctx, c.Email, false)
}

type AuthorOptInCmd struct {
	Email string `arg:"" help:"Email of the author."`
}

func (c *AuthorOptInCmd) Run(ctx *context) error {
	return setAuthorVisibility(ctx, c.Email, true)
}

func setAuthorVisibility(ctx *context, email string, visible bool) error {
	count, err := ctx.ws.SetAuthorVisibility(email, visible)
	if err != nil {
		return err
	}

	fmt.Printf("%v changed\n", formatCount(count, "author"))
	return nil
}

type MaintenanceOnCmd struct {
}

func (c *MaintenanceOnCmd) Run(ctx *context) error {
	return ctx.ws.SetMaintenance(true)
}

type MaintenanceOffCmd struct {
}

func (c *MaintenanceOffCmd) Run(ctx *context) error {
	return ctx.ws.SetMaintenance(false)
}

type PurgeCmd struct {
	Yes bool `help:"Confirm that all data should be deleted."`
}

func (c *PurgeCmd) Run(ctx *context) error {
	if !c.Yes {
		return errors.New("this deletes all projects, releases and authors: run again with --yes to confirm")
	}

	return ctx.ws.Purge()
}
