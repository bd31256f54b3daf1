package main

import (
	"fmt"
	"strings"

	"github.com/pescuma/thanks/lib/ranking"
	"github.com/pescuma/thanks/lib/reports"
)

type ContributorsCmd struct {
	Project string `arg:"" help:"Project name."`
	Release string `arg:"" optional:"" help:"Release version. Default is all releases."`
}

func (c *ContributorsCmd) Run(ctx *context) error {
	r := ctx.ws.Reporter()

	var result *reports.Contributors
	var err error
	if c.Release == "" {
		result, err = r.AllTime(c.Project)
	} else {
		result, err = r.Release(c.Project, c.Release)
	}
	if err != nil {
		return err
	}

	title := result.Project
	if result.Release != "" {
		title += " " + result.Release
	}

	fmt.Printf("%v: %v, %v\n", title, formatCount(result.Contributors, "contributor"), formatCount(result.Commits, "commit"))
	if result.Link != "" {
		fmt.Printf("%v\n", result.Link)
	}
	fmt.Println()
	fmt.Println(strings.Join(result.Names, "\n"))

	return nil
}

type LeaderboardCmd struct {
	Project string `arg:"" help:"Project name."`
	Release string `arg:"" optional:"" help:"Release version. Default is all releases."`
	Limit   int    `default:"0" help:"Maximum number of entries to show. 0 shows all."`
}

func (c *LeaderboardCmd) Run(ctx *context) error {
	entries, err := ctx.ws.Reporter().Leaderboard(c.Project, c.Release)
	if err != nil {
		return err
	}

	printEntries(entries, c.Limit)
	return nil
}

type ScoresCmd struct {
	Dir     string `arg:"" help:"Git repository." type:"existingdir"`
	Mailmap string `help:"Mailmap file to use instead of the .mailmap of the repository." type:"existingfile"`
	Limit   int    `default:"0" help:"Maximum number of entries to show. 0 shows all."`
}

func (c *ScoresCmd) Run(ctx *context) error {
	entries, err := ctx.ws.Scores(c.Dir, c.Mailmap)
	if err != nil {
		return err
	}

	printEntries(entries, c.Limit)
	return nil
}

func printEntries(entries []*ranking.Entry, limit int) {
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}

	for _, e := range entries {
		author := e.Author
		if e.Email != "" {
			author = fmt.Sprintf("%v <%v>", e.Author, e.Email)
		}

		fmt.Printf("%4v. %v - %v\n", e.Rank, author, formatCount(e.Commits, "commit"))
	}
}
