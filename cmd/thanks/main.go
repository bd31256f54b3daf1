package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/pescuma/thanks/lib/consoles"
	"github.com/pescuma/thanks/lib/workspace"
)

var cli struct {
	Workspace string `short:"w" env:"THANKS_WORKSPACE" help:"Where to store data: a .sqlite file, :memory:, mysql://<dsn> or postgres://<url>. Default is ./.thanks or ~/.thanks if that does not exist. DATABASE_URL is used if set."`

	Project struct {
		Add    ProjectAddCmd    `cmd:"" help:"Add a project."`
		Remove ProjectRemoveCmd `cmd:"" help:"Remove a project with its releases."`
		List   ProjectListCmd   `cmd:"" help:"List projects."`
	} `cmd:""`

	Release struct {
		Add  ReleaseAddCmd  `cmd:"" help:"Add a release and attribute its commits."`
		List ReleaseListCmd `cmd:"" help:"List the releases of a project."`
		Show ReleaseShowCmd `cmd:"" help:"Show a hidden release."`
		Hide ReleaseHideCmd `cmd:"" help:"Hide a release from all outputs."`
	} `cmd:""`

	Author struct {
		OptOut AuthorOptOutCmd `cmd:"" help:"Hide an author, by email, from all outputs."`
		OptIn  AuthorOptInCmd  `cmd:"" help:"Show an author that opted out."`
	} `cmd:""`

	Maintenance struct {
		On  MaintenanceOnCmd  `cmd:"" help:"Make the server answer with 503."`
		Off MaintenanceOffCmd `cmd:"" help:"Make the server answer requests."`
	} `cmd:""`

	Update       UpdateCmd       `cmd:"" help:"Discover releases from tags and attribute all commits."`
	Contributors ContributorsCmd `cmd:"" help:"Show the contributors of a release or of all releases."`
	Leaderboard  LeaderboardCmd  `cmd:"" help:"Rank the contributors of a release or of all releases."`
	Scores       ScoresCmd       `cmd:"" help:"Rank the authors of a repository without storing anything."`
	Purge        PurgeCmd        `cmd:"" help:"Delete all stored data."`
	Serve        ServeCmd        `cmd:"" help:"Start the JSON API server."`
}

type context struct {
	ws *workspace.Workspace
}

func main() {
	// A missing .env is fine
	_ = godotenv.Load()

	ctx := kong.Parse(&cli, kong.ShortUsageOnError())

	location := cli.Workspace
	if location == "" {
		location = os.Getenv("DATABASE_URL")
	}

	ws, err := workspace.NewWorkspace(location, consoles.NewStdOutConsole())
	ctx.FatalIfErrorf(err)
	defer ws.Close()

	err = ctx.Run(&context{
		ws: ws,
	})
	ctx.FatalIfErrorf(err)
}
