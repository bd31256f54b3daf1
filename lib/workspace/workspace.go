package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/pescuma/thanks/lib/consoles"
	"github.com/pescuma/thanks/lib/reports"
	"github.com/pescuma/thanks/lib/server"
	"github.com/pescuma/thanks/lib/storages"
	"github.com/pescuma/thanks/lib/storages/orm"
	"github.com/pescuma/thanks/lib/utils"
)

type Workspace struct {
	console consoles.Console
	storage storages.Storage
}

// NewWorkspace opens the store at location, which can be a .sqlite file,
// :memory:, a mysql:// DSN or a postgres:// URL. An empty location uses
// ./.thanks/thanks.sqlite if the directory exists, or ~/.thanks/thanks.sqlite.
func NewWorkspace(location string, console consoles.Console) (*Workspace, error) {
	if location == "" {
		if _, err := os.Stat("./.thanks"); err == nil {
			location = "./.thanks/thanks.sqlite"
		} else {
			location = "~/.thanks/thanks.sqlite"
		}
	}

	var storage storages.Storage
	var err error
	switch {
	case location == ":memory:":
		storage, err = orm.NewGormStorage(orm.WithSqliteInMemory(), console)

	case strings.HasSuffix(location, ".sqlite"):
		location, err = utils.PathAbs(location)
		if err != nil {
			return nil, err
		}

		err = createWorkspaceDir(console, location)
		if err != nil {
			return nil, err
		}

		storage, err = orm.NewGormStorage(orm.WithSqlite(location), console)

	case strings.HasPrefix(location, "mysql://"):
		d, derr := orm.WithMysql(location)
		if derr != nil {
			return nil, derr
		}

		storage, err = orm.NewGormStorage(d, console)

	case strings.HasPrefix(location, "postgres://"), strings.HasPrefix(location, "postgresql://"):
		d, derr := orm.WithPostgres(location)
		if derr != nil {
			return nil, derr
		}

		storage, err = orm.NewGormStorage(d, console)

	default:
		return nil, errors.Errorf("unknown storage type for %v", location)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error opening workspace")
	}

	return &Workspace{
		console: console,
		storage: storage,
	}, nil
}

func createWorkspaceDir(console consoles.Console, file string) error {
	path := filepath.Dir(file)

	if _, err := os.Stat(path); err != nil {
		console.Printf("Creating workspace at %v\n", path)
		err = os.MkdirAll(path, 0o700)
		if err != nil {
			return err
		}
	}

	return nil
}

func (w *Workspace) Close() error {
	return w.storage.Close()
}

func (w *Workspace) Console() consoles.Console {
	return w.console
}

func (w *Workspace) Reporter() *reports.Reporter {
	return reports.NewReporter(w.storage)
}

func (w *Workspace) SetMaintenance(enabled bool) error {
	return w.storage.WriteConfig(storages.ConfigMaintenance, fmt.Sprintf("%v", enabled))
}

func (w *Workspace) Maintenance() (bool, error) {
	cfg, err := w.storage.LoadConfig()
	if err != nil {
		return false, err
	}

	return cfg[storages.ConfigMaintenance] == "true", nil
}

// SetAuthorVisibility hides or shows every author with the email, in any
// release of any project.
func (w *Workspace) SetAuthorVisibility(email string, visible bool) (int, error) {
	count, err := w.storage.SetAuthorVisibility(email, visible)
	if err != nil {
		return 0, err
	}

	if count == 0 {
		return 0, errors.Wrapf(storages.ErrNotFound, "author %v", email)
	}

	return count, nil
}

// Purge deletes all projects, releases, authors and commits.
func (w *Workspace) Purge() error {
	w.console.Warnf("Deleting all data\n")
	return w.storage.Purge()
}

// Serve runs the JSON API until it fails.
func (w *Workspace) Serve(opts *server.Options) error {
	return server.Run(w.console, w.storage, opts)
}
