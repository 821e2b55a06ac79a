// Package cli implements the ganttpdf command line.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/lvillar/ganttpdf/config"
	"github.com/lvillar/ganttpdf/store"
)

// App carries the state shared by all commands. Config, Log and the store
// are set up by the root command before a subcommand runs.
type App struct {
	Config *config.Config
	Log    hclog.Logger

	// IsTerminal reports whether w is an interactive terminal.
	IsTerminal func(w io.Writer) bool

	configPath string
	dbPath     string
	logLevel   string
	store      *store.Store
}

// DefaultDBPath returns $GANTTPDF_DB, or ~/.ganttpdf/projects.db.
func DefaultDBPath() string {
	if p := os.Getenv("GANTTPDF_DB"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "projects.db"
	}
	return filepath.Join(home, ".ganttpdf", "projects.db")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewRootCmd creates the top-level "ganttpdf" command.
func NewRootCmd(app *App) *cobra.Command {
	if app.IsTerminal == nil {
		app.IsTerminal = isTerminal
	}

	root := &cobra.Command{
		Use:           "ganttpdf",
		Short:         "Render task lists as single-page gantt chart PDFs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&app.configPath, "config", "c", "", "Configuration file (.yaml, .yml or .toml)")
	flags.StringVar(&app.dbPath, "db", "", "Project database (default $GANTTPDF_DB or ~/.ganttpdf/projects.db)")
	flags.StringVar(&app.logLevel, "log-level", "", "Log level: trace, debug, info, warn or error")

	root.AddCommand(
		newExportCmd(app),
		newPlanCmd(app),
		newImportCmd(app),
		newProjectsCmd(app),
	)
	return root
}

func (app *App) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadOrDefault(app.configPath)
	if err != nil {
		return err
	}
	app.Config = cfg

	level := app.logLevel
	if level == "" {
		level = cfg.LogLevel
	}
	if app.Log == nil {
		app.Log = hclog.New(&hclog.LoggerOptions{
			Name:   "ganttpdf",
			Level:  hclog.LevelFromString(level),
			Output: cmd.ErrOrStderr(),
		})
	}

	if app.dbPath == "" {
		app.dbPath = cfg.Database
	}
	if app.dbPath == "" {
		app.dbPath = DefaultDBPath()
	}
	return nil
}

// Store opens the project database on first use.
func (app *App) Store() (*store.Store, error) {
	if app.store != nil {
		return app.store, nil
	}
	st, err := store.Open(app.dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening project database: %w", err)
	}
	app.Log.Debug("opened project database", "path", app.dbPath)
	app.store = st
	return st, nil
}

func (app *App) close() error {
	if app.store == nil {
		return nil
	}
	err := app.store.Close()
	app.store = nil
	return err
}
