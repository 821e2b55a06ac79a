// Command ganttpdf-mcp is an MCP (Model Context Protocol) server that lets
// AI assistants plan and export gantt chart PDFs.
//
// # Installation
//
//	go install github.com/lvillar/ganttpdf/cmd/ganttpdf-mcp@latest
//
// # Configuration for Claude Desktop
//
// Add to ~/.config/claude/claude_desktop_config.json:
//
//	{
//	  "mcpServers": {
//	    "ganttpdf": {
//	      "command": "ganttpdf-mcp",
//	      "args": ["--config", "/home/me/.ganttpdf/ganttpdf.yaml"]
//	    }
//	  }
//	}
//
// # Available Tools
//
//   - export_gantt: Render a chart as a PDF
//   - plan_gantt: Page size, day count and months of a chart
//   - layout_gantt: Draw operations of a chart as JSON
//   - import_gantt: Store a gantt export as a project
//   - list_projects: List stored projects
//
// # Available Resources
//
//   - gantt://layout/default : Default layout dimensions
//   - gantt://palette : Bar colors
//   - gantt://projects : Stored projects
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	flag "github.com/spf13/pflag"

	"github.com/lvillar/ganttpdf/config"
	"github.com/lvillar/ganttpdf/internal/cli"
	"github.com/lvillar/ganttpdf/mcp"
	"github.com/lvillar/ganttpdf/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ganttpdf-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.StringP("config", "c", "", "Configuration file (.yaml, .yml or .toml)")
		dbPath     = flag.String("db", "", "Project database (default $GANTTPDF_DB or ~/.ganttpdf/projects.db)")
		noStore    = flag.Bool("no-store", false, "Disable the project tools")
		logLevel   = flag.String("log-level", "", "Log level: trace, debug, info, warn or error")
	)
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		return err
	}
	if *logLevel == "" {
		*logLevel = cfg.LogLevel
	}
	// stdout carries the protocol.
	log := hclog.New(&hclog.LoggerOptions{
		Name:   "ganttpdf-mcp",
		Level:  hclog.LevelFromString(*logLevel),
		Output: os.Stderr,
	})

	var st *store.Store
	if !*noStore {
		path := *dbPath
		if path == "" {
			path = cfg.Database
		}
		if path == "" {
			path = cli.DefaultDBPath()
		}
		if st, err = store.Open(path); err != nil {
			return err
		}
		defer st.Close()
		log.Info("project store", "path", path)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcp.NewServer(log)
	mcp.RegisterDefaultTools(server, mcp.Env{Config: cfg, Store: st})
	mcp.RegisterDefaultResources(server, st)

	log.Info("serving on stdio", "version", mcp.Version)
	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
