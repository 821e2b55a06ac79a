package cli

import (
	"context"
	"fmt"

	"github.com/lvillar/ganttpdf/importer"
	"github.com/lvillar/ganttpdf/tasktree"
)

// source resolves the chart input: a gantt export file, or a stored project.
func (app *App) source(ctx context.Context, args []string, project string) (tasktree.Source, string, error) {
	switch {
	case len(args) > 0 && project != "":
		return nil, "", fmt.Errorf("give either an input file or --project, not both")
	case len(args) > 0:
		tasks, err := importer.ReadFile(args[0])
		if err != nil {
			return nil, "", err
		}
		return tasktree.NewSliceSource(tasks), args[0], nil
	case project != "":
		st, err := app.Store()
		if err != nil {
			return nil, "", err
		}
		p, err := st.FindProject(ctx, project)
		if err != nil {
			return nil, "", fmt.Errorf("project %q: %w", project, err)
		}
		return st.Source(ctx, p.ID), p.Name, nil
	default:
		return nil, "", fmt.Errorf("an input file or --project is required")
	}
}
