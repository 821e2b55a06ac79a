package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lvillar/ganttpdf/importer"
	"github.com/lvillar/ganttpdf/store"
)

func newImportCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import <input.json>",
		Short: "Store a gantt export as a project",
		Long: `Import reads a gantt export file and stores its tasks under a project name,
replacing the project's previous task list. The name defaults to the file
name without its extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tasks, err := importer.ReadFile(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				base := filepath.Base(args[0])
				name = strings.TrimSuffix(base, filepath.Ext(base))
			}

			st, err := app.Store()
			if err != nil {
				return err
			}
			p, err := st.FindProject(ctx, name)
			if errors.Is(err, store.ErrNotFound) {
				p, err = st.CreateProject(ctx, name)
			}
			if err != nil {
				return err
			}
			if err := st.SaveTasks(ctx, p.ID, tasks); err != nil {
				return err
			}

			app.Log.Info("imported tasks", "project", p.Name, "id", p.ID, "tasks", len(tasks))
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks into %s\n", len(tasks), styleHeader.Render(p.Name))
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "project", "p", "", "Project name (default: input file name)")
	return cmd
}
