package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lvillar/ganttpdf/store"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"ls"},
		Short:   "List stored projects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.Store()
			if err != nil {
				return err
			}
			projects, err := st.Projects(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatProjects(projects))
			return nil
		},
	}

	cmd.AddCommand(newProjectsRemoveCmd(app))
	return cmd
}

func newProjectsRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name|id>",
		Short: "Delete a stored project and its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := app.Store()
			if err != nil {
				return err
			}
			p, err := st.FindProject(ctx, args[0])
			if err != nil {
				return fmt.Errorf("project %q: %w", args[0], err)
			}
			if err := st.DeleteProject(ctx, p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", p.Name)
			return nil
		},
	}
}

func formatProjects(projects []*store.Project) string {
	if len(projects) == 0 {
		return styleWarn.Render("No projects. Import one with: ganttpdf import <input.json>")
	}
	width := 0
	for _, p := range projects {
		width = max(width, len(p.Name))
	}
	var b strings.Builder
	b.WriteString(styleHeader.Render("Projects"))
	for _, p := range projects {
		fmt.Fprintf(&b, "\n  %-*s  %s  %s", width, p.Name,
			styleDim.Render(p.ID[:8]), styleDim.Render(p.UpdatedAt.Format("2006-01-02 15:04")))
	}
	return b.String()
}
