package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lvillar/ganttpdf"
)

func newPlanCmd(app *App) *cobra.Command {
	var project string
	var strict bool

	cmd := &cobra.Command{
		Use:   "plan [input.json]",
		Short: "Show the page size and time range of a chart without rendering it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, name, err := app.source(cmd.Context(), args, project)
			if err != nil {
				return err
			}
			opts, err := app.Config.Options(ganttpdf.WithLogger(app.Log))
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("strict") {
				opts = append(opts, ganttpdf.WithStrictHierarchy(strict))
			}
			rep, err := ganttpdf.Plan(src, opts...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatPlan(name, rep))
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Stored project name or id")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on tasks listed before their parent")
	return cmd
}

func formatPlan(name string, rep *ganttpdf.Report) string {
	var b strings.Builder
	b.WriteString(styleHeader.Render(name))
	b.WriteByte('\n')

	lines := []string{
		field("Rows", fmt.Sprint(rep.Rows)),
		field("Days", fmt.Sprintf("%d  %s .. %s", rep.DayCount,
			rep.Axis.Start.Format("2006-01-02"), rep.Axis.End.Format("2006-01-02"))),
		field("Page", fmt.Sprintf("%.0f x %.0f pt %s", rep.Page.Width, rep.Page.Height, rep.Page.Orientation)),
	}
	for i, m := range rep.Axis.Months {
		label := ""
		if i == 0 {
			label = "Months"
		}
		lines = append(lines, field(label, fmt.Sprintf("%s %s", m.Label, styleDim.Render(fmt.Sprintf("(%d)", m.Count)))))
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}
