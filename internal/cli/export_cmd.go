package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lvillar/ganttpdf"
	"github.com/lvillar/ganttpdf/pdfsurface"
)

type exportFlags struct {
	project   string
	output    string
	title     string
	brand     string
	icon      string
	watermark string
	qr        string
	strict    bool
}

func (f *exportFlags) options(cmd *cobra.Command) []ganttpdf.Option {
	var opts []ganttpdf.Option
	if cmd.Flags().Changed("title") {
		opts = append(opts, ganttpdf.WithTitle(f.title))
	}
	if cmd.Flags().Changed("brand") {
		opts = append(opts, ganttpdf.WithBrand(f.brand))
	}
	if cmd.Flags().Changed("icon") {
		opts = append(opts, ganttpdf.WithIcon(f.icon))
	}
	if cmd.Flags().Changed("strict") {
		opts = append(opts, ganttpdf.WithStrictHierarchy(f.strict))
	}
	if f.watermark != "" {
		opts = append(opts, ganttpdf.WithWatermark(pdfsurface.Watermark{Text: f.watermark}))
	}
	if f.qr != "" {
		opts = append(opts, ganttpdf.WithCode(pdfsurface.SymbologyQR, f.qr))
	}
	return opts
}

func newExportCmd(app *App) *cobra.Command {
	var f exportFlags

	cmd := &cobra.Command{
		Use:   "export [input.json]",
		Short: "Export a gantt chart PDF",
		Long: `Export renders a gantt export file, or a stored project, as a single-page PDF.

Without --output the PDF is written to standard output, unless that is a
terminal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, name, err := app.source(ctx, args, f.project)
			if err != nil {
				return err
			}
			opts, err := app.Config.Options(append(f.options(cmd), ganttpdf.WithLogger(app.Log))...)
			if err != nil {
				return err
			}

			var rep *ganttpdf.Report
			if f.output == "" || f.output == "-" {
				out := cmd.OutOrStdout()
				if app.IsTerminal(out) {
					return fmt.Errorf("refusing to write a PDF to a terminal; use --output or redirect")
				}
				var buf bytes.Buffer
				if rep, err = ganttpdf.Export(ctx, &buf, src, opts...); err != nil {
					return err
				}
				if _, err := buf.WriteTo(out); err != nil {
					return err
				}
			} else {
				if rep, err = ganttpdf.ExportFile(ctx, f.output, src, opts...); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s to %s (%d rows, %d days)\n", name, f.output, rep.Rows, rep.DayCount)
			}
			for _, ae := range rep.AssetErrors {
				app.Log.Warn("cell left empty", "cell", ae.Cell, "ref", ae.Ref, "error", ae.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.project, "project", "p", "", "Stored project name or id")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output PDF file")
	cmd.Flags().StringVar(&f.title, "title", "", "Chart title")
	cmd.Flags().StringVar(&f.brand, "brand", "", "Text left of the title")
	cmd.Flags().StringVar(&f.icon, "icon", "", "Title icon: file, URL or data URI")
	cmd.Flags().StringVar(&f.watermark, "watermark", "", "Diagonal watermark text")
	cmd.Flags().StringVar(&f.qr, "qr", "", "Content of a QR code in the title band")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "Fail on tasks listed before their parent")
	return cmd
}

