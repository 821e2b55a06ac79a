// Package ganttpdf renders a hierarchical task list as a single-page gantt
// chart PDF.
//
// A chart has a title band, a task grid on the left, and a timeline on the
// right with one column per day, grouped under month headers. The page is
// sized so that every row and every day fits; charts are never split.
//
// Basic usage:
//
//	src := tasktree.NewSliceSource(tasks)
//	report, err := ganttpdf.ExportFile(ctx, "plan.pdf", src,
//	    ganttpdf.WithTitle("Office fit-out"),
//	    ganttpdf.WithBrand("ACME"),
//	)
package ganttpdf

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/lvillar/ganttpdf/assets"
	"github.com/lvillar/ganttpdf/axis"
	"github.com/lvillar/ganttpdf/layout"
	"github.com/lvillar/ganttpdf/pdfsurface"
	"github.com/lvillar/ganttpdf/render"
	"github.com/lvillar/ganttpdf/tasktree"
)

// Report describes a finished export.
type Report struct {
	Rows     int
	DayCount int
	Axis     axis.Axis
	Page     layout.Page
	// AssetErrors lists the cells left empty because an image or code
	// could not be drawn.
	AssetErrors []*render.AssetError
}

// Plan flattens src and computes the chart geometry without drawing it.
func Plan(src tasktree.Source, opts ...Option) (*Report, error) {
	c := newExportConfig(opts)
	_, rep, err := c.plan(src)
	return rep, err
}

func (c *exportConfig) plan(src tasktree.Source) (*tasktree.Result, *Report, error) {
	if src == nil {
		return nil, nil, newExportError("Flatten", ErrNoSource)
	}
	if err := c.layout.Validate(); err != nil {
		return nil, nil, newExportError("Validate", err)
	}
	res, err := tasktree.Flatten(src, tasktree.Options{
		StatusIcons:    c.statusIcons,
		WorkTypeStyles: c.styles,
		PaletteSize:    len(c.layout.Palette),
		Strict:         c.strict,
		Logger:         c.log.Named("flatten"),
	})
	if err != nil {
		return nil, nil, newExportError("Flatten", err)
	}

	var ax axis.Axis
	if res.Span != nil {
		ax = axis.Build(res.Span.Start, res.Span.End)
	} else {
		ax = axis.Build(axis.DefaultMonth(c.clock()))
		c.log.Debug("no leaf tasks, using the current month", "start", ax.Start)
	}
	page := layout.Plan(len(ax.Columns), res.Count, c.layout)
	c.log.Debug("planned page", "rows", res.Count, "days", ax.DayCount,
		"width", page.Width, "height", page.Height, "orientation", page.Orientation)

	return res, &Report{Rows: res.Count, DayCount: ax.DayCount, Axis: ax, Page: page}, nil
}

// Export renders the tasks yielded by src as a gantt chart and writes the
// document to w.
//
// A missing or broken image only empties its cell; those failures are listed
// in the report. Errors are returned as *ExportError.
func Export(ctx context.Context, w io.Writer, src tasktree.Source, opts ...Option) (*Report, error) {
	c := newExportConfig(opts)
	res, rep, err := c.plan(src)
	if err != nil {
		return nil, err
	}

	s, err := c.newSurface(rep.Page)
	if err != nil {
		return nil, newExportError("Surface", err)
	}
	doc := &render.Document{
		Title: c.title,
		Brand: c.brand,
		Icon:  c.icon,
		Code:  c.code,
		Rows:  res.Roots,
		Axis:  rep.Axis,
		Page:  rep.Page,
	}
	painted, err := render.New(s, c.layout, c.log.Named("render")).Render(ctx, doc, w)
	rep.AssetErrors = painted.AssetErrors
	if err != nil {
		return rep, newExportError("Serialize", fmt.Errorf("%w: %w", ErrSerialize, err))
	}
	c.log.Info("exported gantt chart", "rows", rep.Rows, "days", rep.DayCount, "asset_errors", len(rep.AssetErrors))
	return rep, nil
}

func (c *exportConfig) newSurface(page layout.Page) (render.Surface, error) {
	if c.surface != nil {
		return c.surface(page)
	}
	loader := c.loader
	if loader == nil {
		loader = assets.NewLoader(assets.WithLogger(c.log.Named("assets")))
	}
	opts := []pdfsurface.Option{
		pdfsurface.WithLoader(loader),
		pdfsurface.WithLogger(c.log.Named("pdf")),
		pdfsurface.WithMetadata(pdfsurface.Metadata{Title: c.title, Author: c.author, Subject: c.brand}),
	}
	if c.background != nil {
		opts = append(opts, pdfsurface.WithBackground(*c.background))
	}
	if c.watermark != nil {
		opts = append(opts, pdfsurface.WithWatermark(*c.watermark))
	}
	return pdfsurface.New(page, opts...)
}

// ExportFile is Export writing to the named file. The file is removed again
// if the export fails.
func ExportFile(ctx context.Context, name string, src tasktree.Source, opts ...Option) (*Report, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, newExportError("Create", err)
	}
	rep, err := Export(ctx, f, src, opts...)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = newExportError("Serialize", fmt.Errorf("%w: %w", ErrSerialize, cerr))
	}
	if err != nil {
		os.Remove(name)
		return rep, err
	}
	return rep, nil
}
