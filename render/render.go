package render

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/hashicorp/go-hclog"

	"github.com/lvillar/ganttpdf/axis"
	"github.com/lvillar/ganttpdf/layout"
	"github.com/lvillar/ganttpdf/tasktree"
)

// Document is everything the renderer paints on one page.
type Document struct {
	Title string
	Brand string
	Icon  string // asset reference, may be empty
	Code  *Code

	Rows []*tasktree.Record
	Axis axis.Axis
	Page layout.Page
}

// AssetError is a non-fatal failure to draw one image or code.
type AssetError struct {
	Cell string // e.g. "title icon", "row 1.2 status"
	Ref  string
	Err  error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("render: %s (%s): %v", e.Cell, e.Ref, e.Err)
}

func (e *AssetError) Unwrap() error { return e.Err }

// Report lists the cells that were left empty because an asset failed.
type Report struct {
	AssetErrors []*AssetError
}

// Renderer paints documents onto a Surface. A Renderer is used for a single
// Render call.
type Renderer struct {
	s      Surface
	cfg    layout.Config
	log    hclog.Logger
	report Report
}

// New returns a Renderer that paints with cfg onto s. A nil logger discards
// output.
func New(s Surface, cfg layout.Config, log hclog.Logger) *Renderer {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Renderer{s: s, cfg: cfg, log: log}
}

// Render paints doc top to bottom and serializes the surface to w. Failed
// assets leave their cell empty and are listed in the report; only a
// serialization failure is returned as an error.
func (r *Renderer) Render(ctx context.Context, doc *Document, w io.Writer) (Report, error) {
	if p, ok := r.s.(Prefetcher); ok {
		p.Prefetch(ctx, assetRefs(doc))
	}

	r.paintTitle(ctx, doc)
	r.paintScale(doc)
	r.paintGridHeader()
	bottom := r.paintRows(ctx, doc)
	r.log.Debug("painted rows", "rows", len(doc.Rows), "bottom", bottom)

	if err := r.s.Serialize(w); err != nil {
		return r.report, err
	}
	return r.report, nil
}

func assetRefs(doc *Document) []string {
	seen := make(map[string]bool)
	var refs []string
	add := func(ref string) {
		if ref != "" && !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	add(doc.Icon)
	_ = tasktree.Walk(doc.Rows, func(rec *tasktree.Record, _ int) error {
		add(rec.StatusGlyph)
		return nil
	})
	return refs
}

func (r *Renderer) assetFailed(cell, ref string, err error) {
	r.log.Warn("asset skipped", "cell", cell, "ref", ref, "error", err)
	r.report.AssetErrors = append(r.report.AssetErrors, &AssetError{Cell: cell, Ref: ref, Err: err})
}

func (r *Renderer) text(font layout.Font, size float64, c layout.Color, h layout.HAlign) TextStyle {
	return TextStyle{Font: font, Size: size, Color: c, HAlign: h, VAlign: layout.AlignMiddle}
}

func (r *Renderer) paintTitle(ctx context.Context, doc *Document) {
	cfg := r.cfg
	band := cfg.TitleRect(doc.Page)
	r.s.FillRect(band, cfg.Colors.TitleBand)

	if doc.Icon != "" {
		icon := layout.Rect{X: 0, Y: 0, W: cfg.IconWidth, H: cfg.TitleHeight}
		err := r.s.DrawImage(ctx, doc.Icon, icon, ImageOptions{Fit: FitCenterAtScale, Scale: cfg.IconScale})
		if err != nil {
			r.assetFailed("title icon", doc.Icon, err)
		}
	}

	// The square at the right end of the band is reserved for the code.
	brand := layout.Rect{X: cfg.IconWidth, Y: 0, W: doc.Page.Width - cfg.TitleHeight - cfg.IconWidth, H: cfg.TitleHeight}
	r.s.DrawText(doc.Brand, brand, r.text(cfg.Fonts.SemiBold, cfg.Fonts.TitleSize, cfg.Colors.InverseText, layout.AlignLeft))
	r.s.DrawText(doc.Title, band, r.text(cfg.Fonts.Heavy, cfg.Fonts.TitleSize, cfg.Colors.InverseText, layout.AlignCenter))

	if doc.Code == nil || doc.Code.Content == "" {
		return
	}
	cd, ok := r.s.(CodeDrawer)
	if !ok {
		r.log.Debug("surface cannot draw codes, skipping", "symbology", doc.Code.Symbology)
		return
	}
	inset := cfg.TitleHeight / 8
	square := layout.Rect{X: doc.Page.Width - cfg.TitleHeight, Y: 0, W: cfg.TitleHeight, H: cfg.TitleHeight}.Inset(inset, inset)
	if err := cd.DrawCode(*doc.Code, square); err != nil {
		r.assetFailed("title code", doc.Code.Symbology, err)
	}
}

// paintScale draws the grid and timeline frame, then the day and month
// header bands, one day column at a time from left to right.
func (r *Renderer) paintScale(doc *Document) {
	cfg := r.cfg
	line := cfg.Colors.Line
	page := doc.Page

	grid := layout.Rect{X: 0, Y: cfg.TitleHeight, W: cfg.GridWidth, H: page.Height - cfg.TitleHeight}
	r.s.DrawBorder(grid, line, EdgeRight)
	grid.H = cfg.ScaleHeight
	r.s.DrawBorder(grid, line, EdgeBottom)

	header := layout.Rect{X: cfg.GridWidth, Y: cfg.TitleHeight, W: page.Width - cfg.GridWidth, H: cfg.ScaleHeight}
	r.s.DrawBorder(header, line, EdgeBottom)
	header.Y += cfg.RowHeight
	r.s.DrawBorder(header, line, EdgeTop)

	dayTop := cfg.TitleHeight + cfg.RowHeight
	months := doc.Axis.Months
	next := 0
	for _, col := range doc.Axis.Columns {
		x := cfg.GridWidth + float64(col.Index)*cfg.DayWidth
		column := layout.Rect{X: x, Y: dayTop, W: cfg.DayWidth, H: page.Height - dayTop}
		cell := layout.Rect{X: x, Y: dayTop, W: cfg.DayWidth, H: cfg.RowHeight}
		label := strconv.Itoa(col.Date.Day())

		if col.Weekend {
			body := layout.Rect{X: x + 1, Y: dayTop + cfg.RowHeight, W: cfg.DayWidth - 1, H: column.H - cfg.RowHeight}
			r.s.FillRect(body, cfg.Colors.WeekendBody)
			r.s.FillRect(cell, cfg.Colors.WeekendHeader)
			r.s.DrawBorder(column, line, EdgeRight)
			r.s.DrawText(label, cell, r.text(cfg.Fonts.Regular, cfg.Fonts.Size, cfg.Colors.InverseText, layout.AlignCenter))
		} else {
			r.s.DrawBorder(column, line, EdgeRight)
			r.s.DrawText(label, cell, r.text(cfg.Fonts.Regular, cfg.Fonts.Size, cfg.Colors.Text, layout.AlignCenter))
		}

		if next < len(months) && col.Index == months[next].End()-1 {
			r.paintMonth(months[next])
			next++
		}
	}
}

func (r *Renderer) paintMonth(span axis.MonthSpan) {
	cfg := r.cfg
	cell := layout.Rect{
		X: cfg.GridWidth + float64(span.Start)*cfg.DayWidth,
		Y: cfg.TitleHeight,
		W: float64(span.Count) * cfg.DayWidth,
		H: cfg.RowHeight,
	}
	r.s.DrawBorder(cell, cfg.Colors.Line, EdgeRight)
	r.s.DrawText(span.Month.Format(cfg.MonthFormat), cell, r.text(cfg.Fonts.Regular, cfg.Fonts.Size, cfg.Colors.Text, layout.AlignCenter))
}

func (r *Renderer) paintGridHeader() {
	cfg := r.cfg
	x := cfg.GridPadding
	for _, col := range cfg.GridColumns() {
		cell := layout.Rect{X: x, Y: cfg.TitleHeight, W: col.Width, H: cfg.ScaleHeight}
		r.s.DrawText(col.Header, cell, r.text(cfg.Fonts.SemiBold, cfg.Fonts.Size, cfg.Colors.Text, col.HeaderAlign))
		x += col.Width
	}
}

// paintRows paints every record in pre-order and returns the y coordinate
// below the last row.
func (r *Renderer) paintRows(ctx context.Context, doc *Document) float64 {
	ax := doc.Axis
	y := r.cfg.RowsTop()
	_ = tasktree.Walk(doc.Rows, func(rec *tasktree.Record, _ int) error {
		y = r.paintRow(ctx, doc.Page, ax, rec, y)
		return nil
	})
	return y
}

func (r *Renderer) paintRow(ctx context.Context, page layout.Page, ax axis.Axis, rec *tasktree.Record, y float64) float64 {
	cfg := r.cfg
	row := layout.Rect{X: 0, Y: y, W: page.Width, H: cfg.RowHeight}
	r.s.DrawBorder(row, cfg.Colors.Line, EdgeBottom)

	font := cfg.Fonts.Regular
	if rec.Project {
		font = cfg.Fonts.SemiBold
	}
	x := cfg.GridPadding
	for _, col := range cfg.GridColumns() {
		cell := layout.Rect{X: x, Y: y, W: col.Width, H: cfg.RowHeight}
		x += col.Width

		if col.Kind == layout.ColumnStatus {
			if rec.StatusGlyph == "" {
				continue
			}
			err := r.s.DrawImage(ctx, rec.StatusGlyph, cell, ImageOptions{Fit: FitCenterAtScale, Scale: cfg.StatusScale})
			if err != nil {
				r.assetFailed("row "+rowName(rec)+" status", rec.StatusGlyph, err)
			}
			continue
		}
		r.s.DrawText(cellText(cfg, col.Kind, rec), cell, r.text(font, cfg.Fonts.Size, cfg.Colors.Text, col.CellAlign))
	}

	timeline := layout.Rect{
		X: cfg.GridWidth,
		Y: y + cfg.BarInset,
		W: page.Width - cfg.GridWidth,
		H: cfg.RowHeight - 2*cfg.BarInset,
	}
	bar := layout.MapRange(timeline, ax.Wall(rec.Start), ax.Wall(rec.End), ax.Wall(ax.Start), ax.Wall(ax.GridEnd()))
	if rec.Project {
		r.paintBracket(bar)
	} else {
		r.paintBar(rec, bar)
	}
	return y + cfg.RowHeight
}

// paintBracket marks a project row with a thin bar that has a wedge hanging
// from each end.
func (r *Renderer) paintBracket(bar layout.Rect) {
	cfg := r.cfg
	top := bar
	top.H = cfg.BracketThickness
	r.s.FillRect(top, cfg.Colors.Bracket)

	wedge := layout.Rect{X: bar.X, Y: bar.Y + cfg.BracketThickness, W: cfg.WedgeSize, H: cfg.WedgeSize}
	r.s.FillTriangle(wedge, cfg.Colors.Bracket, CornerTopLeft)
	wedge.X = bar.Right() - cfg.WedgeSize
	r.s.FillTriangle(wedge, cfg.Colors.Bracket, CornerTopRight)
}

func (r *Renderer) paintBar(rec *tasktree.Record, bar layout.Rect) {
	cfg := r.cfg
	r.s.DrawRoundedRect(bar, cfg.PaletteColor(rec.ColorIndex), cfg.Colors.BarBorder, cfg.BarRadius)
	style := r.text(cfg.Fonts.Regular, cfg.Fonts.Size, cfg.Colors.InverseText, layout.AlignLeft)
	style.Padding = cfg.LabelPadding
	r.s.DrawText(rec.Title, bar, style)
}

func cellText(cfg layout.Config, kind layout.ColumnKind, rec *tasktree.Record) string {
	switch kind {
	case layout.ColumnWBS:
		return rec.WBS
	case layout.ColumnTitle:
		return rec.Title
	case layout.ColumnStart:
		return rec.Start.Format(cfg.DateFormat)
	case layout.ColumnEnd:
		return rec.End.Format(cfg.DateFormat)
	case layout.ColumnPercent:
		return strconv.Itoa(rec.Progress) + "%"
	case layout.ColumnDays:
		return strconv.Itoa(rec.Days)
	}
	return ""
}

func rowName(rec *tasktree.Record) string {
	if rec.WBS != "" {
		return rec.WBS
	}
	return rec.ID
}
