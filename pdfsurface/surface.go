// Package pdfsurface implements render.Surface on top of the gofpdf engine.
//
// A Surface holds exactly one page, sized by the page planner, with its
// origin at the top-left corner and point units. Text is drawn with the
// core fonts, so strings are translated to cp1252 before they are written.
package pdfsurface

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/hashicorp/go-hclog"
	"github.com/jung-kurt/gofpdf"

	"github.com/lvillar/ganttpdf/assets"
	"github.com/lvillar/ganttpdf/layout"
	"github.com/lvillar/ganttpdf/render"
)

// ErrNoImage is returned by DrawImage when the Surface has no asset loader.
var ErrNoImage = errors.New("pdfsurface: no asset loader configured")

// kappa is the Bézier control distance for a quarter circle of radius 1.
const kappa = 0.5522847498

var (
	_ render.Surface    = (*Surface)(nil)
	_ render.CodeDrawer = (*Surface)(nil)
	_ render.Prefetcher = (*Surface)(nil)
)

// Surface draws onto a single gofpdf page.
type Surface struct {
	pdf  *gofpdf.Fpdf
	page layout.Page
	tr   func(string) string
	log  hclog.Logger

	loader     *assets.Loader
	images     map[string]*assets.Asset
	background *Background
	watermark  *Watermark
	meta       Metadata
}

// New creates a Surface with one page of the given geometry.
func New(page layout.Page, opts ...Option) (*Surface, error) {
	if !(page.Width > 0) || !(page.Height > 0) {
		return nil, fmt.Errorf("pdfsurface: invalid page size %vx%v", page.Width, page.Height)
	}
	s := &Surface{
		page:   page,
		log:    hclog.NewNullLogger(),
		images: make(map[string]*assets.Asset),
	}
	for _, opt := range opts {
		opt(s)
	}

	// gofpdf swaps the custom size for landscape pages, so it is given
	// portrait-ordered dimensions.
	orientation, size := "P", gofpdf.SizeType{Wd: page.Width, Ht: page.Height}
	if page.Orientation == layout.OrientationLandscape {
		orientation, size = "L", gofpdf.SizeType{Wd: page.Height, Ht: page.Width}
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           size,
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCellMargin(0)
	pdf.SetCreator("ganttpdf", true)
	if s.meta.Title != "" {
		pdf.SetTitle(s.meta.Title, true)
	}
	if s.meta.Author != "" {
		pdf.SetAuthor(s.meta.Author, true)
	}
	if s.meta.Subject != "" {
		pdf.SetSubject(s.meta.Subject, true)
	}
	s.pdf = pdf
	s.tr = pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	if s.background != nil {
		if err := s.drawBackground(); err != nil {
			return nil, err
		}
	}
	if pdf.Err() {
		return nil, fmt.Errorf("pdfsurface: new page: %w", pdf.Error())
	}
	s.log.Debug("page created", "width", page.Width, "height", page.Height, "orientation", page.Orientation)
	return s, nil
}

// Page returns the page geometry of the Surface.
func (s *Surface) Page() layout.Page { return s.page }

func (s *Surface) fill(c layout.Color)  { s.pdf.SetFillColor(c.R, c.G, c.B) }
func (s *Surface) draw(c layout.Color)  { s.pdf.SetDrawColor(c.R, c.G, c.B) }
func (s *Surface) color(c layout.Color) { s.pdf.SetTextColor(c.R, c.G, c.B) }

// DrawText draws a single line of text aligned inside r and clipped to it.
func (s *Surface) DrawText(text string, r layout.Rect, style render.TextStyle) {
	if text == "" || r.W <= 0 || r.H <= 0 {
		return
	}
	pdf := s.pdf
	pdf.SetFont(style.Font.Family, style.Font.Style, style.Size)
	s.color(style.Color)
	pdf.SetCellMargin(style.Padding)

	pdf.ClipRect(r.X, r.Y, r.W, r.H, false)
	pdf.SetXY(r.X, r.Y)
	pdf.CellFormat(r.W, r.H, s.tr(text), "", 0, alignStr(style.HAlign, style.VAlign), false, 0, "")
	pdf.ClipEnd()
	pdf.SetCellMargin(0)
}

func alignStr(h layout.HAlign, v layout.VAlign) string {
	a := "L"
	switch h {
	case layout.AlignCenter:
		a = "C"
	case layout.AlignRight:
		a = "R"
	}
	switch v {
	case layout.AlignTop:
		a += "T"
	case layout.AlignBottom:
		a += "B"
	default:
		a += "M"
	}
	return a
}

// FillRect fills r with c.
func (s *Surface) FillRect(r layout.Rect, c layout.Color) {
	if r.W <= 0 || r.H <= 0 {
		return
	}
	s.fill(c)
	s.pdf.Rect(r.X, r.Y, r.W, r.H, "F")
}

// DrawRoundedRect fills r with rounded corners and strokes its outline. The
// radius is clamped to half the shorter side.
func (s *Surface) DrawRoundedRect(r layout.Rect, fill, border layout.Color, radius float64) {
	if r.W <= 0 || r.H <= 0 {
		return
	}
	rad := math.Max(0, math.Min(radius, math.Min(r.W, r.H)/2))
	s.fill(fill)
	s.draw(border)
	s.pdf.SetLineWidth(1)

	pdf := s.pdf
	k := rad * kappa
	x0, y0, x1, y1 := r.X, r.Y, r.Right(), r.Bottom()
	pdf.MoveTo(x0+rad, y0)
	pdf.LineTo(x1-rad, y0)
	pdf.CurveBezierCubicTo(x1-rad+k, y0, x1, y0+rad-k, x1, y0+rad)
	pdf.LineTo(x1, y1-rad)
	pdf.CurveBezierCubicTo(x1, y1-rad+k, x1-rad+k, y1, x1-rad, y1)
	pdf.LineTo(x0+rad, y1)
	pdf.CurveBezierCubicTo(x0+rad-k, y1, x0, y1-rad+k, x0, y1-rad)
	pdf.LineTo(x0, y0+rad)
	pdf.CurveBezierCubicTo(x0, y0+rad-k, x0+rad-k, y0, x0+rad, y0)
	pdf.ClosePath()
	pdf.DrawPath("FD")
}

// DrawBorder strokes the selected edges of r with a 1pt line.
func (s *Surface) DrawBorder(r layout.Rect, c layout.Color, edges render.Edge) {
	s.draw(c)
	s.pdf.SetLineWidth(1)
	if edges&render.EdgeLeft != 0 {
		s.pdf.Line(r.X, r.Y, r.X, r.Bottom())
	}
	if edges&render.EdgeRight != 0 {
		s.pdf.Line(r.Right(), r.Y, r.Right(), r.Bottom())
	}
	if edges&render.EdgeTop != 0 {
		s.pdf.Line(r.X, r.Y, r.Right(), r.Y)
	}
	if edges&render.EdgeBottom != 0 {
		s.pdf.Line(r.X, r.Bottom(), r.Right(), r.Bottom())
	}
}

// FillTriangle fills the right triangle inscribed in r whose right angle is
// at corner.
func (s *Surface) FillTriangle(r layout.Rect, c layout.Color, corner render.Corner) {
	pts := []gofpdf.PointType{{X: r.X, Y: r.Y}, {X: r.Right(), Y: r.Y}}
	switch corner {
	case render.CornerTopRight:
		pts = append(pts, gofpdf.PointType{X: r.Right(), Y: r.Bottom()})
	default:
		pts = append(pts, gofpdf.PointType{X: r.X, Y: r.Bottom()})
	}
	s.fill(c)
	s.pdf.Polygon(pts, "F")
}

// Prefetch starts loading refs on the Surface's loader.
func (s *Surface) Prefetch(ctx context.Context, refs []string) {
	if s.loader != nil {
		s.loader.Prefetch(ctx, refs)
	}
}

// DrawImage loads ref, waiting for it if it is still in flight, and places
// it in r. A failed image leaves the page untouched.
func (s *Surface) DrawImage(ctx context.Context, ref string, r layout.Rect, opts render.ImageOptions) error {
	a, err := s.image(ctx, ref)
	if err != nil {
		return err
	}
	box := place(r, float64(a.Width), float64(a.Height), opts)
	if box.W <= 0 || box.H <= 0 {
		return nil
	}
	s.pdf.ImageOptions(ref, box.X, box.Y, box.W, box.H, false, gofpdf.ImageOptions{ImageType: a.Type}, 0, "")
	if s.pdf.Err() {
		err := s.pdf.Error()
		s.pdf.ClearError()
		return fmt.Errorf("pdfsurface: image %s: %w", ref, err)
	}
	return nil
}

// image registers ref with the engine the first time it is drawn.
func (s *Surface) image(ctx context.Context, ref string) (*assets.Asset, error) {
	if a, ok := s.images[ref]; ok {
		return a, nil
	}
	if s.loader == nil {
		return nil, ErrNoImage
	}
	a, err := s.loader.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	s.pdf.RegisterImageOptionsReader(ref, gofpdf.ImageOptions{ImageType: a.Type}, a.Reader())
	if s.pdf.Err() {
		err := s.pdf.Error()
		s.pdf.ClearError()
		return nil, &assets.LoadError{Ref: ref, Err: err}
	}
	s.images[ref] = a
	return a, nil
}

// place computes the box an image of w×h pixels occupies in r.
func place(r layout.Rect, w, h float64, opts render.ImageOptions) layout.Rect {
	if w <= 0 || h <= 0 {
		return layout.Rect{}
	}
	contain := math.Min(r.W/w, r.H/h)
	scale := contain
	if opts.Fit == render.FitCenterAtScale && opts.Scale > 0 {
		scale = math.Min(opts.Scale, contain)
	}
	bw, bh := w*scale, h*scale
	return layout.Rect{X: r.X + (r.W-bw)/2, Y: r.Y + (r.H-bh)/2, W: bw, H: bh}
}

// Serialize applies the watermark, if any, and writes the document to w.
// The Surface cannot be drawn on afterwards.
func (s *Surface) Serialize(w io.Writer) error {
	if s.watermark != nil {
		s.drawWatermark()
	}
	if s.pdf.Err() {
		return fmt.Errorf("pdfsurface: %w", s.pdf.Error())
	}
	if err := s.pdf.Output(w); err != nil {
		return fmt.Errorf("pdfsurface: output: %w", err)
	}
	s.log.Info("document written", "images", len(s.images))
	return nil
}
