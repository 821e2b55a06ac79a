// Package render paints a flattened task tree and its time axis onto a
// drawing surface as a single gantt page.
package render

import (
	"context"
	"io"

	"github.com/lvillar/ganttpdf/layout"
)

// Edge selects rectangle edges for Surface.DrawBorder.
type Edge int

// Rectangle edges.
const (
	EdgeLeft Edge = 1 << iota
	EdgeRight
	EdgeTop
	EdgeBottom

	EdgeAll = EdgeLeft | EdgeRight | EdgeTop | EdgeBottom
)

// Corner selects the right-angle corner of a triangle filled by
// Surface.FillTriangle.
type Corner int

// Triangle corners.
const (
	CornerTopLeft Corner = iota + 1
	CornerTopRight
)

// FitMode controls how an image is placed in its rectangle.
type FitMode int

// Image fit modes.
const (
	// FitContain scales the image to fit the rectangle, keeping its aspect
	// ratio.
	FitContain FitMode = iota
	// FitCenterAtScale draws the image at Scale times its pixel size,
	// centered in the rectangle.
	FitCenterAtScale
)

// ImageOptions control Surface.DrawImage.
type ImageOptions struct {
	Fit   FitMode
	Scale float64
}

// TextStyle controls Surface.DrawText.
type TextStyle struct {
	Font    layout.Font
	Size    float64
	Color   layout.Color
	HAlign  layout.HAlign
	VAlign  layout.VAlign
	Padding float64
}

// Surface is the drawing back-end a chart is painted on. Text is clipped to
// its rectangle. Only DrawImage and Serialize can fail.
type Surface interface {
	DrawText(text string, r layout.Rect, style TextStyle)
	FillRect(r layout.Rect, c layout.Color)
	DrawRoundedRect(r layout.Rect, fill, border layout.Color, radius float64)
	DrawBorder(r layout.Rect, c layout.Color, edges Edge)
	FillTriangle(r layout.Rect, c layout.Color, corner Corner)
	DrawImage(ctx context.Context, ref string, r layout.Rect, opts ImageOptions) error
	Serialize(w io.Writer) error
}

// Code is a machine-readable code drawn in the title band.
type Code struct {
	Symbology string // "qr", "pdf417" or "code128"
	Content   string
}

// CodeDrawer is implemented by surfaces that can draw barcodes.
type CodeDrawer interface {
	DrawCode(code Code, r layout.Rect) error
}

// Prefetcher is implemented by surfaces that can start loading image assets
// before they are drawn. Painting order is unaffected.
type Prefetcher interface {
	Prefetch(ctx context.Context, refs []string)
}
