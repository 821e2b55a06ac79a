package render

import (
	"context"
	"encoding/json"
	"io"

	"github.com/lvillar/ganttpdf/layout"
)

// Op kinds recorded by Recorder.
const (
	OpText     = "text"
	OpFill     = "fill"
	OpRounded  = "rounded"
	OpBorder   = "border"
	OpTriangle = "triangle"
	OpImage    = "image"
	OpCode     = "code"
)

// Op is one recorded draw call.
type Op struct {
	Kind   string        `json:"kind"`
	Rect   layout.Rect   `json:"rect"`
	Text   string        `json:"text,omitempty"`
	Color  string        `json:"color,omitempty"`
	Border string        `json:"border,omitempty"`
	Radius float64       `json:"radius,omitempty"`
	Edges  Edge          `json:"edges,omitempty"`
	Corner Corner        `json:"corner,omitempty"`
	Ref    string        `json:"ref,omitempty"`
	Image  *ImageOptions `json:"image,omitempty"`
	Style  *TextStyle    `json:"style,omitempty"`
}

// Recorder is a Surface that keeps a list of the calls made on it instead
// of drawing. Serialize writes the list as JSON.
type Recorder struct {
	Ops []Op
	// Fail, when set, decides which image and code references fail to draw.
	Fail       func(ref string) error
	Prefetched []string
}

var (
	_ Surface    = (*Recorder)(nil)
	_ CodeDrawer = (*Recorder)(nil)
	_ Prefetcher = (*Recorder)(nil)
)

func (rec *Recorder) add(op Op) { rec.Ops = append(rec.Ops, op) }

// DrawText implements Surface.
func (rec *Recorder) DrawText(text string, r layout.Rect, style TextStyle) {
	rec.add(Op{Kind: OpText, Rect: r, Text: text, Color: style.Color.String(), Style: &style})
}

// FillRect implements Surface.
func (rec *Recorder) FillRect(r layout.Rect, c layout.Color) {
	rec.add(Op{Kind: OpFill, Rect: r, Color: c.String()})
}

// DrawRoundedRect implements Surface.
func (rec *Recorder) DrawRoundedRect(r layout.Rect, fill, border layout.Color, radius float64) {
	rec.add(Op{Kind: OpRounded, Rect: r, Color: fill.String(), Border: border.String(), Radius: radius})
}

// DrawBorder implements Surface.
func (rec *Recorder) DrawBorder(r layout.Rect, c layout.Color, edges Edge) {
	rec.add(Op{Kind: OpBorder, Rect: r, Color: c.String(), Edges: edges})
}

// FillTriangle implements Surface.
func (rec *Recorder) FillTriangle(r layout.Rect, c layout.Color, corner Corner) {
	rec.add(Op{Kind: OpTriangle, Rect: r, Color: c.String(), Corner: corner})
}

// DrawImage implements Surface. Failed images are not recorded.
func (rec *Recorder) DrawImage(_ context.Context, ref string, r layout.Rect, opts ImageOptions) error {
	if rec.Fail != nil {
		if err := rec.Fail(ref); err != nil {
			return err
		}
	}
	rec.add(Op{Kind: OpImage, Rect: r, Ref: ref, Image: &opts})
	return nil
}

// DrawCode implements CodeDrawer.
func (rec *Recorder) DrawCode(code Code, r layout.Rect) error {
	if rec.Fail != nil {
		if err := rec.Fail(code.Symbology); err != nil {
			return err
		}
	}
	rec.add(Op{Kind: OpCode, Rect: r, Ref: code.Symbology, Text: code.Content})
	return nil
}

// Prefetch implements Prefetcher.
func (rec *Recorder) Prefetch(_ context.Context, refs []string) {
	rec.Prefetched = append(rec.Prefetched, refs...)
}

// Serialize implements Surface.
func (rec *Recorder) Serialize(w io.Writer) error {
	return json.NewEncoder(w).Encode(struct {
		Ops []Op `json:"ops"`
	}{rec.Ops})
}

// Kind returns the recorded ops of one kind, in call order.
func (rec *Recorder) Kind(kind string) []Op {
	var out []Op
	for _, op := range rec.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}
