package pdfsurface

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"

	"github.com/lvillar/ganttpdf/assets"
	"github.com/lvillar/ganttpdf/layout"
	"github.com/lvillar/ganttpdf/render"
)

var landscape = layout.Page{Width: 685, Height: 300, Orientation: layout.OrientationLandscape}

func pngRef(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	img.Set(0, 0, color.NRGBA{A: 0})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func serialize(t *testing.T, s *Surface) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := s.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatal("output does not start with %PDF")
	}
	return buf.Bytes()
}

func TestNewRejectsEmptyPage(t *testing.T) {
	if _, err := New(layout.Page{Width: 0, Height: 10}); err == nil {
		t.Fatal("expected an error for a zero-width page")
	}
}

func TestPageSize(t *testing.T) {
	tests := []struct {
		name string
		page layout.Page
		box  string
	}{
		{"landscape", landscape, "/MediaBox [0 0 685.00 300.00]"},
		{"portrait", layout.Page{Width: 635, Height: 933, Orientation: layout.OrientationPortrait}, "/MediaBox [0 0 635.00 933.00]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.page)
			if err != nil {
				t.Fatal(err)
			}
			out := serialize(t, s)
			if !bytes.Contains(out, []byte(tt.box)) {
				t.Errorf("output lacks %q", tt.box)
			}
		})
	}
}

func TestPrimitives(t *testing.T) {
	s, err := New(landscape, WithMetadata(Metadata{Title: "Plan", Author: "ops"}))
	if err != nil {
		t.Fatal(err)
	}
	cfg := layout.Default()
	style := render.TextStyle{Font: cfg.Fonts.Regular, Size: 12, Color: cfg.Colors.Text, HAlign: layout.AlignCenter, VAlign: layout.AlignMiddle, Padding: 4}

	s.FillRect(layout.Rect{X: 0, Y: 0, W: 685, H: 58}, cfg.Colors.TitleBand)
	s.DrawText("Überprüfung – 2 Jan, 2024", layout.Rect{X: 10, Y: 108, W: 250, H: 25}, style)
	s.DrawText("", layout.Rect{X: 10, Y: 108, W: 250, H: 25}, style)
	s.DrawRoundedRect(layout.Rect{X: 610, Y: 113, W: 50, H: 15}, cfg.Palette[0], cfg.Colors.BarBorder, 8)
	s.DrawRoundedRect(layout.Rect{X: 610, Y: 113, W: 2, H: 15}, cfg.Palette[1], cfg.Colors.BarBorder, 8)
	s.DrawBorder(layout.Rect{X: 0, Y: 108, W: 685, H: 25}, cfg.Colors.Line, render.EdgeAll)
	s.FillTriangle(layout.Rect{X: 610, Y: 116, W: 7, H: 7}, cfg.Colors.Bracket, render.CornerTopLeft)
	s.FillTriangle(layout.Rect{X: 653, Y: 116, W: 7, H: 7}, cfg.Colors.Bracket, render.CornerTopRight)
	serialize(t, s)
}

func TestDrawImage(t *testing.T) {
	ctx := context.Background()

	t.Run("no loader", func(t *testing.T) {
		s, _ := New(landscape)
		err := s.DrawImage(ctx, "icon.png", layout.Rect{W: 58, H: 58}, render.ImageOptions{})
		if !errors.Is(err, ErrNoImage) {
			t.Fatalf("err = %v, want ErrNoImage", err)
		}
	})

	t.Run("failure does not poison the document", func(t *testing.T) {
		s, _ := New(landscape, WithLoader(assets.NewLoader()))
		missing := filepath.Join(t.TempDir(), "missing.png")
		err := s.DrawImage(ctx, missing, layout.Rect{W: 58, H: 58}, render.ImageOptions{})
		var le *assets.LoadError
		if !errors.As(err, &le) {
			t.Fatalf("err = %v, want *assets.LoadError", err)
		}
		if err := s.DrawImage(ctx, pngRef(t, 16, 16), layout.Rect{X: 200, W: 58, H: 58}, render.ImageOptions{Fit: render.FitCenterAtScale, Scale: 0.41}); err != nil {
			t.Fatalf("second image: %v", err)
		}
		serialize(t, s)
	})

	t.Run("same asset twice", func(t *testing.T) {
		l := assets.NewLoader()
		s, _ := New(landscape, WithLoader(l))
		ref := pngRef(t, 4, 4)
		s.Prefetch(ctx, []string{ref})
		for i := 0; i < 2; i++ {
			if err := s.DrawImage(ctx, ref, layout.Rect{X: float64(i) * 60, W: 60, H: 25}, render.ImageOptions{Fit: render.FitCenterAtScale, Scale: 0.25}); err != nil {
				t.Fatal(err)
			}
		}
		serialize(t, s)
	})
}

func TestPlace(t *testing.T) {
	r := layout.Rect{X: 0, Y: 0, W: 100, H: 50}
	tests := []struct {
		name string
		w, h float64
		opts render.ImageOptions
		want layout.Rect
	}{
		{"contain wide", 200, 50, render.ImageOptions{Fit: render.FitContain}, layout.Rect{X: 0, Y: 12.5, W: 100, H: 25}},
		{"contain tall", 10, 100, render.ImageOptions{Fit: render.FitContain}, layout.Rect{X: 47.5, Y: 0, W: 5, H: 50}},
		{"at scale", 40, 40, render.ImageOptions{Fit: render.FitCenterAtScale, Scale: 0.5}, layout.Rect{X: 40, Y: 15, W: 20, H: 20}},
		{"scale capped by rect", 400, 400, render.ImageOptions{Fit: render.FitCenterAtScale, Scale: 0.5}, layout.Rect{X: 25, Y: 0, W: 50, H: 50}},
		{"empty image", 0, 10, render.ImageOptions{}, layout.Rect{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := place(r, tt.w, tt.h, tt.opts); got != tt.want {
				t.Errorf("place = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDrawCode(t *testing.T) {
	s, _ := New(landscape)
	square := layout.Rect{X: 634, Y: 7, W: 44, H: 44}
	for _, sym := range []string{SymbologyQR, SymbologyPDF417, SymbologyCode128} {
		if err := s.DrawCode(render.Code{Symbology: sym, Content: "PRJ-42"}, square); err != nil {
			t.Errorf("%s: %v", sym, err)
		}
	}
	if err := s.DrawCode(render.Code{Symbology: "aztec", Content: "x"}, square); !errors.Is(err, ErrSymbology) {
		t.Errorf("err = %v, want ErrSymbology", err)
	}
	serialize(t, s)
}

func writeLetterhead(t *testing.T) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "letterhead.pdf")
	pdf := gofpdf.New("L", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 14)
	pdf.AddPage()
	pdf.Text(40, 40, "ACME Construction")
	if err := pdf.OutputFileAndClose(name); err != nil {
		t.Fatalf("creating letterhead: %v", err)
	}
	return name
}

func TestBackground(t *testing.T) {
	s, err := New(landscape, WithBackground(Background{Path: writeLetterhead(t)}))
	if err != nil {
		t.Fatal(err)
	}
	out := serialize(t, s)
	if !bytes.Contains(out, []byte("/XObject")) {
		t.Error("background template not embedded")
	}
}

func TestBackgroundMissingFile(t *testing.T) {
	_, err := New(landscape, WithBackground(Background{Path: filepath.Join(t.TempDir(), "none.pdf")}))
	if err == nil {
		t.Fatal("expected an error for a missing background")
	}
}

func TestWatermark(t *testing.T) {
	s, _ := New(landscape, WithWatermark(Watermark{Text: "DRAFT"}))
	plain, _ := New(landscape)
	marked, clean := serialize(t, s), serialize(t, plain)
	if len(marked) <= len(clean) {
		t.Errorf("watermarked output (%d bytes) is not larger than the plain one (%d bytes)", len(marked), len(clean))
	}
}
