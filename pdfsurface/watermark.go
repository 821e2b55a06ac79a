package pdfsurface

import "github.com/lvillar/ganttpdf/layout"

// Watermark is text drawn diagonally across the page, e.g. "DRAFT".
type Watermark struct {
	Text     string
	FontSize float64      // default 60
	Color    layout.Color // default light gray
	Opacity  float64      // 0 to 1, default 0.3
	Angle    float64      // degrees, default 45
}

func (wm Watermark) withDefaults() Watermark {
	if wm.FontSize == 0 {
		wm.FontSize = 60
	}
	if wm.Opacity == 0 {
		wm.Opacity = 0.3
	}
	if wm.Angle == 0 {
		wm.Angle = 45
	}
	if wm.Color == (layout.Color{}) {
		wm.Color = layout.Color{R: 200, G: 200, B: 200}
	}
	return wm
}

// drawWatermark renders the watermark centered on the page.
func (s *Surface) drawWatermark() {
	wm := s.watermark.withDefaults()
	if wm.Text == "" {
		return
	}
	pdf := s.pdf
	text := s.tr(wm.Text)
	pdf.SetFont("Helvetica", "B", wm.FontSize)
	s.color(wm.Color)
	pdf.SetAlpha(wm.Opacity, "Normal")

	cx, cy := s.page.Width/2, s.page.Height/2
	pdf.TransformBegin()
	pdf.TransformRotate(wm.Angle, cx, cy)
	// Baseline a third of the font size below center.
	pdf.Text(cx-pdf.GetStringWidth(text)/2, cy+wm.FontSize/3, text)
	pdf.TransformEnd()

	pdf.SetAlpha(1, "Normal")
}
