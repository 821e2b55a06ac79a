package pdfsurface

import (
	"errors"
	"fmt"
	"strings"

	"github.com/boombuler/barcode/qr"
	"github.com/jung-kurt/gofpdf/contrib/barcode"

	"github.com/lvillar/ganttpdf/layout"
	"github.com/lvillar/ganttpdf/render"
)

// Barcode symbologies accepted by DrawCode.
const (
	SymbologyQR      = "qr"
	SymbologyPDF417  = "pdf417"
	SymbologyCode128 = "code128"
)

// ErrSymbology is returned for an unknown barcode symbology.
var ErrSymbology = errors.New("pdfsurface: unknown symbology")

// DrawCode renders code as a barcode scaled to fit r, keeping its aspect
// ratio and centered.
func (s *Surface) DrawCode(code render.Code, r layout.Rect) error {
	var key string
	switch strings.ToLower(code.Symbology) {
	case SymbologyQR, "":
		key = barcode.RegisterQR(s.pdf, code.Content, qr.M, qr.Unicode)
	case SymbologyPDF417:
		key = barcode.RegisterPdf417(s.pdf, code.Content, 6, 2)
	case SymbologyCode128:
		key = barcode.RegisterCode128(s.pdf, code.Content)
	default:
		return fmt.Errorf("%w %q", ErrSymbology, code.Symbology)
	}
	if s.pdf.Err() {
		err := s.pdf.Error()
		s.pdf.ClearError()
		return fmt.Errorf("pdfsurface: %s code: %w", code.Symbology, err)
	}

	w, h := barcode.GetUnscaledBarcodeDimensions(s.pdf, key)
	box := place(r, w, h, render.ImageOptions{Fit: render.FitContain})
	barcode.Barcode(s.pdf, key, box.X, box.Y, box.W, box.H, false)
	if s.pdf.Err() {
		err := s.pdf.Error()
		s.pdf.ClearError()
		return fmt.Errorf("pdfsurface: %s code: %w", code.Symbology, err)
	}
	return nil
}
