package pdfsurface

import (
	"github.com/hashicorp/go-hclog"

	"github.com/lvillar/ganttpdf/assets"
)

// Option configures a Surface.
type Option func(*Surface)

// Metadata is written to the document information dictionary.
type Metadata struct {
	Title   string
	Author  string
	Subject string
}

// WithLoader sets the loader images are fetched with. Without one, every
// DrawImage call fails with ErrNoImage.
func WithLoader(l *assets.Loader) Option {
	return func(s *Surface) { s.loader = l }
}

// WithLogger sets the logger.
func WithLogger(log hclog.Logger) Option {
	return func(s *Surface) {
		if log != nil {
			s.log = log
		}
	}
}

// WithBackground draws a page of an existing PDF under the chart.
func WithBackground(bg Background) Option {
	return func(s *Surface) { s.background = &bg }
}

// WithWatermark draws rotated translucent text over the finished chart.
func WithWatermark(wm Watermark) Option {
	return func(s *Surface) { s.watermark = &wm }
}

// WithMetadata sets the document information.
func WithMetadata(m Metadata) Option {
	return func(s *Surface) { s.meta = m }
}
