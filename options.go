package ganttpdf

import (
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/lvillar/ganttpdf/assets"
	"github.com/lvillar/ganttpdf/layout"
	"github.com/lvillar/ganttpdf/pdfsurface"
	"github.com/lvillar/ganttpdf/render"
)

// Option configures an export.
type Option func(*exportConfig)

// SurfaceFunc creates the surface a chart of the given page geometry is
// painted on.
type SurfaceFunc func(page layout.Page) (render.Surface, error)

type exportConfig struct {
	title       string
	brand       string
	icon        string
	statusIcons []string
	styles      map[string]float64
	strict      bool
	code        *render.Code

	layout     layout.Config
	log        hclog.Logger
	clock      func() time.Time
	loader     *assets.Loader
	background *pdfsurface.Background
	watermark  *pdfsurface.Watermark
	author     string
	surface    SurfaceFunc
}

func newExportConfig(opts []Option) *exportConfig {
	c := &exportConfig{
		layout: layout.Default(),
		log:    hclog.NewNullLogger(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTitle sets the title centered in the title band.
func WithTitle(title string) Option {
	return func(c *exportConfig) { c.title = title }
}

// WithBrand sets the text shown left-aligned in the title band, next to the
// icon.
func WithBrand(brand string) Option {
	return func(c *exportConfig) { c.brand = brand }
}

// WithIcon sets the asset reference of the title band icon.
func WithIcon(ref string) Option {
	return func(c *exportConfig) { c.icon = ref }
}

// WithStatusIcons sets the status glyph references. A task's glyph is
// icons[status mod len(icons)]. Without icons the status column stays empty.
func WithStatusIcons(icons ...string) Option {
	return func(c *exportConfig) { c.statusIcons = icons }
}

// WithWorkTypeStyles maps work type keys to palette indexes.
func WithWorkTypeStyles(styles map[string]float64) Option {
	return func(c *exportConfig) { c.styles = styles }
}

// WithStrictHierarchy makes a task whose parent has not been seen yet an
// error instead of a top-level row.
func WithStrictHierarchy(strict bool) Option {
	return func(c *exportConfig) { c.strict = strict }
}

// WithCode draws a barcode in the right end of the title band.
func WithCode(symbology, content string) Option {
	return func(c *exportConfig) { c.code = &render.Code{Symbology: symbology, Content: content} }
}

// WithLayout replaces the default layout configuration.
func WithLayout(cfg layout.Config) Option {
	return func(c *exportConfig) { c.layout = cfg }
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(log hclog.Logger) Option {
	return func(c *exportConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// WithClock sets the time source used to pick the default month of a chart
// without leaf tasks.
func WithClock(now func() time.Time) Option {
	return func(c *exportConfig) { c.clock = now }
}

// WithLoader shares an asset loader, and its cache, between exports.
func WithLoader(l *assets.Loader) Option {
	return func(c *exportConfig) { c.loader = l }
}

// WithBackground draws a page of an existing PDF under the chart.
func WithBackground(bg pdfsurface.Background) Option {
	return func(c *exportConfig) { c.background = &bg }
}

// WithWatermark draws diagonal text over the chart.
func WithWatermark(wm pdfsurface.Watermark) Option {
	return func(c *exportConfig) { c.watermark = &wm }
}

// WithAuthor sets the document author.
func WithAuthor(author string) Option {
	return func(c *exportConfig) { c.author = author }
}

// WithSurface paints on the surface returned by f instead of a PDF page.
func WithSurface(f SurfaceFunc) Option {
	return func(c *exportConfig) { c.surface = f }
}
