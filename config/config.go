// Package config loads export settings from a YAML or TOML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/lvillar/ganttpdf"
	"github.com/lvillar/ganttpdf/assets"
	"github.com/lvillar/ganttpdf/layout"
	"github.com/lvillar/ganttpdf/pdfsurface"
)

// Config is the contents of an export configuration file.
type Config struct {
	Title           string             `yaml:"title" toml:"title"`
	Brand           string             `yaml:"brand" toml:"brand"`
	Icon            string             `yaml:"icon" toml:"icon"`
	Author          string             `yaml:"author" toml:"author"`
	StatusIcons     []string           `yaml:"status_icons" toml:"status_icons"`
	WorkTypeStyles  map[string]float64 `yaml:"work_type_styles" toml:"work_type_styles"`
	StrictHierarchy bool               `yaml:"strict_hierarchy" toml:"strict_hierarchy"`

	Background *BackgroundConfig `yaml:"background" toml:"background"`
	Watermark  *WatermarkConfig  `yaml:"watermark" toml:"watermark"`
	Code       *CodeConfig       `yaml:"code" toml:"code"`
	Layout     LayoutConfig      `yaml:"layout" toml:"layout"`
	Assets     AssetsConfig      `yaml:"assets" toml:"assets"`

	LogLevel string `yaml:"log_level" toml:"log_level"`
	Database string `yaml:"database" toml:"database"`
}

// BackgroundConfig selects a letterhead PDF page.
type BackgroundConfig struct {
	Path string `yaml:"path" toml:"path"`
	Page int    `yaml:"page" toml:"page"`
}

// WatermarkConfig describes diagonal text drawn over the chart.
type WatermarkConfig struct {
	Text     string  `yaml:"text" toml:"text"`
	FontSize float64 `yaml:"font_size" toml:"font_size"`
	Color    string  `yaml:"color" toml:"color"`
	Opacity  float64 `yaml:"opacity" toml:"opacity"`
	Angle    float64 `yaml:"angle" toml:"angle"`
}

// CodeConfig describes the barcode in the title band.
type CodeConfig struct {
	Symbology string `yaml:"symbology" toml:"symbology"`
	Content   string `yaml:"content" toml:"content"`
}

// LayoutConfig overrides parts of the default layout. Zero values keep the
// default.
type LayoutConfig struct {
	TitleHeight float64  `yaml:"title_height" toml:"title_height"`
	GridWidth   float64  `yaml:"grid_width" toml:"grid_width"`
	ScaleHeight float64  `yaml:"scale_height" toml:"scale_height"`
	DayWidth    float64  `yaml:"day_width" toml:"day_width"`
	RowHeight   float64  `yaml:"row_height" toml:"row_height"`
	FontSize    float64  `yaml:"font_size" toml:"font_size"`
	FontFamily  string   `yaml:"font_family" toml:"font_family"`
	Palette     []string `yaml:"palette" toml:"palette"`
	DateFormat  string   `yaml:"date_format" toml:"date_format"`
	MonthFormat string   `yaml:"month_format" toml:"month_format"`
}

// AssetsConfig controls how images are fetched.
type AssetsConfig struct {
	BaseDir      string `yaml:"base_dir" toml:"base_dir"`
	MaxDimension int    `yaml:"max_dimension" toml:"max_dimension"`
	Timeout      string `yaml:"timeout" toml:"timeout"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Title:    "Gantt Chart",
		LogLevel: "info",
		Assets: AssetsConfig{
			MaxDimension: 512,
			Timeout:      "30s",
		},
	}
}

// Load reads a configuration file over the defaults. The format follows the
// file extension: .yaml, .yml or .toml. Unknown keys are an error. Relative
// asset, background and database paths are resolved against the file's
// directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("undecoded fields in config: %v", undecoded)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	cfg.resolve(filepath.Dir(path))
	return cfg, nil
}

// LoadOrDefault loads path, or returns the defaults when path is empty or
// does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) resolve(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) || strings.Contains(p, "://") || strings.HasPrefix(p, "data:") || p == ":memory:" {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.Assets.BaseDir = abs(c.Assets.BaseDir)
	if c.Assets.BaseDir == "" {
		c.Assets.BaseDir = dir
	}
	if c.Background != nil {
		c.Background.Path = abs(c.Background.Path)
	}
	c.Database = abs(c.Database)
}

// LayoutConfig returns the default layout with the file's overrides applied.
func (c *Config) LayoutConfig() (layout.Config, error) {
	l := layout.Default()
	o := c.Layout
	set := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	set(&l.TitleHeight, o.TitleHeight)
	set(&l.GridWidth, o.GridWidth)
	set(&l.ScaleHeight, o.ScaleHeight)
	set(&l.DayWidth, o.DayWidth)
	set(&l.RowHeight, o.RowHeight)
	set(&l.Fonts.Size, o.FontSize)
	if o.FontFamily != "" {
		l.Fonts.Regular.Family = o.FontFamily
		l.Fonts.SemiBold.Family = o.FontFamily
		l.Fonts.Heavy.Family = o.FontFamily
	}
	if o.DateFormat != "" {
		l.DateFormat = o.DateFormat
	}
	if o.MonthFormat != "" {
		l.MonthFormat = o.MonthFormat
	}
	if len(o.Palette) > 0 {
		l.Palette = make([]layout.Color, 0, len(o.Palette))
		for _, s := range o.Palette {
			col, err := layout.ParseColor(s)
			if err != nil {
				return layout.Config{}, fmt.Errorf("layout.palette: %w", err)
			}
			l.Palette = append(l.Palette, col)
		}
	}
	if err := l.Validate(); err != nil {
		return layout.Config{}, err
	}
	return l, nil
}

// Loader returns an asset loader configured by the assets section.
func (c *Config) Loader(opts ...assets.Option) (*assets.Loader, error) {
	client := &http.Client{}
	if c.Assets.Timeout != "" {
		d, err := time.ParseDuration(c.Assets.Timeout)
		if err != nil {
			return nil, fmt.Errorf("assets.timeout: %w", err)
		}
		client.Timeout = d
	}
	base := []assets.Option{
		assets.WithHTTPClient(client),
		assets.WithBaseDir(c.Assets.BaseDir),
		assets.WithMaxDimension(c.Assets.MaxDimension),
	}
	return assets.NewLoader(append(base, opts...)...), nil
}

// Options converts the configuration to export options. extra is appended
// after the configured options, so it takes precedence.
func (c *Config) Options(extra ...ganttpdf.Option) ([]ganttpdf.Option, error) {
	lay, err := c.LayoutConfig()
	if err != nil {
		return nil, err
	}
	loader, err := c.Loader()
	if err != nil {
		return nil, err
	}
	opts := []ganttpdf.Option{
		ganttpdf.WithTitle(c.Title),
		ganttpdf.WithBrand(c.Brand),
		ganttpdf.WithIcon(c.Icon),
		ganttpdf.WithAuthor(c.Author),
		ganttpdf.WithStatusIcons(c.StatusIcons...),
		ganttpdf.WithWorkTypeStyles(c.WorkTypeStyles),
		ganttpdf.WithStrictHierarchy(c.StrictHierarchy),
		ganttpdf.WithLayout(lay),
		ganttpdf.WithLoader(loader),
	}
	if c.Code != nil && c.Code.Content != "" {
		opts = append(opts, ganttpdf.WithCode(c.Code.Symbology, c.Code.Content))
	}
	if c.Background != nil && c.Background.Path != "" {
		opts = append(opts, ganttpdf.WithBackground(pdfsurface.Background{Path: c.Background.Path, Page: c.Background.Page}))
	}
	if c.Watermark != nil && c.Watermark.Text != "" {
		wm := pdfsurface.Watermark{
			Text:     c.Watermark.Text,
			FontSize: c.Watermark.FontSize,
			Opacity:  c.Watermark.Opacity,
			Angle:    c.Watermark.Angle,
		}
		if c.Watermark.Color != "" {
			if wm.Color, err = layout.ParseColor(c.Watermark.Color); err != nil {
				return nil, fmt.Errorf("watermark.color: %w", err)
			}
		}
		opts = append(opts, ganttpdf.WithWatermark(wm))
	}
	return append(opts, extra...), nil
}
