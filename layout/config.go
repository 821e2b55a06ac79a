// Package layout holds the fixed geometry of a gantt page: the immutable
// layout configuration, rectangles, the time-to-pixel mapping and the page
// size planner.
package layout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("layout: invalid configuration")

// Color is an RGB color value.
type Color struct {
	R, G, B int
}

// ParseColor parses a "#rrggbb" or "rrggbb" hex color.
func ParseColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return Color{}, fmt.Errorf("layout: color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("layout: color %q: %w", s, err)
	}
	return Color{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}, nil
}

func mustColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the color in "#rrggbb" form.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// HAlign is horizontal text alignment.
type HAlign string

// VAlign is vertical text alignment.
type VAlign string

// Alignments.
const (
	AlignLeft   HAlign = "left"
	AlignCenter HAlign = "center"
	AlignRight  HAlign = "right"

	AlignTop    VAlign = "top"
	AlignMiddle VAlign = "middle"
	AlignBottom VAlign = "bottom"
)

// Font names a font face known to the drawing surface.
type Font struct {
	Family string
	Style  string // "", "B", "I", "BI"
}

// Fonts are the three weights the chart uses.
type Fonts struct {
	Regular  Font
	SemiBold Font
	Heavy    Font

	Size      float64 // grid, scale and bar labels
	TitleSize float64 // title band
}

// Colors are the fixed non-palette colors of the chart.
type Colors struct {
	TitleBand     Color
	Line          Color
	WeekendBody   Color
	WeekendHeader Color
	Text          Color
	InverseText   Color
	Bracket       Color
	BarBorder     Color
}

// ColumnKind identifies a grid column.
type ColumnKind int

// Grid columns, left to right.
const (
	ColumnWBS ColumnKind = iota
	ColumnTitle
	ColumnStart
	ColumnEnd
	ColumnStatus
	ColumnPercent
	ColumnDays
)

// Column is one fixed-width column of the task grid.
type Column struct {
	Kind        ColumnKind
	Header      string
	Width       float64
	HeaderAlign HAlign
	CellAlign   HAlign
}

// ColumnWidths are the widths of the grid columns.
type ColumnWidths struct {
	WBS     float64
	Title   float64
	Date    float64
	Status  float64
	Percent float64
	Days    float64
}

// Config is the immutable geometry and style of a gantt page. Values are
// passed by copy; a renderer never changes the Config it was given.
type Config struct {
	TitleHeight float64
	GridWidth   float64
	ScaleHeight float64
	DayWidth    float64 // width of one day column
	RowHeight   float64 // height of a task row and of each scale band
	IconWidth   float64
	GridPadding float64 // left inset of the first grid column

	Columns ColumnWidths

	BarInset         float64 // vertical inset of bars inside their row
	BarRadius        float64
	LabelPadding     float64
	BracketThickness float64
	WedgeSize        float64
	IconScale        float64
	StatusScale      float64

	Palette []Color
	Colors  Colors
	Fonts   Fonts

	DateFormat  string
	MonthFormat string
}

// DefaultPalette is the default task bar palette indexed by work type style.
var DefaultPalette = []Color{
	mustColor("#2d74dc"),
	mustColor("#00aace"),
	mustColor("#f38137"),
	mustColor("#f559a5"),
	mustColor("#c0d261"),
	mustColor("#4194b8"),
	mustColor("#1dad62"),
	mustColor("#b7b8ba"),
	mustColor("#a079c2"),
}

// Default returns the standard gantt layout.
func Default() Config {
	return Config{
		TitleHeight: 58,
		GridWidth:   610,
		ScaleHeight: 50,
		DayWidth:    25,
		RowHeight:   25,
		IconWidth:   58,
		GridPadding: 10,
		Columns: ColumnWidths{
			WBS:     30,
			Title:   250,
			Date:    60,
			Status:  60,
			Percent: 60,
			Days:    80,
		},
		BarInset:         5,
		BarRadius:        8,
		LabelPadding:     4,
		BracketThickness: 3,
		WedgeSize:        7,
		IconScale:        0.41,
		StatusScale:      0.25,
		Palette:          append([]Color(nil), DefaultPalette...),
		Colors: Colors{
			TitleBand:     mustColor("#464646"),
			Line:          mustColor("#d1d1d1"),
			WeekendBody:   mustColor("#f9f9f9"),
			WeekendHeader: mustColor("#a3a3a3"),
			Text:          mustColor("#464646"),
			InverseText:   mustColor("#ffffff"),
			Bracket:       mustColor("#083c55"),
			BarBorder:     mustColor("#464646"),
		},
		Fonts: Fonts{
			Regular:   Font{Family: "Helvetica"},
			SemiBold:  Font{Family: "Helvetica", Style: "B"},
			Heavy:     Font{Family: "Helvetica", Style: "B"},
			Size:      12,
			TitleSize: 25,
		},
		DateFormat:  "2 Jan, 2006",
		MonthFormat: "January 2006",
	}
}

// GridColumns returns the grid columns in left-to-right order.
func (cfg Config) GridColumns() []Column {
	return []Column{
		{Kind: ColumnWBS, Header: "#", Width: cfg.Columns.WBS, HeaderAlign: AlignLeft, CellAlign: AlignLeft},
		{Kind: ColumnTitle, Header: "Title", Width: cfg.Columns.Title, HeaderAlign: AlignCenter, CellAlign: AlignLeft},
		{Kind: ColumnStart, Header: "Start Date", Width: cfg.Columns.Date, HeaderAlign: AlignCenter, CellAlign: AlignLeft},
		{Kind: ColumnEnd, Header: "End Date", Width: cfg.Columns.Date, HeaderAlign: AlignCenter, CellAlign: AlignLeft},
		{Kind: ColumnStatus, Header: "Status", Width: cfg.Columns.Status, HeaderAlign: AlignCenter, CellAlign: AlignCenter},
		{Kind: ColumnPercent, Header: "Percent Complete", Width: cfg.Columns.Percent, HeaderAlign: AlignCenter, CellAlign: AlignCenter},
		{Kind: ColumnDays, Header: "Working Days", Width: cfg.Columns.Days, HeaderAlign: AlignCenter, CellAlign: AlignCenter},
	}
}

// PaletteColor returns the palette entry at i, or the first entry when i is
// out of range.
func (cfg Config) PaletteColor(i int) Color {
	if i < 0 || i >= len(cfg.Palette) {
		i = 0
	}
	return cfg.Palette[i]
}

// Validate reports whether the configuration can lay out a page.
func (cfg Config) Validate() error {
	dims := []struct {
		name string
		v    float64
	}{
		{"title height", cfg.TitleHeight},
		{"grid width", cfg.GridWidth},
		{"scale height", cfg.ScaleHeight},
		{"day width", cfg.DayWidth},
		{"row height", cfg.RowHeight},
		{"font size", cfg.Fonts.Size},
		{"title font size", cfg.Fonts.TitleSize},
	}
	for _, d := range dims {
		if !(d.v > 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, d.name, d.v)
		}
	}
	if len(cfg.Palette) == 0 {
		return fmt.Errorf("%w: palette is empty", ErrInvalidConfig)
	}
	if cfg.ScaleHeight < cfg.RowHeight {
		return fmt.Errorf("%w: scale height %v is smaller than one scale band (%v)", ErrInvalidConfig, cfg.ScaleHeight, cfg.RowHeight)
	}
	if 2*cfg.BarInset >= cfg.RowHeight {
		return fmt.Errorf("%w: bar inset %v leaves no room in a %v row", ErrInvalidConfig, cfg.BarInset, cfg.RowHeight)
	}
	used := cfg.GridPadding
	for _, c := range cfg.GridColumns() {
		if c.Width < 0 {
			return fmt.Errorf("%w: column %q has negative width", ErrInvalidConfig, c.Header)
		}
		used += c.Width
	}
	if used > cfg.GridWidth {
		return fmt.Errorf("%w: grid columns need %v but grid width is %v", ErrInvalidConfig, used, cfg.GridWidth)
	}
	return nil
}
