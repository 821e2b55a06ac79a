package layout

import "time"

// Rect is an axis-aligned rectangle in page units with its origin at the
// top-left corner of the page.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Right returns the x coordinate of the rectangle's right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the rectangle's bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Inset shrinks the rectangle by dx on the left and right and by dy on the
// top and bottom.
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// MapRange maps the time range [start, end] onto a sub-rectangle of container,
// linearly against the reference span [totalStart, totalEnd]. The vertical
// extent of container is kept as is.
//
// A zero-width reference span maps every range onto the whole container.
func MapRange(container Rect, start, end, totalStart, totalEnd time.Time) Rect {
	total := totalEnd.Sub(totalStart)
	if total == 0 {
		return container
	}
	ft := float64(total)
	return Rect{
		X: container.X + float64(start.Sub(totalStart))/ft*container.W,
		Y: container.Y,
		W: float64(end.Sub(start)) / ft * container.W,
		H: container.H,
	}
}

// Orientation is the page orientation of the generated document.
type Orientation string

// Page orientations.
const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

// Page is the size and orientation of the single page a chart is drawn on.
type Page struct {
	Width       float64
	Height      float64
	Orientation Orientation
}

// Plan sizes the page so that every row and every day column fits at the
// fixed dimensions of cfg. Charts are never split across pages.
func Plan(dayCount, taskCount int, cfg Config) Page {
	p := Page{
		Width:  cfg.GridWidth + cfg.DayWidth*float64(dayCount),
		Height: cfg.TitleHeight + cfg.ScaleHeight + cfg.RowHeight*float64(taskCount),
	}
	if p.Width > p.Height {
		p.Orientation = OrientationLandscape
	} else {
		p.Orientation = OrientationPortrait
	}
	return p
}

// TitleRect is the full-width title band at the top of the page.
func (cfg Config) TitleRect(p Page) Rect {
	return Rect{X: 0, Y: 0, W: p.Width, H: cfg.TitleHeight}
}

// TimelineRect is the area right of the grid, below the title band, that
// holds the scale header and the task bars.
func (cfg Config) TimelineRect(p Page) Rect {
	return Rect{X: cfg.GridWidth, Y: cfg.TitleHeight, W: p.Width - cfg.GridWidth, H: p.Height - cfg.TitleHeight}
}

// RowsTop is the y coordinate of the first task row.
func (cfg Config) RowsTop() float64 {
	return cfg.TitleHeight + cfg.ScaleHeight
}
