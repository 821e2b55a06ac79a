package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/lvillar/ganttpdf/axis"
	"github.com/lvillar/ganttpdf/layout"
	"github.com/lvillar/ganttpdf/tasktree"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func document(start, end time.Time, rows ...*tasktree.Record) *Document {
	ax := axis.Build(start, end)
	n := 0
	_ = tasktree.Walk(rows, func(*tasktree.Record, int) error { n++; return nil })
	return &Document{
		Title: "Plan",
		Brand: "Acme",
		Rows:  rows,
		Axis:  ax,
		Page:  layout.Plan(ax.DayCount, n, layout.Default()),
	}
}

func render(t *testing.T, s Surface, doc *Document) Report {
	t.Helper()
	var buf bytes.Buffer
	report, err := New(s, layout.Default(), nil).Render(context.Background(), doc, &buf)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return report
}

func TestLeafBarOnColumnBoundaries(t *testing.T) {
	leaf := &tasktree.Record{ID: "1", WBS: "1", Title: "Dig", Start: date(2024, 1, 1), End: date(2024, 1, 3), Days: 2}
	rec := &Recorder{}
	render(t, rec, document(date(2024, 1, 1), date(2024, 1, 3), leaf))

	bars := rec.Kind(OpRounded)
	if len(bars) != 1 {
		t.Fatalf("got %d bars, want 1", len(bars))
	}
	cfg := layout.Default()
	bar := bars[0].Rect
	if !near(bar.X, cfg.GridWidth) || !near(bar.Right(), cfg.GridWidth+2*cfg.DayWidth) {
		t.Errorf("bar spans x=[%v, %v], want [%v, %v]", bar.X, bar.Right(), cfg.GridWidth, cfg.GridWidth+2*cfg.DayWidth)
	}
	wantY := cfg.RowsTop() + cfg.BarInset
	if !near(bar.Y, wantY) || !near(bar.H, cfg.RowHeight-2*cfg.BarInset) {
		t.Errorf("bar y=%v h=%v, want y=%v h=%v", bar.Y, bar.H, wantY, cfg.RowHeight-2*cfg.BarInset)
	}
	if bars[0].Color != cfg.Palette[0].String() || bars[0].Radius != cfg.BarRadius {
		t.Errorf("bar color=%s radius=%v", bars[0].Color, bars[0].Radius)
	}
}

func TestBarsStayOnColumnsAcrossDaylightSaving(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, loc) }
	first := &tasktree.Record{ID: "1", WBS: "1", Title: "Before", Start: day(1), End: day(2), Days: 1}
	last := &tasktree.Record{ID: "2", WBS: "2", Title: "After", Start: day(14), End: day(15), Days: 1}
	rec := &Recorder{}
	render(t, rec, document(day(1), day(14), first, last))

	bars := rec.Kind(OpRounded)
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}
	cfg := layout.Default()
	for i, col := range []int{0, 13} {
		bar := bars[i].Rect
		x := cfg.GridWidth + float64(col)*cfg.DayWidth
		if !near(bar.X, x) || !near(bar.Right(), x+cfg.DayWidth) {
			t.Errorf("bar %d spans x=[%v, %v], want [%v, %v]", i, bar.X, bar.Right(), x, x+cfg.DayWidth)
		}
	}
}

func TestRowCells(t *testing.T) {
	leaf := &tasktree.Record{
		ID: "7", WBS: "1.2", Title: "Pour", Start: date(2024, 1, 1), End: date(2024, 1, 2),
		Progress: 40, Days: 3,
	}
	rec := &Recorder{}
	render(t, rec, document(date(2024, 1, 1), date(2024, 1, 2), leaf))

	texts := map[string]bool{}
	for _, op := range rec.Kind(OpText) {
		texts[op.Text] = true
	}
	for _, want := range []string{"1.2", "Pour", "1 Jan, 2024", "2 Jan, 2024", "40%", "3", "Plan", "Acme", "January 2024"} {
		if !texts[want] {
			t.Errorf("no text op %q", want)
		}
	}
}

func TestWeekendShading(t *testing.T) {
	// 2024-01-06 and 2024-01-07 are a Saturday and a Sunday.
	rec := &Recorder{}
	render(t, rec, document(date(2024, 1, 1), date(2024, 1, 7)))

	cfg := layout.Default()
	var body, header []Op
	for _, op := range rec.Kind(OpFill) {
		switch op.Color {
		case cfg.Colors.WeekendBody.String():
			body = append(body, op)
		case cfg.Colors.WeekendHeader.String():
			header = append(header, op)
		}
	}
	if len(body) != 2 || len(header) != 2 {
		t.Fatalf("got %d body and %d header weekend fills, want 2 and 2", len(body), len(header))
	}
	if x := cfg.GridWidth + 5*cfg.DayWidth; !near(header[0].Rect.X, x) {
		t.Errorf("saturday header at x=%v, want %v", header[0].Rect.X, x)
	}
	if !near(body[0].Rect.X, header[0].Rect.X+1) {
		t.Errorf("weekend body not inset from the column line: %v", body[0].Rect.X)
	}
}

func TestMonthCells(t *testing.T) {
	rec := &Recorder{}
	render(t, rec, document(date(2024, 1, 30), date(2024, 2, 2)))

	cfg := layout.Default()
	want := map[string]layout.Rect{
		"January 2024":  {X: cfg.GridWidth, Y: cfg.TitleHeight, W: 2 * cfg.DayWidth, H: cfg.RowHeight},
		"February 2024": {X: cfg.GridWidth + 2*cfg.DayWidth, Y: cfg.TitleHeight, W: 2 * cfg.DayWidth, H: cfg.RowHeight},
	}
	found := 0
	for _, op := range rec.Kind(OpText) {
		r, ok := want[op.Text]
		if !ok {
			continue
		}
		found++
		if op.Rect != r {
			t.Errorf("%s cell = %+v, want %+v", op.Text, op.Rect, r)
		}
	}
	if found != 2 {
		t.Errorf("found %d month cells, want 2", found)
	}
}

func TestProjectBracket(t *testing.T) {
	child := &tasktree.Record{ID: "2", Title: "Frame", Start: date(2024, 1, 1), End: date(2024, 1, 3), Days: 1}
	project := &tasktree.Record{
		ID: "1", Title: "House", Project: true,
		Start: date(2024, 1, 1), End: date(2024, 1, 3),
		Children: []*tasktree.Record{child},
	}
	rec := &Recorder{}
	render(t, rec, document(date(2024, 1, 1), date(2024, 1, 3), project))

	cfg := layout.Default()
	tris := rec.Kind(OpTriangle)
	if len(tris) != 2 {
		t.Fatalf("got %d wedges, want 2", len(tris))
	}
	if tris[0].Corner != CornerTopLeft || tris[1].Corner != CornerTopRight {
		t.Errorf("wedge corners = %v, %v", tris[0].Corner, tris[1].Corner)
	}
	if !near(tris[1].Rect.Right(), cfg.GridWidth+2*cfg.DayWidth) {
		t.Errorf("right wedge ends at %v", tris[1].Rect.Right())
	}

	var bracket int
	for _, op := range rec.Kind(OpFill) {
		if op.Color == cfg.Colors.Bracket.String() && op.Rect.H == cfg.BracketThickness {
			bracket++
		}
	}
	if bracket != 1 {
		t.Errorf("got %d bracket bars, want 1", bracket)
	}
	// Only the child is drawn as a bar, one row below the project.
	bars := rec.Kind(OpRounded)
	if len(bars) != 1 || !near(bars[0].Rect.Y, cfg.RowsTop()+cfg.RowHeight+cfg.BarInset) {
		t.Errorf("child bar = %+v", bars)
	}
}

func TestAssetFailureIsIsolated(t *testing.T) {
	errMissing := errors.New("missing")
	a := &tasktree.Record{ID: "1", WBS: "1", Title: "A", StatusGlyph: "bad.png", Start: date(2024, 1, 1), End: date(2024, 1, 2)}
	b := &tasktree.Record{ID: "2", WBS: "2", Title: "B", StatusGlyph: "ok.png", Start: date(2024, 1, 1), End: date(2024, 1, 2)}
	rec := &Recorder{Fail: func(ref string) error {
		if ref == "bad.png" || ref == "logo.png" {
			return errMissing
		}
		return nil
	}}
	doc := document(date(2024, 1, 1), date(2024, 1, 2), a, b)
	doc.Icon = "logo.png"

	report := render(t, rec, doc)
	if len(report.AssetErrors) != 2 {
		t.Fatalf("got %d asset errors, want 2", len(report.AssetErrors))
	}
	if !errors.Is(report.AssetErrors[1], errMissing) || report.AssetErrors[1].Ref != "bad.png" {
		t.Errorf("unexpected asset error: %v", report.AssetErrors[1])
	}
	if got := report.AssetErrors[0].Cell; got != "title icon" {
		t.Errorf("first failure cell = %q", got)
	}
	if imgs := rec.Kind(OpImage); len(imgs) != 1 || imgs[0].Ref != "ok.png" {
		t.Errorf("images = %+v", imgs)
	}
	if len(rec.Kind(OpRounded)) != 2 {
		t.Error("a failed glyph must not stop the rest of the row")
	}
	if len(rec.Prefetched) != 3 {
		t.Errorf("prefetched %v", rec.Prefetched)
	}
}

func TestTitleCode(t *testing.T) {
	rec := &Recorder{}
	doc := document(date(2024, 1, 1), date(2024, 1, 2))
	doc.Code = &Code{Symbology: "qr", Content: "https://example.com/p/1"}
	render(t, rec, doc)

	codes := rec.Kind(OpCode)
	if len(codes) != 1 {
		t.Fatalf("got %d codes, want 1", len(codes))
	}
	cfg := layout.Default()
	if r := codes[0].Rect; !near(r.Right(), doc.Page.Width-cfg.TitleHeight/8) || !near(r.W, r.H) {
		t.Errorf("code square = %+v", r)
	}
}

type brokenSerializer struct {
	*Recorder
}

var errDisk = errors.New("disk full")

func (brokenSerializer) Serialize(io.Writer) error { return errDisk }

func TestSerializeFailure(t *testing.T) {
	s := brokenSerializer{&Recorder{}}
	doc := document(date(2024, 1, 1), date(2024, 1, 2))
	_, err := New(s, layout.Default(), nil).Render(context.Background(), doc, io.Discard)
	if !errors.Is(err, errDisk) {
		t.Fatalf("err = %v, want %v", err, errDisk)
	}
}

func TestRecorderSerialize(t *testing.T) {
	rec := &Recorder{}
	rec.FillRect(layout.Rect{W: 1, H: 1}, layout.Color{R: 255})
	var buf bytes.Buffer
	if err := rec.Serialize(&buf); err != nil {
		t.Fatal(err)
	}
	var out struct {
		Ops []Op `json:"ops"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Ops) != 1 || out.Ops[0].Color != "#ff0000" {
		t.Errorf("ops = %+v", out.Ops)
	}
}
