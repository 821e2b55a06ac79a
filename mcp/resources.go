package mcp

import (
	"context"
	"encoding/json"

	"github.com/lvillar/ganttpdf/layout"
	"github.com/lvillar/ganttpdf/store"
)

// RegisterDefaultResources adds the gantt:// resources to the server. The
// project list is only registered when st is not nil.
func RegisterDefaultResources(s *Server, st *store.Store) {
	s.AddResource(Resource{
		URI:         "gantt://layout/default",
		Name:        "Default layout",
		Description: "Dimensions, column widths, colors and fonts of the default chart layout",
		MIMEType:    "application/json",
		Handler:     handleLayoutResource,
	})
	s.AddResource(Resource{
		URI:         "gantt://palette",
		Name:        "Bar palette",
		Description: "Bar colors, indexed by the values of workTypeStyles",
		MIMEType:    "application/json",
		Handler:     handlePaletteResource,
	})
	if st != nil {
		s.AddResource(Resource{
			URI:         "gantt://projects",
			Name:        "Stored projects",
			Description: "Projects available to export_gantt's project argument",
			MIMEType:    "application/json",
			Handler: func(ctx context.Context, uri string) ([]ResourceContent, error) {
				data, err := projectsJSON(ctx, st)
				if err != nil {
					return nil, err
				}
				return jsonContent(uri, data), nil
			},
		})
	}
}

func jsonContent(uri string, data []byte) []ResourceContent {
	return []ResourceContent{{URI: uri, MIMEType: "application/json", Text: string(data)}}
}

func handleLayoutResource(_ context.Context, uri string) ([]ResourceContent, error) {
	cfg := layout.Default()
	columns := cfg.GridColumns()
	type column struct {
		Header string  `json:"header"`
		Width  float64 `json:"width"`
	}
	out := struct {
		TitleHeight float64  `json:"titleHeight"`
		GridWidth   float64  `json:"gridWidth"`
		ScaleHeight float64  `json:"scaleHeight"`
		DayWidth    float64  `json:"dayWidth"`
		RowHeight   float64  `json:"rowHeight"`
		Columns     []column `json:"columns"`
		DateFormat  string   `json:"dateFormat"`
		MonthFormat string   `json:"monthFormat"`
	}{
		TitleHeight: cfg.TitleHeight,
		GridWidth:   cfg.GridWidth,
		ScaleHeight: cfg.ScaleHeight,
		DayWidth:    cfg.DayWidth,
		RowHeight:   cfg.RowHeight,
		DateFormat:  cfg.DateFormat,
		MonthFormat: cfg.MonthFormat,
	}
	for _, c := range columns {
		out.Columns = append(out.Columns, column{Header: c.Header, Width: c.Width})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return jsonContent(uri, data), nil
}

func handlePaletteResource(_ context.Context, uri string) ([]ResourceContent, error) {
	palette := make([]string, 0, len(layout.DefaultPalette))
	for _, c := range layout.DefaultPalette {
		palette = append(palette, c.String())
	}
	data, err := json.Marshal(palette)
	if err != nil {
		return nil, err
	}
	return jsonContent(uri, data), nil
}
