package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/lvillar/ganttpdf"
	"github.com/lvillar/ganttpdf/config"
	"github.com/lvillar/ganttpdf/importer"
	"github.com/lvillar/ganttpdf/layout"
	"github.com/lvillar/ganttpdf/pdfsurface"
	"github.com/lvillar/ganttpdf/render"
	"github.com/lvillar/ganttpdf/store"
	"github.com/lvillar/ganttpdf/tasktree"
)

// Env is what the default tools work against. Store may be nil, in which
// case the project tools are not registered and charts can only be built
// from inline task lists.
type Env struct {
	Config *config.Config
	Store  *store.Store
}

// RegisterDefaultTools adds the gantt tools to the server.
func RegisterDefaultTools(s *Server, env Env) {
	if env.Config == nil {
		env.Config = config.Default()
	}
	t := &tools{env: env}
	s.AddTool(t.exportTool())
	s.AddTool(t.planTool())
	s.AddTool(t.layoutTool())
	if env.Store != nil {
		s.AddTool(t.importTool())
		s.AddTool(t.listProjectsTool())
	}
}

type tools struct {
	env Env
}

var chartProperties = map[string]any{
	"tasks": map[string]any{
		"type":        "object",
		"description": `Gantt export: {"data": [{"id", "parent", "text", "start_date", "end_date" or "duration" (hours), "progress" (0-1), "status", "workType", "type": "project"}]}`,
	},
	"project": map[string]any{
		"type":        "string",
		"description": "Name or id of a stored project, used when tasks is omitted",
	},
	"title":          map[string]any{"type": "string", "description": "Chart title"},
	"brand":          map[string]any{"type": "string", "description": "Text left of the title"},
	"icon":           map[string]any{"type": "string", "description": "Title icon: file path, URL or data URI"},
	"statusIcons":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Status glyphs indexed by status code"},
	"workTypeStyles": map[string]any{"type": "object", "description": "Work type to palette index"},
	"strict":         map[string]any{"type": "boolean", "description": "Fail on tasks listed before their parent"},
}

func withProperties(extra map[string]any) map[string]any {
	props := make(map[string]any, len(chartProperties)+len(extra))
	for k, v := range chartProperties {
		props[k] = v
	}
	for k, v := range extra {
		props[k] = v
	}
	return map[string]any{"type": "object", "properties": props}
}

// source resolves the task list named by the arguments.
func (t *tools) source(ctx context.Context, args map[string]any) (tasktree.Source, error) {
	if raw, ok := args["tasks"]; ok {
		tasks, err := parseTasks(raw)
		if err != nil {
			return nil, err
		}
		return tasktree.NewSliceSource(tasks), nil
	}
	name, _ := args["project"].(string)
	if name == "" {
		return nil, fmt.Errorf("one of 'tasks' and 'project' is required")
	}
	if t.env.Store == nil {
		return nil, fmt.Errorf("no project store configured")
	}
	p, err := t.env.Store.FindProject(ctx, name)
	if err != nil {
		return nil, err
	}
	return t.env.Store.Source(ctx, p.ID), nil
}

// parseTasks converts a decoded gantt export argument into tasks.
func parseTasks(raw any) ([]tasktree.Task, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encoding tasks: %w", err)
	}
	return importer.Parse(data)
}

// options layers the call arguments over the configured defaults.
func (t *tools) options(args map[string]any, extra ...ganttpdf.Option) ([]ganttpdf.Option, error) {
	var opts []ganttpdf.Option
	if v, ok := args["title"].(string); ok {
		opts = append(opts, ganttpdf.WithTitle(v))
	}
	if v, ok := args["brand"].(string); ok {
		opts = append(opts, ganttpdf.WithBrand(v))
	}
	if v, ok := args["icon"].(string); ok {
		opts = append(opts, ganttpdf.WithIcon(v))
	}
	if v, ok := args["statusIcons"].([]any); ok {
		icons := make([]string, 0, len(v))
		for _, icon := range v {
			s, ok := icon.(string)
			if !ok {
				return nil, fmt.Errorf("statusIcons must be strings")
			}
			icons = append(icons, s)
		}
		opts = append(opts, ganttpdf.WithStatusIcons(icons...))
	}
	if v, ok := args["workTypeStyles"].(map[string]any); ok {
		styles := make(map[string]float64, len(v))
		for k, n := range v {
			f, ok := n.(float64)
			if !ok {
				return nil, fmt.Errorf("workTypeStyles[%q] must be a number", k)
			}
			styles[k] = f
		}
		opts = append(opts, ganttpdf.WithWorkTypeStyles(styles))
	}
	if v, ok := args["strict"].(bool); ok {
		opts = append(opts, ganttpdf.WithStrictHierarchy(v))
	}
	if v, ok := args["watermark"].(string); ok && v != "" {
		opts = append(opts, ganttpdf.WithWatermark(pdfsurface.Watermark{Text: v}))
	}
	if v, ok := args["code"].(string); ok && v != "" {
		opts = append(opts, ganttpdf.WithCode(pdfsurface.SymbologyQR, v))
	}
	return t.env.Config.Options(append(opts, extra...)...)
}

func (t *tools) exportTool() Tool {
	return Tool{
		Name:        "export_gantt",
		Description: "Render a gantt chart as a single-page PDF. Returns the PDF as base64 unless outputPath is given.",
		InputSchema: withProperties(map[string]any{
			"outputPath": map[string]any{"type": "string", "description": "Optional file path to save the PDF"},
			"watermark":  map[string]any{"type": "string", "description": "Diagonal text such as DRAFT"},
			"code":       map[string]any{"type": "string", "description": "Content of a QR code drawn in the title band"},
		}),
		Handler: t.handleExport,
	}
}

func (t *tools) handleExport(ctx context.Context, args map[string]any) (ToolResult, error) {
	src, err := t.source(ctx, args)
	if err != nil {
		return ToolResult{}, err
	}
	opts, err := t.options(args)
	if err != nil {
		return ToolResult{}, err
	}

	var buf bytes.Buffer
	rep, err := ganttpdf.Export(ctx, &buf, src, opts...)
	if err != nil {
		return ToolResult{}, err
	}
	summary := fmt.Sprintf("Gantt chart exported: %d rows, %d days, %.0fx%.0fpt %s",
		rep.Rows, rep.DayCount, rep.Page.Width, rep.Page.Height, rep.Page.Orientation)
	for _, ae := range rep.AssetErrors {
		summary += "\nskipped " + ae.Cell + ": " + ae.Err.Error()
	}

	if outputPath, ok := args["outputPath"].(string); ok && outputPath != "" {
		if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
			return ToolResult{}, fmt.Errorf("writing file: %w", err)
		}
		return textResult("%s\nSaved to %s (%d bytes)", summary, outputPath, buf.Len()), nil
	}
	return ToolResult{Content: []ContentBlock{
		{Type: "text", Text: summary},
		{Type: "resource", MIMEType: "application/pdf", Data: base64.StdEncoding.EncodeToString(buf.Bytes())},
	}}, nil
}

type monthJSON struct {
	Label string `json:"label"`
	Start int    `json:"start"`
	Count int    `json:"count"`
}

type planJSON struct {
	Rows        int         `json:"rows"`
	DayCount    int         `json:"dayCount"`
	Start       string      `json:"start"`
	End         string      `json:"end"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	Orientation string      `json:"orientation"`
	Months      []monthJSON `json:"months"`
}

func (t *tools) planTool() Tool {
	return Tool{
		Name:        "plan_gantt",
		Description: "Compute the page size, day count and month headers a gantt chart would have, without rendering it.",
		InputSchema: withProperties(nil),
		Handler:     t.handlePlan,
	}
}

func (t *tools) handlePlan(ctx context.Context, args map[string]any) (ToolResult, error) {
	src, err := t.source(ctx, args)
	if err != nil {
		return ToolResult{}, err
	}
	opts, err := t.options(args)
	if err != nil {
		return ToolResult{}, err
	}
	rep, err := ganttpdf.Plan(src, opts...)
	if err != nil {
		return ToolResult{}, err
	}

	out := planJSON{
		Rows:        rep.Rows,
		DayCount:    rep.DayCount,
		Start:       rep.Axis.Start.Format("2006-01-02"),
		End:         rep.Axis.End.Format("2006-01-02"),
		Width:       rep.Page.Width,
		Height:      rep.Page.Height,
		Orientation: string(rep.Page.Orientation),
	}
	for _, m := range rep.Axis.Months {
		out.Months = append(out.Months, monthJSON{Label: m.Label, Start: m.Start, Count: m.Count})
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	return textResult("%s", data), nil
}

func (t *tools) layoutTool() Tool {
	return Tool{
		Name:        "layout_gantt",
		Description: "Lay out a gantt chart and return the draw operations (kind, rectangle, text, color) as JSON instead of a PDF.",
		InputSchema: withProperties(map[string]any{
			"kind": map[string]any{"type": "string", "description": "Only return operations of this kind: text, fill, rounded, border, triangle, image or code"},
		}),
		Handler: t.handleLayout,
	}
}

func (t *tools) handleLayout(ctx context.Context, args map[string]any) (ToolResult, error) {
	src, err := t.source(ctx, args)
	if err != nil {
		return ToolResult{}, err
	}
	rec := &render.Recorder{}
	opts, err := t.options(args, ganttpdf.WithSurface(func(layout.Page) (render.Surface, error) {
		return rec, nil
	}))
	if err != nil {
		return ToolResult{}, err
	}
	var buf bytes.Buffer
	if _, err := ganttpdf.Export(ctx, &buf, src, opts...); err != nil {
		return ToolResult{}, err
	}
	if kind, _ := args["kind"].(string); kind != "" {
		data, _ := json.Marshal(map[string]any{"ops": rec.Kind(kind)})
		return textResult("%s", data), nil
	}
	return textResult("%s", strings.TrimSpace(buf.String())), nil
}

func (t *tools) importTool() Tool {
	return Tool{
		Name:        "import_gantt",
		Description: "Store a gantt export under a project name, replacing the project's previous task list.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"project": chartProperties["project"],
				"tasks":   chartProperties["tasks"],
			},
			"required": []string{"project", "tasks"},
		},
		Handler: t.handleImport,
	}
}

func (t *tools) handleImport(ctx context.Context, args map[string]any) (ToolResult, error) {
	name, _ := args["project"].(string)
	if name == "" {
		return ToolResult{}, fmt.Errorf("missing 'project' argument")
	}
	raw, ok := args["tasks"]
	if !ok {
		return ToolResult{}, fmt.Errorf("missing 'tasks' argument")
	}
	tasks, err := parseTasks(raw)
	if err != nil {
		return ToolResult{}, err
	}

	st := t.env.Store
	p, err := st.FindProject(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		p, err = st.CreateProject(ctx, name)
	}
	if err != nil {
		return ToolResult{}, err
	}
	if err := st.SaveTasks(ctx, p.ID, tasks); err != nil {
		return ToolResult{}, err
	}
	return textResult("Imported %d tasks into project %s (%s)", len(tasks), p.Name, p.ID), nil
}

func (t *tools) listProjectsTool() Tool {
	return Tool{
		Name:        "list_projects",
		Description: "List stored projects.",
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
		Handler: func(ctx context.Context, _ map[string]any) (ToolResult, error) {
			data, err := projectsJSON(ctx, t.env.Store)
			if err != nil {
				return ToolResult{}, err
			}
			return textResult("%s", data), nil
		},
	}
}

type projectJSON struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Updated string `json:"updated"`
}

func projectsJSON(ctx context.Context, st *store.Store) ([]byte, error) {
	list, err := st.Projects(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]projectJSON, 0, len(list))
	for _, p := range list {
		out = append(out, projectJSON{ID: p.ID, Name: p.Name, Updated: p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00")})
	}
	return json.MarshalIndent(out, "", "  ")
}
