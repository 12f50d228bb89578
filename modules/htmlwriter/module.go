// Package htmlwriter implements the Html writer: a single-page HTML
// rendering of the report document with artifact tables.
package htmlwriter

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/vk/xreportgo/internal/component"
	"github.com/vk/xreportgo/internal/ctxlog"
	"github.com/vk/xreportgo/internal/registry"
	"github.com/vk/xreportgo/internal/report"
	"github.com/vk/xreportgo/internal/resolve"
)

// Class is the writer class name used in report specs.
const Class = "Html"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the writer factory with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterWriter(Class, New)
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em auto; max-width: 60em; }
table { border-collapse: collapse; margin: 0.5em 0; }
th, td { border: 1px solid #999; padding: 0.25em 0.6em; }
.error { color: #b22222; font-style: italic; }
.desc { color: #444; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{.Body}}
</body>
</html>
`))

// Writer renders documents to a standalone HTML page.
type Writer struct {
	name string
	dir  string
}

// New validates the resolved attributes and builds a Writer.
func New(attrs resolve.AttrSet) (component.Writer, error) {
	name, err := attrs.String("name")
	if err != nil {
		return nil, component.InvalidConfig(Class, err)
	}
	dir, err := attrs.StringOr("dir", ".")
	if err != nil {
		return nil, component.InvalidConfig(Class, err)
	}
	return &Writer{name: name, dir: dir}, nil
}

// Render implements component.Writer.
func (w *Writer) Render(ctx context.Context, doc *report.Document) (string, error) {
	logger := ctxlog.FromContext(ctx).With("writer", Class)

	var body strings.Builder
	if doc.Overview != nil {
		renderNode(&body, doc.Overview, 2)
	}
	if doc.Contents != nil {
		renderNode(&body, doc.Contents, 2)
	}
	for _, sec := range doc.Sections {
		renderNode(&body, sec, 2)
	}

	path := filepath.Join(w.dir, w.name+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	err = pageTemplate.Execute(f, struct {
		Title string
		Body  template.HTML
	}{Title: doc.Name, Body: template.HTML(body.String())})
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", path, err)
	}
	logger.Debug("HTML written.", "path", path)
	return path, nil
}

func renderNode(body *strings.Builder, node *report.Node, level int) {
	if level > 6 {
		level = 6
	}
	fmt.Fprintf(body, "<h%d>%s</h%d>\n", level, template.HTMLEscapeString(node.Title), level)
	if node.Desc != "" {
		fmt.Fprintf(body, "<p class=\"desc\">%s</p>\n", template.HTMLEscapeString(node.Desc))
	}
	if node.Artifact != nil {
		renderArtifact(body, node.Artifact)
	}
	for _, child := range node.Children {
		renderNode(body, child, level+1)
	}
}

func renderArtifact(body *strings.Builder, art *report.Artifact) {
	if art.Failed() {
		fmt.Fprintf(body, "<p class=\"error\">Component failed: %s</p>\n", template.HTMLEscapeString(art.Error))
		return
	}
	for _, out := range art.Outputs {
		fmt.Fprintf(body, "<h4>%s</h4>\n", template.HTMLEscapeString(out.Name))
		switch out.Kind {
		case report.KindTable:
			body.WriteString(tableHTML(out.Table.Columns, out.Table.Rows))
		case report.KindScalar:
			fmt.Fprintf(body, "<p>%s: %g</p>\n", template.HTMLEscapeString(out.Scalar.Label), out.Scalar.Value)
		case report.KindChart:
			rows := make([][]string, 0, len(out.Chart.Labels))
			for i, label := range out.Chart.Labels {
				rows = append(rows, []string{label, fmt.Sprintf("%.4f", out.Chart.Values[i])})
			}
			body.WriteString(tableHTML([]string{"Label", "Value"}, rows))
		case report.KindText:
			fmt.Fprintf(body, "<p>%s</p>\n", template.HTMLEscapeString(out.Text))
		}
	}
}

func tableHTML(columns []string, rows [][]string) string {
	tw := table.NewWriter()
	header := make(table.Row, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	tw.AppendHeader(header)
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			tr[i] = cell
		}
		tw.AppendRow(tr)
	}
	return tw.RenderHTML() + "\n"
}
