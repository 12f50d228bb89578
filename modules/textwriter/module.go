// Package textwriter implements the Text writer: a plain-text rendering of
// the report document, useful for console inspection and tests.
package textwriter

import (
	"context"
	"fmt"
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
const Class = "Text"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the writer factory with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterWriter(Class, New)
}

// Writer renders documents to a plain-text file.
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

	var out strings.Builder
	fmt.Fprintf(&out, "%s\n%s\n\n", doc.Name, strings.Repeat("=", len(doc.Name)))
	if doc.Overview != nil {
		renderNode(&out, doc.Overview, 0)
	}
	if doc.Contents != nil {
		renderNode(&out, doc.Contents, 0)
	}
	for _, sec := range doc.Sections {
		renderNode(&out, sec, 0)
	}

	path := filepath.Join(w.dir, w.name+".txt")
	if err := os.WriteFile(path, []byte(out.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Debug("Text report written.", "path", path)
	return path, nil
}

func renderNode(out *strings.Builder, node *report.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(out, "%s%s\n", indent, node.Title)
	if node.Desc != "" {
		fmt.Fprintf(out, "%s%s\n", indent, node.Desc)
	}
	if node.Artifact != nil {
		renderArtifact(out, node.Artifact, indent)
	}
	out.WriteString("\n")
	for _, child := range node.Children {
		renderNode(out, child, depth+1)
	}
}

func renderArtifact(out *strings.Builder, art *report.Artifact, indent string) {
	if art.Failed() {
		fmt.Fprintf(out, "%s[component failed: %s]\n", indent, art.Error)
		return
	}
	for _, o := range art.Outputs {
		fmt.Fprintf(out, "%s%s:\n", indent, o.Name)
		switch o.Kind {
		case report.KindTable:
			writeTable(out, o.Table.Columns, o.Table.Rows, indent)
		case report.KindScalar:
			fmt.Fprintf(out, "%s  %s: %g\n", indent, o.Scalar.Label, o.Scalar.Value)
		case report.KindChart:
			rows := make([][]string, 0, len(o.Chart.Labels))
			for i, label := range o.Chart.Labels {
				rows = append(rows, []string{label, fmt.Sprintf("%.4f", o.Chart.Values[i])})
			}
			writeTable(out, []string{"Label", "Value"}, rows, indent)
		case report.KindText:
			fmt.Fprintf(out, "%s  %s\n", indent, o.Text)
		}
	}
}

func writeTable(out *strings.Builder, columns []string, rows [][]string, indent string) {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
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
	for _, line := range strings.Split(tw.Render(), "\n") {
		fmt.Fprintf(out, "%s  %s\n", indent, line)
	}
}
