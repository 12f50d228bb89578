// Package pdfwriter implements the Pdf writer: it renders an assembled
// report document to a PDF file named by the writer's attributes.
package pdfwriter

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"github.com/vk/xreportgo/internal/component"
	"github.com/vk/xreportgo/internal/ctxlog"
	"github.com/vk/xreportgo/internal/registry"
	"github.com/vk/xreportgo/internal/report"
	"github.com/vk/xreportgo/internal/resolve"
)

// Class is the writer class name used in report specs.
const Class = "Pdf"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the writer factory with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterWriter(Class, New)
}

// Writer renders documents to PDF.
type Writer struct {
	name string
	dir  string
}

// New validates the resolved attributes and builds a Writer. `name` is the
// output base filename; `dir` defaults to the working directory.
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

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Name, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.MultiCell(0, 10, doc.Name, "", "C", false)
	pdf.Ln(4)

	if doc.Overview != nil {
		w.renderNode(pdf, doc.Overview, 0)
	}
	if doc.Contents != nil {
		w.renderNode(pdf, doc.Contents, 0)
	}
	for _, sec := range doc.Sections {
		w.renderNode(pdf, sec, 0)
	}

	path := filepath.Join(w.dir, w.name+".pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Debug("PDF written.", "path", path)
	return path, nil
}

func (w *Writer) renderNode(pdf *fpdf.Fpdf, node *report.Node, depth int) {
	size := 16 - float64(depth)*2
	if size < 11 {
		size = 11
	}
	pdf.SetFont("Helvetica", "B", size)
	pdf.MultiCell(0, 8, node.Title, "", "L", false)

	if node.Desc != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, node.Desc, "", "L", false)
	}
	pdf.Ln(2)

	if node.Artifact != nil {
		w.renderArtifact(pdf, node.Artifact)
	}
	for _, child := range node.Children {
		w.renderNode(pdf, child, depth+1)
	}
}

func (w *Writer) renderArtifact(pdf *fpdf.Fpdf, art *report.Artifact) {
	if art.Failed() {
		pdf.SetTextColor(178, 34, 34)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 5, "Component failed: "+art.Error, "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
		return
	}
	for _, out := range art.Outputs {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.MultiCell(0, 5, out.Name, "", "L", false)
		pdf.SetFont("Helvetica", "", 9)
		switch out.Kind {
		case report.KindTable:
			w.renderTable(pdf, out.Table)
		case report.KindScalar:
			pdf.MultiCell(0, 5, fmt.Sprintf("%s: %g", out.Scalar.Label, out.Scalar.Value), "", "L", false)
		case report.KindChart:
			// No chart rasterizer; charts degrade to their label/value grid.
			tbl := &report.Table{Columns: []string{"Label", "Value"}}
			for i, label := range out.Chart.Labels {
				tbl.Rows = append(tbl.Rows, []string{label, fmt.Sprintf("%.4f", out.Chart.Values[i])})
			}
			w.renderTable(pdf, tbl)
		case report.KindText:
			pdf.MultiCell(0, 5, out.Text, "", "L", false)
		}
		pdf.Ln(2)
	}
}

func (w *Writer) renderTable(pdf *fpdf.Fpdf, tbl *report.Table) {
	if tbl == nil || len(tbl.Columns) == 0 {
		return
	}
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(len(tbl.Columns))

	pdf.SetFont("Helvetica", "B", 9)
	for _, col := range tbl.Columns {
		pdf.CellFormat(colWidth, 6, col, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range tbl.Rows {
		for _, cell := range row {
			pdf.CellFormat(colWidth, 6, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}
