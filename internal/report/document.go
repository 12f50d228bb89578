package report

import (
	"encoding/json"
	"fmt"

	"github.com/vk/xreportgo/internal/schema"
)

// Document is the assembled, writer-agnostic report. It is frozen before
// writer dispatch; writers only read it.
type Document struct {
	Name     string  `json:"name"`
	Overview *Node   `json:"overview,omitempty"`
	Contents *Node   `json:"contents,omitempty"`
	Sections []*Node `json:"sections"`
}

// Assemble aggregates the built section nodes into a document, synthesizing
// the overview and table-of-contents nodes when the spec asks for them.
// Assembly is pure: it derives everything from the already-built tree and
// executes no components.
func Assemble(spec *schema.ReportSpec, sections []*Node) *Document {
	doc := &Document{
		Name:     spec.Name,
		Sections: sections,
	}
	if spec.Overview {
		doc.Overview = overviewNode(sections)
	}
	if spec.ContentTable {
		doc.Contents = contentsNode(sections)
	}
	return doc
}

// overviewNode summarizes section and failure counts across the tree.
func overviewNode(sections []*Node) *Node {
	total, failures := 0, 0
	for _, sec := range sections {
		total += sec.CountSections()
		failures += sec.CountFailures()
	}
	art := NewArtifact().
		AddScalar("sections", "Sections", float64(total)).
		AddScalar("failures", "Failed components", float64(failures))
	return &Node{
		Title:    "Overview",
		Desc:     fmt.Sprintf("%d sections, %d failed components", total, failures),
		Artifact: art,
	}
}

// contentsNode lists the top-level section titles in declaration order.
func contentsNode(sections []*Node) *Node {
	rows := make([][]string, 0, len(sections))
	for i, sec := range sections {
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), sec.Title})
	}
	art := NewArtifact().AddTable("contents", []string{"#", "Title"}, rows)
	return &Node{Title: "Table of Contents", Artifact: art}
}

// MarshalTree serializes the document to its intermediate JSON tree.
func (d *Document) MarshalTree() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// UnmarshalTree reads a document back from the intermediate tree. Assembly
// is lossless: a marshal/unmarshal round trip yields an equivalent
// document.
func UnmarshalTree(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid document tree: %w", err)
	}
	return &doc, nil
}
