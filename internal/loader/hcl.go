package loader

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/xreportgo/internal/schema"
)

// HCLLoader loads report specs written in HCL. The block layout maps
// one-to-one onto the JSON format:
//
//	report "name" {
//	  overview      = true
//	  content_table = true
//	  section "Title" {
//	    desc = "..."
//	    component "FeatureImportanceRanking" {
//	      trained_model = "var:clf"
//	    }
//	    section "Nested" { ... }
//	  }
//	  writer "Pdf" {
//	    name = "report"
//	  }
//	}
type HCLLoader struct{}

type hclFile struct {
	Report *hclReport `hcl:"report,block"`
}

type hclReport struct {
	Name         string        `hcl:"name,label"`
	Overview     bool          `hcl:"overview,optional"`
	ContentTable bool          `hcl:"content_table,optional"`
	Sections     []*hclSection `hcl:"section,block"`
	Writers      []*hclWriter  `hcl:"writer,block"`
}

type hclSection struct {
	Title     string        `hcl:"title,label"`
	Desc      string        `hcl:"desc,optional"`
	Component *hclComponent `hcl:"component,block"`
	Sections  []*hclSection `hcl:"section,block"`
}

type hclComponent struct {
	Class string   `hcl:"class,label"`
	Body  hcl.Body `hcl:",remain"`
}

type hclWriter struct {
	Class string   `hcl:"class,label"`
	Body  hcl.Body `hcl:",remain"`
}

// LoadBytes implements Loader.
func (l *HCLLoader) LoadBytes(_ context.Context, src []byte, filename string) (*schema.ReportSpec, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL spec %s: %w", filename, diags)
	}

	var root hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("invalid report spec %s: %w", filename, diags)
	}
	if root.Report == nil {
		return nil, fmt.Errorf("invalid report spec %s: missing report block", filename)
	}

	spec := &schema.ReportSpec{
		Name:         root.Report.Name,
		Overview:     root.Report.Overview,
		ContentTable: root.Report.ContentTable,
	}
	for _, sec := range root.Report.Sections {
		translated, err := translateSection(sec)
		if err != nil {
			return nil, fmt.Errorf("invalid report spec %s: %w", filename, err)
		}
		spec.Contents = append(spec.Contents, translated)
	}
	for _, w := range root.Report.Writers {
		attr, err := extractBodyAttributes(w.Body)
		if err != nil {
			return nil, fmt.Errorf("invalid report spec %s: writer %q: %w", filename, w.Class, err)
		}
		spec.Writers = append(spec.Writers, &schema.WriterSpec{Class: w.Class, Attr: attr})
	}
	return spec, nil
}

func translateSection(sec *hclSection) (*schema.Section, error) {
	out := &schema.Section{Title: sec.Title, Desc: sec.Desc}
	if sec.Component != nil {
		attr, err := extractBodyAttributes(sec.Component.Body)
		if err != nil {
			return nil, fmt.Errorf("section %q, component %q: %w", sec.Title, sec.Component.Class, err)
		}
		out.Component = &schema.ComponentSpec{Class: sec.Component.Class, Attr: attr}
	}
	for _, child := range sec.Sections {
		translated, err := translateSection(child)
		if err != nil {
			return nil, err
		}
		out.Sections = append(out.Sections, translated)
	}
	return out, nil
}

// extractBodyAttributes evaluates every attribute of a component or writer
// body as a literal expression and classifies the results. Variable
// references stay string-prefixed ("var:...") so the same marker works in
// every spec format.
func extractBodyAttributes(body hcl.Body) (map[string]schema.AttrValue, error) {
	attrs := make(map[string]schema.AttrValue)
	if body == nil {
		return attrs, nil
	}
	hclAttrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	for name, attr := range hclAttrs {
		if name == schema.CommentKey {
			continue
		}
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("attribute %q: %w", name, diags)
		}
		attrs[name] = schema.FromCty(val)
	}
	return attrs, nil
}
