package loader

import (
	"fmt"

	"github.com/vk/xreportgo/internal/ctyconv"
	"github.com/vk/xreportgo/internal/schema"
)

// buildReport translates a decoded document (the map/slice/scalar shapes
// both encoding/json and yaml.v3 produce) into the schema model. Only
// structural problems are errors here; unknown component classes and
// unresolved variables surface later, scoped to their section.
func buildReport(raw map[string]any) (*schema.ReportSpec, error) {
	spec := &schema.ReportSpec{}

	name, ok := raw["name"].(string)
	if !ok {
		return nil, fmt.Errorf("report spec requires a string %q field", "name")
	}
	spec.Name = name
	spec.Overview, _ = raw["overview"].(bool)
	spec.ContentTable, _ = raw["content_table"].(bool)

	contents, err := asList(raw["contents"], "contents")
	if err != nil {
		return nil, err
	}
	for i, item := range contents {
		sec, err := buildSection(item)
		if err != nil {
			return nil, fmt.Errorf("contents[%d]: %w", i, err)
		}
		spec.Contents = append(spec.Contents, sec)
	}

	writers, err := asList(raw["writers"], "writers")
	if err != nil {
		return nil, err
	}
	for i, item := range writers {
		w, err := buildWriter(item)
		if err != nil {
			return nil, fmt.Errorf("writers[%d]: %w", i, err)
		}
		spec.Writers = append(spec.Writers, w)
	}

	return spec, nil
}

func buildSection(v any) (*schema.Section, error) {
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("section must be an object, got %T", v)
	}
	title, ok := raw["title"].(string)
	if !ok {
		return nil, fmt.Errorf("section requires a string %q field", "title")
	}
	sec := &schema.Section{Title: title}
	sec.Desc, _ = raw["desc"].(string)

	if compRaw, ok := raw["component"]; ok && compRaw != nil {
		comp, err := buildComponent(compRaw)
		if err != nil {
			return nil, fmt.Errorf("section %q: %w", title, err)
		}
		sec.Component = comp
	}

	children, err := asList(raw["sections"], "sections")
	if err != nil {
		return nil, fmt.Errorf("section %q: %w", title, err)
	}
	for i, item := range children {
		child, err := buildSection(item)
		if err != nil {
			return nil, fmt.Errorf("section %q, child %d: %w", title, i, err)
		}
		sec.Sections = append(sec.Sections, child)
	}
	return sec, nil
}

func buildComponent(v any) (*schema.ComponentSpec, error) {
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("component must be an object, got %T", v)
	}
	class, ok := raw["class"].(string)
	if !ok {
		return nil, fmt.Errorf("component requires a string %q field", "class")
	}
	attr, err := buildAttrMap(raw["attr"])
	if err != nil {
		return nil, fmt.Errorf("component %q: %w", class, err)
	}
	return &schema.ComponentSpec{Class: class, Attr: attr}, nil
}

func buildWriter(v any) (*schema.WriterSpec, error) {
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("writer must be an object, got %T", v)
	}
	class, ok := raw["class"].(string)
	if !ok {
		return nil, fmt.Errorf("writer requires a string %q field", "class")
	}
	attr, err := buildAttrMap(raw["attr"])
	if err != nil {
		return nil, fmt.Errorf("writer %q: %w", class, err)
	}
	return &schema.WriterSpec{Class: class, Attr: attr}, nil
}

func buildAttrMap(v any) (map[string]schema.AttrValue, error) {
	attrs := make(map[string]schema.AttrValue)
	if v == nil {
		return attrs, nil
	}
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("attr must be an object, got %T", v)
	}
	for name, val := range raw {
		if name == schema.CommentKey {
			continue
		}
		ctyVal, err := ctyconv.FromNative(val)
		if err != nil {
			return nil, fmt.Errorf("attr %q: %w", name, err)
		}
		attrs[name] = schema.FromCty(ctyVal)
	}
	return attrs, nil
}

func asList(v any, field string) ([]any, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array, got %T", field, v)
	}
	return list, nil
}
