// Package schema defines the format-agnostic model of a report
// specification. Loaders for concrete formats (JSON, YAML, HCL) translate
// their documents into these structures; the rest of the engine never sees
// the original syntax.
package schema

// ReportSpec is the root of a report specification document.
type ReportSpec struct {
	Name         string
	Overview     bool
	ContentTable bool
	Contents     []*Section
	Writers      []*WriterSpec
}

// Section is one node of the report outline. Sections nest arbitrarily deep
// and may additionally carry at most one component invocation. Execution
// order is the component first, then the child sections in declaration
// order.
type Section struct {
	Title     string
	Desc      string
	Sections  []*Section
	Component *ComponentSpec
}

// ComponentSpec names a registered component class and the attribute map it
// is instantiated with.
type ComponentSpec struct {
	Class string
	Attr  map[string]AttrValue
}

// WriterSpec names a registered writer class and its attribute map.
type WriterSpec struct {
	Class string
	Attr  map[string]AttrValue
}
