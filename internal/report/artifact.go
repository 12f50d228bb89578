// Package report defines the writer-agnostic document model: the artifact
// payloads produced by components, the node tree mirroring the spec's
// section nesting, and the assembled document handed to writers.
package report

// OutputKind discriminates artifact payloads.
type OutputKind string

const (
	KindTable  OutputKind = "table"
	KindScalar OutputKind = "scalar"
	KindChart  OutputKind = "chart"
	KindText   OutputKind = "text"
)

// Table is a rectangular payload with pre-formatted cells.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Scalar is a single named statistic.
type Scalar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Chart is a label/value series; writers decide how to draw it.
type Chart struct {
	Title  string    `json:"title,omitempty"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Output is one named payload of an artifact.
type Output struct {
	Name   string     `json:"name"`
	Kind   OutputKind `json:"kind"`
	Table  *Table     `json:"table,omitempty"`
	Scalar *Scalar    `json:"scalar,omitempty"`
	Chart  *Chart     `json:"chart,omitempty"`
	Text   string     `json:"text,omitempty"`
}

// Artifact is the structured result of one component run: an ordered list
// of named outputs, or an error description when the run degraded.
type Artifact struct {
	Outputs []*Output `json:"outputs,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// NewArtifact returns an empty, successful artifact.
func NewArtifact() *Artifact {
	return &Artifact{}
}

// ErrorArtifact builds the degraded placeholder emitted when a component
// fails; the section it belongs to still renders, annotated in place.
func ErrorArtifact(err error) *Artifact {
	return &Artifact{Error: err.Error()}
}

// Failed reports whether the artifact records a component failure.
func (a *Artifact) Failed() bool {
	return a != nil && a.Error != ""
}

// AddTable appends a table output.
func (a *Artifact) AddTable(name string, columns []string, rows [][]string) *Artifact {
	a.Outputs = append(a.Outputs, &Output{
		Name: name, Kind: KindTable,
		Table: &Table{Columns: columns, Rows: rows},
	})
	return a
}

// AddScalar appends a scalar output.
func (a *Artifact) AddScalar(name, label string, value float64) *Artifact {
	a.Outputs = append(a.Outputs, &Output{
		Name: name, Kind: KindScalar,
		Scalar: &Scalar{Label: label, Value: value},
	})
	return a
}

// AddChart appends a chart output.
func (a *Artifact) AddChart(name, title string, labels []string, values []float64) *Artifact {
	a.Outputs = append(a.Outputs, &Output{
		Name: name, Kind: KindChart,
		Chart: &Chart{Title: title, Labels: labels, Values: values},
	})
	return a
}

// AddText appends a free-text output.
func (a *Artifact) AddText(name, text string) *Artifact {
	a.Outputs = append(a.Outputs, &Output{Name: name, Kind: KindText, Text: text})
	return a
}
