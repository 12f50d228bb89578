package report

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/xreportgo/internal/schema"
)

func sampleSections() []*Node {
	return []*Node{
		{Title: "First", Artifact: NewArtifact().AddScalar("n", "N", 1)},
		{Title: "Second", Children: []*Node{
			{Title: "Nested", Artifact: ErrorArtifact(errors.New("boom"))},
		}},
		{Title: "Third"},
	}
}

func TestAssembleContentsListsTopTitlesInOrder(t *testing.T) {
	spec := &schema.ReportSpec{Name: "r", ContentTable: true}
	doc := Assemble(spec, sampleSections())

	require.NotNil(t, doc.Contents)
	require.Nil(t, doc.Overview)
	tbl := doc.Contents.Artifact.Outputs[0].Table
	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, "First", tbl.Rows[0][1])
	assert.Equal(t, "Second", tbl.Rows[1][1])
	assert.Equal(t, "Third", tbl.Rows[2][1])
}

func TestAssembleOverviewCountsSectionsAndFailures(t *testing.T) {
	spec := &schema.ReportSpec{Name: "r", Overview: true}
	doc := Assemble(spec, sampleSections())

	require.NotNil(t, doc.Overview)
	outputs := doc.Overview.Artifact.Outputs
	require.Len(t, outputs, 2)
	assert.Equal(t, float64(4), outputs[0].Scalar.Value, "four nodes in the tree")
	assert.Equal(t, float64(1), outputs[1].Scalar.Value, "one degraded artifact")
}

func TestAssembleZeroFailures(t *testing.T) {
	spec := &schema.ReportSpec{Name: "r", Overview: true, ContentTable: true}
	sections := []*Node{{Title: "A"}, {Title: "B"}, {Title: "C"}}
	doc := Assemble(spec, sections)

	assert.Equal(t, float64(0), doc.Overview.Artifact.Outputs[1].Scalar.Value)
	assert.Len(t, doc.Contents.Artifact.Outputs[0].Table.Rows, 3)
}

func TestAssembleEmptySpecDoesNotCrash(t *testing.T) {
	doc := Assemble(&schema.ReportSpec{Name: "empty"}, nil)
	assert.Equal(t, "empty", doc.Name)
	assert.Empty(t, doc.Sections)
}

func TestDocumentTreeRoundTrip(t *testing.T) {
	spec := &schema.ReportSpec{Name: "round", Overview: true, ContentTable: true}
	sections := sampleSections()
	sections[0].Artifact.
		AddTable("ranking", []string{"Feature", "Score"}, [][]string{{"f1", "0.9"}}).
		AddChart("importance", "imp", []string{"f1"}, []float64{0.9}).
		AddText("note", "hello")
	doc := Assemble(spec, sections)

	data, err := doc.MarshalTree()
	require.NoError(t, err)

	back, err := UnmarshalTree(data)
	require.NoError(t, err)
	if diff := cmp.Diff(doc, back); diff != "" {
		t.Fatalf("round trip lost information (-want +got):\n%s", diff)
	}
}

func TestUnmarshalTreeRejectsGarbage(t *testing.T) {
	_, err := UnmarshalTree([]byte("{not json"))
	assert.Error(t, err)
}

func TestArtifactFailed(t *testing.T) {
	assert.False(t, NewArtifact().Failed())
	assert.True(t, ErrorArtifact(errors.New("x")).Failed())
	var nilArt *Artifact
	assert.False(t, nilArt.Failed())
}
