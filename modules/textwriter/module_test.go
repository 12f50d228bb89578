package textwriter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/xreportgo/internal/component"
	"github.com/vk/xreportgo/internal/report"
	"github.com/vk/xreportgo/internal/resolve"
)

func sampleDocument() *report.Document {
	return &report.Document{
		Name: "Iris Report",
		Sections: []*report.Node{
			{
				Title: "Feature Importance Analysis",
				Desc:  "Which inputs drive the model.",
				Artifact: report.NewArtifact().
					AddTable("ranking", []string{"Rank", "Feature"}, [][]string{{"1", "petal_width"}}).
					AddChart("importance", "importances", []string{"petal_width"}, []float64{0.7}),
				Children: []*report.Node{
					{Title: "Degraded Child", Artifact: report.ErrorArtifact(errors.New("no data bound"))},
				},
			},
		},
	}
}

func TestRenderWritesPlainTextFile(t *testing.T) {
	dir := t.TempDir()
	w, err := New(resolve.AttrSet{"name": "report", "dir": dir})
	require.NoError(t, err)

	path, err := w.Render(context.Background(), sampleDocument())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.txt"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "Iris Report")
	assert.Contains(t, text, "Feature Importance Analysis")
	assert.Contains(t, text, "petal_width")
	assert.Contains(t, text, "component failed: no data bound")
}

func TestNewRequiresName(t *testing.T) {
	_, err := New(resolve.AttrSet{})
	var invalid *component.InvalidConfigError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, Class, invalid.Class)
}

func TestRenderFailsOnMissingDirectory(t *testing.T) {
	w, err := New(resolve.AttrSet{"name": "report", "dir": filepath.Join(t.TempDir(), "nope")})
	require.NoError(t, err)

	_, err = w.Render(context.Background(), sampleDocument())
	require.Error(t, err)
}
