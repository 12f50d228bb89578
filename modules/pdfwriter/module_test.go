package pdfwriter

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

func TestRenderWritesPDFFile(t *testing.T) {
	doc := &report.Document{
		Name: "Iris Report",
		Sections: []*report.Node{
			{
				Title: "Feature Importance Analysis",
				Desc:  "Which inputs drive the model.",
				Artifact: report.NewArtifact().
					AddTable("ranking", []string{"Rank", "Feature"}, [][]string{{"1", "petal_width"}}).
					AddChart("importance", "importances", []string{"petal_width"}, []float64{0.7}).
					AddScalar("sections", "sections", 1).
					AddText("note", "computed on the demo dataset"),
			},
			{
				Title:    "Broken",
				Artifact: report.ErrorArtifact(errors.New("model not bound")),
			},
		},
	}

	dir := t.TempDir()
	w, err := New(resolve.AttrSet{"name": "report", "dir": dir})
	require.NoError(t, err)

	path, err := w.Render(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.pdf"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	head := make([]byte, 5)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.Read(head)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(head))
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

	_, err = w.Render(context.Background(), &report.Document{Name: "x"})
	require.Error(t, err)
}
