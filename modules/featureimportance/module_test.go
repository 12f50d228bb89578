package featureimportance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/xreportgo/internal/component"
	"github.com/vk/xreportgo/internal/mlmodel"
	"github.com/vk/xreportgo/internal/report"
	"github.com/vk/xreportgo/internal/resolve"
)

// firstFeatureModel depends only on column 0, so permutation importance
// must rank that feature first.
type firstFeatureModel struct{}

func (firstFeatureModel) Predict(row []float64) []float64 { return []float64{row[0]} }

type importerModel struct {
	importances []float64
}

func (importerModel) Predict(row []float64) []float64 { return []float64{0} }

func (m importerModel) FeatureImportances() []float64 { return m.importances }

func trainData(rows int) mlmodel.Matrix {
	data := make(mlmodel.Matrix, rows)
	for i := range data {
		data[i] = []float64{float64(i), float64(rows - i), 0.5}
	}
	return data
}

func baseAttrs() resolve.AttrSet {
	return resolve.AttrSet{
		"trained_model": firstFeatureModel{},
		"train_data":    trainData(12),
		"feature_names": []string{"alpha", "beta", "gamma"},
	}
}

func TestOmittedMethodUsesPermutation(t *testing.T) {
	comp, err := New(baseAttrs())
	require.NoError(t, err)

	art, err := comp.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, art.Outputs, 2)

	ranking := art.Outputs[0]
	assert.Equal(t, "ranking", ranking.Name)
	require.Equal(t, report.KindTable, ranking.Kind)
	require.Len(t, ranking.Table.Rows, 3)
	assert.Equal(t, "alpha", ranking.Table.Rows[0][1], "the only feature the model reads ranks first")

	chart := art.Outputs[1]
	require.Equal(t, report.KindChart, chart.Kind)
	assert.Contains(t, chart.Chart.Title, MethodPermutation)
}

func TestDefaultAliasMatchesPermutation(t *testing.T) {
	attrs := baseAttrs()
	attrs["method"] = MethodDefault
	aliased, err := New(attrs)
	require.NoError(t, err)
	explicit, err := New(baseAttrs())
	require.NoError(t, err)

	a1, err := aliased.Run(context.Background())
	require.NoError(t, err)
	a2, err := explicit.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a2.Outputs[0].Table.Rows, a1.Outputs[0].Table.Rows)
}

func TestNativeMethodReadsModelImportances(t *testing.T) {
	attrs := baseAttrs()
	attrs["trained_model"] = importerModel{importances: []float64{0.1, 0.6, 0.3}}
	attrs["method"] = MethodNative

	comp, err := New(attrs)
	require.NoError(t, err)
	art, err := comp.Run(context.Background())
	require.NoError(t, err)

	rows := art.Outputs[0].Table.Rows
	assert.Equal(t, "beta", rows[0][1])
	assert.Equal(t, "gamma", rows[1][1])
	assert.Equal(t, "alpha", rows[2][1])
	assert.Equal(t, "0.6000", rows[0][2], "normalized scores sum to one")
}

func TestNativeMethodRejectsPlainModels(t *testing.T) {
	attrs := baseAttrs()
	attrs["method"] = MethodNative

	comp, err := New(attrs)
	require.NoError(t, err)
	_, err = comp.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feature importances")
}

func TestConfigValidation(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(resolve.AttrSet)
	}{
		{name: "missing model", mutate: func(a resolve.AttrSet) { delete(a, "trained_model") }},
		{name: "model without Predict", mutate: func(a resolve.AttrSet) { a["trained_model"] = "not a model" }},
		{name: "missing data", mutate: func(a resolve.AttrSet) { delete(a, "train_data") }},
		{name: "empty data", mutate: func(a resolve.AttrSet) { a["train_data"] = mlmodel.Matrix{} }},
		{name: "feature count mismatch", mutate: func(a resolve.AttrSet) { a["feature_names"] = []string{"only_one"} }},
		{name: "unknown method", mutate: func(a resolve.AttrSet) { a["method"] = "shap" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			attrs := baseAttrs()
			tc.mutate(attrs)
			_, err := New(attrs)
			var invalid *component.InvalidConfigError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, Class, invalid.Class)
		})
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	comp, err := New(baseAttrs())
	require.NoError(t, err)
	_, err = comp.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
