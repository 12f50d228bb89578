package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/xreportgo/internal/mlmodel"
	"github.com/vk/xreportgo/internal/vars"
)

func TestDatasetIsDeterministic(t *testing.T) {
	x1, y1, _, _ := Dataset()
	x2, y2, _, _ := Dataset()

	require.Len(t, x1, 80)
	require.Len(t, y1, 80)
	assert.Equal(t, x1, x2)
	assert.Equal(t, y1, y2)
}

func TestClassifierSeparatesTheClasses(t *testing.T) {
	trainX, trainY, testX, testY := Dataset()
	clf := Train(trainX, trainY)

	correct := 0
	for i, row := range testX {
		probs := clf.Predict(row)
		require.Len(t, probs, len(TargetNames))
		if TargetNames[mlmodel.ArgMax(probs)] == testY[i] {
			correct++
		}
	}
	// The first two features separate the classes by design; near-perfect
	// accuracy is expected on this data.
	assert.Greater(t, correct, len(testX)*8/10)
}

func TestPredictProbabilitiesSumToOne(t *testing.T) {
	trainX, trainY, _, _ := Dataset()
	clf := Train(trainX, trainY)

	var sum float64
	for _, p := range clf.Predict(trainX[0]) {
		assert.GreaterOrEqual(t, p, 0.0)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestFeatureImportancesFollowSeparation(t *testing.T) {
	trainX, trainY, _, _ := Dataset()
	clf := Train(trainX, trainY)

	fi := clf.FeatureImportances()
	require.Len(t, fi, len(FeatureNames))
	assert.Greater(t, fi[0], fi[2], "widely separated features matter more")
	assert.Greater(t, fi[1], fi[3])

	var sum float64
	for _, v := range fi {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestBindPopulatesExpectedNames(t *testing.T) {
	vc := vars.NewContext()
	require.NoError(t, Bind(vc))

	for _, name := range []string{"clf", "clf_fn", "X_train", "y_train", "X_test", "y_test", "feature_names", "target_names_list"} {
		_, err := vc.Resolve(name)
		assert.NoError(t, err, name)
	}

	obj, err := vc.Resolve("clf_fn")
	require.NoError(t, err)
	_, err = mlmodel.AsPredictFunc(obj)
	assert.NoError(t, err)
}

func TestBindFailsOnFrozenContext(t *testing.T) {
	vc := vars.NewContext()
	vc.Freeze()
	require.Error(t, Bind(vc))
}
