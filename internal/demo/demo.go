// Package demo provides a self-contained dataset and classifier so the CLI
// can execute a report spec end to end without external model loading. It
// binds the runtime objects under the variable names the example specs
// reference.
package demo

import (
	"math"
	"math/rand"

	"github.com/vk/xreportgo/internal/mlmodel"
	"github.com/vk/xreportgo/internal/vars"
)

const seed = 42

// FeatureNames are the columns of the synthetic dataset. Separation
// decreases from f1 to f4, so importance rankings have a known order.
var FeatureNames = []string{"sepal_length", "sepal_width", "petal_length", "petal_width"}

// TargetNames are the class labels of the synthetic dataset.
var TargetNames = []string{"class_a", "class_b"}

// separations control how far apart the two class centers sit per feature.
var separations = []float64{2.5, 1.5, 0.6, 0.0}

// CentroidClassifier is a nearest-centroid model over the synthetic data.
type CentroidClassifier struct {
	Centroids mlmodel.Matrix
	Classes   []string
}

// Predict returns per-class probabilities derived from distances to the
// class centroids.
func (c *CentroidClassifier) Predict(row []float64) []float64 {
	scores := make([]float64, len(c.Centroids))
	var sum float64
	for i, centroid := range c.Centroids {
		var d2 float64
		for j, v := range row {
			diff := v - centroid[j]
			d2 += diff * diff
		}
		scores[i] = math.Exp(-d2 / 2)
		sum += scores[i]
	}
	if sum == 0 {
		for i := range scores {
			scores[i] = 1 / float64(len(scores))
		}
		return scores
	}
	for i := range scores {
		scores[i] /= sum
	}
	return scores
}

// FeatureImportances reports the normalized centroid spread per feature,
// the model's intrinsic notion of importance.
func (c *CentroidClassifier) FeatureImportances() []float64 {
	dims := len(c.Centroids[0])
	out := make([]float64, dims)
	var sum float64
	for j := 0; j < dims; j++ {
		lo, hi := c.Centroids[0][j], c.Centroids[0][j]
		for _, centroid := range c.Centroids {
			if centroid[j] < lo {
				lo = centroid[j]
			}
			if centroid[j] > hi {
				hi = centroid[j]
			}
		}
		out[j] = hi - lo
		sum += out[j]
	}
	if sum > 0 {
		for j := range out {
			out[j] /= sum
		}
	}
	return out
}

// Dataset generates the synthetic two-class sample split into train and
// test partitions. Generation is seeded, so every run sees the same data.
func Dataset() (trainX mlmodel.Matrix, trainY []string, testX mlmodel.Matrix, testY []string) {
	rng := rand.New(rand.NewSource(seed))
	sample := func(class int, n int) (mlmodel.Matrix, []string) {
		x := make(mlmodel.Matrix, n)
		y := make([]string, n)
		for i := 0; i < n; i++ {
			row := make([]float64, len(FeatureNames))
			for j := range row {
				center := separations[j] * float64(class)
				row[j] = center + rng.NormFloat64()
			}
			x[i] = row
			y[i] = TargetNames[class]
		}
		return x, y
	}

	for class := range TargetNames {
		tx, ty := sample(class, 40)
		trainX = append(trainX, tx...)
		trainY = append(trainY, ty...)
		vx, vy := sample(class, 20)
		testX = append(testX, vx...)
		testY = append(testY, vy...)
	}
	return trainX, trainY, testX, testY
}

// Train fits the nearest-centroid classifier.
func Train(x mlmodel.Matrix, y []string) *CentroidClassifier {
	clf := &CentroidClassifier{Classes: TargetNames}
	for _, name := range TargetNames {
		centroid := make([]float64, len(FeatureNames))
		count := 0
		for i, row := range x {
			if y[i] != name {
				continue
			}
			for j, v := range row {
				centroid[j] += v
			}
			count++
		}
		if count > 0 {
			for j := range centroid {
				centroid[j] /= float64(count)
			}
		}
		clf.Centroids = append(clf.Centroids, centroid)
	}
	return clf
}

// Bind populates the variable context with the demo objects under the
// names the example specs reference.
func Bind(vc *vars.Context) error {
	trainX, trainY, testX, testY := Dataset()
	clf := Train(trainX, trainY)

	bindings := map[string]any{
		"clf":               clf,
		"clf_fn":            mlmodel.PredictFunc(func(rows mlmodel.Matrix) mlmodel.Matrix { return predictBatch(clf, rows) }),
		"X_train":           trainX,
		"y_train":           trainY,
		"X_test":            testX,
		"y_test":            testY,
		"feature_names":     FeatureNames,
		"target_names_list": TargetNames,
	}
	for name, obj := range bindings {
		if err := vc.Bind(name, obj); err != nil {
			return err
		}
	}
	return nil
}

func predictBatch(clf *CentroidClassifier, rows mlmodel.Matrix) mlmodel.Matrix {
	out := make(mlmodel.Matrix, len(rows))
	for i, row := range rows {
		out[i] = clf.Predict(row)
	}
	return out
}
