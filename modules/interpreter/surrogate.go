package interpreter

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/vk/xreportgo/internal/mlmodel"
)

// FeatureWeight is one feature's contribution in a local explanation,
// ordered by descending absolute weight.
type FeatureWeight struct {
	Index int
	Score float64
}

// ClassExplanation is the local explanation of one class for one instance.
type ClassExplanation struct {
	Confidence float64
	Features   []FeatureWeight
}

// Explanation maps class index to its local explanation.
type Explanation map[int]ClassExplanation

// surrogate is a local-surrogate explainer in the LIME family: it perturbs
// an instance with Gaussian noise scaled to the training distribution,
// weights the perturbed samples by proximity, and fits a weighted linear
// model per class whose coefficients become the feature attributions.
type surrogate struct {
	predict mlmodel.PredictFunc
	mean    []float64
	sigma   []float64
	rng     *rand.Rand
}

func newSurrogate(predict mlmodel.PredictFunc, train mlmodel.Matrix, seed int64) (*surrogate, error) {
	if len(train) == 0 {
		return nil, fmt.Errorf("training data is empty")
	}
	cols := len(train[0])
	s := &surrogate{
		predict: predict,
		mean:    make([]float64, cols),
		sigma:   make([]float64, cols),
		rng:     rand.New(rand.NewSource(seed)),
	}
	column := make([]float64, len(train))
	for j := 0; j < cols; j++ {
		for i, row := range train {
			column[i] = row[j]
		}
		m, sd := stat.MeanStdDev(column, nil)
		if sd == 0 || math.IsNaN(sd) {
			sd = 1
		}
		s.mean[j] = m
		s.sigma[j] = sd
	}
	return s, nil
}

// explain produces local explanations for the topLabels highest-confidence
// classes of one instance, keeping numFeatures attributions per class.
func (s *surrogate) explain(instance []float64, topLabels, numSamples, numFeatures int) (Explanation, error) {
	dims := len(instance)
	if dims != len(s.sigma) {
		return nil, fmt.Errorf("instance has %d features, training data has %d", dims, len(s.sigma))
	}
	if numSamples < dims+2 {
		numSamples = dims + 2
	}

	// Row 0 is the instance itself; the rest are Gaussian perturbations.
	samples := make(mlmodel.Matrix, numSamples)
	samples[0] = append([]float64(nil), instance...)
	for i := 1; i < numSamples; i++ {
		row := make([]float64, dims)
		for j := range row {
			row[j] = instance[j] + s.sigma[j]*s.rng.NormFloat64()
		}
		samples[i] = row
	}

	probs := s.predict(samples)
	if len(probs) != numSamples || len(probs[0]) == 0 {
		return nil, fmt.Errorf("prediction function returned %d rows for %d samples", len(probs), numSamples)
	}
	classes := len(probs[0])
	if topLabels <= 0 || topLabels > classes {
		topLabels = classes
	}

	// Proximity kernel over sigma-normalized distance.
	width := 0.75 * math.Sqrt(float64(dims))
	weights := make([]float64, numSamples)
	for i, row := range samples {
		var d2 float64
		for j := range row {
			z := (row[j] - instance[j]) / s.sigma[j]
			d2 += z * z
		}
		weights[i] = math.Exp(-d2 / (width * width))
	}

	// Standardized design matrix with an intercept column, pre-multiplied
	// by sqrt-weights so an ordinary least-squares solve fits the weighted
	// problem.
	design := mat.NewDense(numSamples, dims+1, nil)
	for i, row := range samples {
		sw := math.Sqrt(weights[i])
		design.Set(i, 0, sw)
		for j := range row {
			design.Set(i, j+1, sw*(row[j]-instance[j])/s.sigma[j])
		}
	}

	order := make([]int, classes)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return probs[0][order[a]] > probs[0][order[b]] })

	exp := make(Explanation, topLabels)
	for _, class := range order[:topLabels] {
		target := mat.NewVecDense(numSamples, nil)
		for i := 0; i < numSamples; i++ {
			target.SetVec(i, math.Sqrt(weights[i])*probs[i][class])
		}
		var beta mat.VecDense
		if err := beta.SolveVec(design, target); err != nil {
			return nil, fmt.Errorf("surrogate fit failed for class %d: %w", class, err)
		}

		features := make([]FeatureWeight, dims)
		for j := 0; j < dims; j++ {
			features[j] = FeatureWeight{Index: j, Score: beta.AtVec(j + 1)}
		}
		sort.SliceStable(features, func(a, b int) bool {
			return math.Abs(features[a].Score) > math.Abs(features[b].Score)
		})
		if numFeatures > 0 && numFeatures < len(features) {
			features = features[:numFeatures]
		}
		exp[class] = ClassExplanation{Confidence: probs[0][class], Features: features}
	}
	return exp, nil
}
