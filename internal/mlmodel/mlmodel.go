// Package mlmodel declares the runtime contracts between the report engine
// and the caller-supplied model objects bound into the variable context.
// The engine never inspects how these objects were trained or loaded.
package mlmodel

import "fmt"

// Matrix is a row-major dataset: one row per example, one column per
// feature.
type Matrix [][]float64

// Model scores a single example. Classification models return one score
// per class; regression models return a single-element slice.
type Model interface {
	Predict(row []float64) []float64
}

// PredictFunc is a batch prediction function, the shape explainers work
// against.
type PredictFunc func(rows Matrix) Matrix

// FeatureImporter is implemented by models that expose intrinsic
// per-feature importances.
type FeatureImporter interface {
	FeatureImportances() []float64
}

// AsMatrix coerces a bound runtime object into a Matrix.
func AsMatrix(v any) (Matrix, error) {
	switch m := v.(type) {
	case Matrix:
		return m, nil
	case [][]float64:
		return Matrix(m), nil
	default:
		return nil, fmt.Errorf("expected a dataset matrix, got %T", v)
	}
}

// AsModel coerces a bound runtime object into a Model.
func AsModel(v any) (Model, error) {
	m, ok := v.(Model)
	if !ok {
		return nil, fmt.Errorf("expected a model with a Predict method, got %T", v)
	}
	return m, nil
}

// AsPredictFunc coerces a bound runtime object into a PredictFunc. A bound
// Model is accepted too and adapted row by row.
func AsPredictFunc(v any) (PredictFunc, error) {
	switch f := v.(type) {
	case PredictFunc:
		return f, nil
	case func(Matrix) Matrix:
		return f, nil
	case Model:
		return func(rows Matrix) Matrix {
			out := make(Matrix, len(rows))
			for i, row := range rows {
				out[i] = f.Predict(row)
			}
			return out
		}, nil
	default:
		return nil, fmt.Errorf("expected a prediction function, got %T", v)
	}
}

// AsLabels coerces a bound runtime object into string labels. Integer
// label vectors are formatted.
func AsLabels(v any) ([]string, error) {
	switch l := v.(type) {
	case []string:
		return l, nil
	case []int:
		out := make([]string, len(l))
		for i, n := range l {
			out[i] = fmt.Sprintf("%d", n)
		}
		return out, nil
	case []any:
		out := make([]string, len(l))
		for i, item := range l {
			switch s := item.(type) {
			case string:
				out[i] = s
			case float64:
				out[i] = fmt.Sprintf("%d", int(s))
			default:
				return nil, fmt.Errorf("label %d has unsupported type %T", i, item)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a label list, got %T", v)
	}
}

// ArgMax returns the index of the largest score.
func ArgMax(scores []float64) int {
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return best
}
