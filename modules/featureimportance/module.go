// Package featureimportance implements the FeatureImportanceRanking
// component: a ranked sequence of (feature, importance) pairs computed from
// a trained model and its training data.
package featureimportance

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/vk/xreportgo/internal/component"
	"github.com/vk/xreportgo/internal/ctxlog"
	"github.com/vk/xreportgo/internal/mlmodel"
	"github.com/vk/xreportgo/internal/registry"
	"github.com/vk/xreportgo/internal/report"
	"github.com/vk/xreportgo/internal/resolve"
)

// Class is the component class name used in report specs.
const Class = "FeatureImportanceRanking"

// Supported ranking methods. "default" is accepted as an alias of
// permutation importance, the documented default.
const (
	MethodPermutation = "permutation"
	MethodNative      = "native"
	MethodDefault     = "default"
)

// permutationSeed fixes the column shuffles so the same spec and data
// always rank features identically.
const permutationSeed = 1

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the component factory with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterComponent(Class, New)
}

// Ranking is one configured FeatureImportanceRanking instance.
type Ranking struct {
	model    mlmodel.Model
	data     mlmodel.Matrix
	features []string
	method   string
}

// New validates the resolved attributes and builds a Ranking.
func New(attrs resolve.AttrSet) (component.Component, error) {
	obj, err := attrs.Any("trained_model")
	if err != nil {
		return nil, component.InvalidConfig(Class, err)
	}
	model, err := mlmodel.AsModel(obj)
	if err != nil {
		return nil, component.InvalidConfig(Class, fmt.Errorf("trained_model: %w", err))
	}

	obj, err = attrs.Any("train_data")
	if err != nil {
		return nil, component.InvalidConfig(Class, err)
	}
	data, err := mlmodel.AsMatrix(obj)
	if err != nil {
		return nil, component.InvalidConfig(Class, fmt.Errorf("train_data: %w", err))
	}
	if len(data) == 0 {
		return nil, component.InvalidConfig(Class, fmt.Errorf("train_data is empty"))
	}

	features, err := attrs.Strings("feature_names")
	if err != nil {
		return nil, component.InvalidConfig(Class, err)
	}
	if len(features) != len(data[0]) {
		return nil, component.InvalidConfig(Class,
			fmt.Errorf("feature_names has %d entries but train_data has %d columns", len(features), len(data[0])))
	}

	method, err := attrs.StringOr("method", MethodPermutation)
	if err != nil {
		return nil, component.InvalidConfig(Class, err)
	}
	if method == MethodDefault {
		method = MethodPermutation
	}
	if method != MethodPermutation && method != MethodNative {
		return nil, component.InvalidConfig(Class, fmt.Errorf("unsupported method %q", method))
	}

	return &Ranking{model: model, data: data, features: features, method: method}, nil
}

// Run computes the ranking artifact.
func (rk *Ranking) Run(ctx context.Context) (*report.Artifact, error) {
	logger := ctxlog.FromContext(ctx).With("component", Class)
	logger.Debug("Ranking features.", "method", rk.method, "rows", len(rk.data), "features", len(rk.features))

	var scores []float64
	var err error
	switch rk.method {
	case MethodNative:
		scores, err = rk.nativeScores()
	default:
		scores, err = rk.permutationScores(ctx)
	}
	if err != nil {
		return nil, err
	}

	if sum := floats.Sum(scores); sum > 0 {
		floats.Scale(1/sum, scores)
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	rows := make([][]string, 0, len(order))
	labels := make([]string, 0, len(order))
	values := make([]float64, 0, len(order))
	for rank, idx := range order {
		rows = append(rows, []string{
			strconv.Itoa(rank + 1),
			rk.features[idx],
			strconv.FormatFloat(scores[idx], 'f', 4, 64),
		})
		labels = append(labels, rk.features[idx])
		values = append(values, scores[idx])
	}

	art := report.NewArtifact().
		AddTable("ranking", []string{"Rank", "Feature", "Importance"}, rows).
		AddChart("importance", "Feature importance ("+rk.method+")", labels, values)
	return art, nil
}

// nativeScores reads the model's intrinsic importances.
func (rk *Ranking) nativeScores() ([]float64, error) {
	fi, ok := rk.model.(mlmodel.FeatureImporter)
	if !ok {
		return nil, fmt.Errorf("method %q requires a model exposing feature importances", MethodNative)
	}
	scores := fi.FeatureImportances()
	if len(scores) != len(rk.features) {
		return nil, fmt.Errorf("model reports %d importances for %d features", len(scores), len(rk.features))
	}
	out := make([]float64, len(scores))
	copy(out, scores)
	return out, nil
}

// permutationScores measures, per feature, the mean absolute change in the
// model's output when that feature's column is shuffled. Features the model
// leans on harder move the predictions more.
func (rk *Ranking) permutationScores(ctx context.Context) ([]float64, error) {
	rng := rand.New(rand.NewSource(permutationSeed))

	baseline := make(mlmodel.Matrix, len(rk.data))
	for i, row := range rk.data {
		baseline[i] = rk.model.Predict(row)
	}

	scores := make([]float64, len(rk.features))
	scratch := make([]float64, len(rk.features))
	for j := range rk.features {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		column := make([]float64, len(rk.data))
		for i, row := range rk.data {
			column[i] = row[j]
		}
		rng.Shuffle(len(column), func(a, b int) { column[a], column[b] = column[b], column[a] })

		var total float64
		var n int
		for i, row := range rk.data {
			perturbed := scratch[:len(row)]
			copy(perturbed, row)
			perturbed[j] = column[i]
			pred := rk.model.Predict(perturbed)
			for k, p := range pred {
				diff := p - baseline[i][k]
				if diff < 0 {
					diff = -diff
				}
				total += diff
				n++
			}
		}
		if n > 0 {
			scores[j] = total / float64(n)
		}
	}
	return scores, nil
}
