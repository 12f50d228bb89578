// Package interpreter implements the ModelInterpreter component. It runs a
// model-agnostic local explainer over the training set to produce per-class
// feature attributions, and a separate error-analysis pass that aggregates
// explanations per confusion cell (ground truth, predicted) over the
// validation set. The two passes are configured independently and fail
// independently.
package interpreter

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/vk/xreportgo/internal/component"
	"github.com/vk/xreportgo/internal/ctxlog"
	"github.com/vk/xreportgo/internal/mlmodel"
	"github.com/vk/xreportgo/internal/registry"
	"github.com/vk/xreportgo/internal/report"
	"github.com/vk/xreportgo/internal/resolve"
)

// Class is the component class name used in report specs.
const Class = "ModelInterpreter"

// Supported attribute values.
const (
	DomainTabular      = "tabular"
	ModeClassification = "classification"
	ModeRegression     = "regression"
	MethodLime         = "lime"
	MethodDefault      = "default"
)

// Confidence thresholds per pass: interpretation only aggregates
// explanations the model is confident about; error analysis keeps
// everything.
const (
	interpretThreshold     = 0.8
	errorAnalysisThreshold = 0
)

const surrogateSeed = 7

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the component factory with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterComponent(Class, New)
}

// passConfig holds the aggregation settings of one sub-run.
type passConfig struct {
	statsType string
	kValue    int
	topValue  int
}

// Interpreter is one configured ModelInterpreter instance.
type Interpreter struct {
	mode     string
	train    mlmodel.Matrix
	labels   []string
	features []string
	predict  mlmodel.PredictFunc

	interpret passConfig
	errorCfg  passConfig
	validX    mlmodel.Matrix
	validY    []string
}

// New validates the resolved attributes and builds an Interpreter.
func New(attrs resolve.AttrSet) (component.Component, error) {
	domain, err := attrs.String("domain")
	if err != nil {
		return nil, component.InvalidConfig(Class, err)
	}
	if domain != DomainTabular {
		return nil, component.InvalidConfig(Class, fmt.Errorf("unsupported domain %q", domain))
	}

	method, err := attrs.String("method")
	if err != nil {
		return nil, component.InvalidConfig(Class, err)
	}
	if method != MethodLime && method != MethodDefault {
		return nil, component.InvalidConfig(Class, fmt.Errorf("unsupported method %q", method))
	}

	mode, err := attrs.String("mode")
	if err != nil {
		return nil, component.InvalidConfig(Class, err)
	}
	if mode != ModeClassification && mode != ModeRegression {
		return nil, component.InvalidConfig(Class, fmt.Errorf("mode must be %q or %q", ModeClassification, ModeRegression))
	}

	obj, err := attrs.Any("train_data")
	if err != nil {
		return nil, component.InvalidConfig(Class, err)
	}
	train, err := mlmodel.AsMatrix(obj)
	if err != nil {
		return nil, component.InvalidConfig(Class, fmt.Errorf("train_data: %w", err))
	}
	if len(train) == 0 {
		return nil, component.InvalidConfig(Class, fmt.Errorf("train_data is empty"))
	}

	obj, err = attrs.Any("labels")
	if err != nil {
		return nil, component.InvalidConfig(Class, err)
	}
	labels, err := mlmodel.AsLabels(obj)
	if err != nil {
		return nil, component.InvalidConfig(Class, fmt.Errorf("labels: %w", err))
	}

	obj, err = attrs.Any("predict_func")
	if err != nil {
		return nil, component.InvalidConfig(Class, err)
	}
	predict, err := mlmodel.AsPredictFunc(obj)
	if err != nil {
		return nil, component.InvalidConfig(Class, fmt.Errorf("predict_func: %w", err))
	}

	it := &Interpreter{
		mode:    mode,
		train:   train,
		labels:  labels,
		predict: predict,
	}

	if attrs.Has("feature_names") {
		it.features, err = attrs.Strings("feature_names")
		if err != nil {
			return nil, component.InvalidConfig(Class, err)
		}
	}

	it.interpret, err = passFromAttrs(attrs, StatsTopK)
	if err != nil {
		return nil, component.InvalidConfig(Class, err)
	}

	// Error analysis defaults to average_score aggregation and runs only
	// when a validation set is bound.
	errRaw, err := attrs.Map("error_analysis")
	if err != nil {
		return nil, component.InvalidConfig(Class, err)
	}
	it.errorCfg, err = passFromMap(errRaw, it.interpret, StatsAverageScore)
	if err != nil {
		return nil, component.InvalidConfig(Class, err)
	}

	if attrs.Has("valid_x") != attrs.Has("valid_y") {
		return nil, component.InvalidConfig(Class, fmt.Errorf("valid_x and valid_y must be provided together"))
	}
	if attrs.Has("valid_x") {
		obj, _ := attrs.Any("valid_x")
		it.validX, err = mlmodel.AsMatrix(obj)
		if err != nil {
			return nil, component.InvalidConfig(Class, fmt.Errorf("valid_x: %w", err))
		}
		obj, _ = attrs.Any("valid_y")
		it.validY, err = mlmodel.AsLabels(obj)
		if err != nil {
			return nil, component.InvalidConfig(Class, fmt.Errorf("valid_y: %w", err))
		}
		if len(it.validX) != len(it.validY) {
			return nil, component.InvalidConfig(Class,
				fmt.Errorf("valid_x has %d rows but valid_y has %d labels", len(it.validX), len(it.validY)))
		}
	}

	return it, nil
}

func passFromAttrs(attrs resolve.AttrSet, defaultStats string) (passConfig, error) {
	cfg := passConfig{}
	var err error
	if cfg.statsType, err = attrs.StringOr("stats_type", defaultStats); err != nil {
		return cfg, err
	}
	if err = validStatsType(cfg.statsType); err != nil {
		return cfg, err
	}
	if cfg.kValue, err = attrs.IntOr("k_value", 5); err != nil {
		return cfg, err
	}
	if cfg.topValue, err = attrs.IntOr("top_value", 10); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// passFromMap reads the nested error_analysis mapping, inheriting k/top
// from the interpretation pass where unset.
func passFromMap(raw map[string]any, base passConfig, defaultStats string) (passConfig, error) {
	nested := resolve.AttrSet(raw)
	cfg := passConfig{}
	var err error
	if cfg.statsType, err = nested.StringOr("stats_type", defaultStats); err != nil {
		return cfg, err
	}
	if err = validStatsType(cfg.statsType); err != nil {
		return cfg, err
	}
	if cfg.kValue, err = nested.IntOr("k_value", base.kValue); err != nil {
		return cfg, err
	}
	if cfg.topValue, err = nested.IntOr("top_value", base.topValue); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Run executes both sub-runs. A failing sub-run is recorded inside the
// artifact; the component as a whole fails only when neither pass produced
// anything.
func (it *Interpreter) Run(ctx context.Context) (*report.Artifact, error) {
	logger := ctxlog.FromContext(ctx).With("component", Class)
	art := report.NewArtifact()

	surr, err := newSurrogate(it.predict, it.train, surrogateSeed)
	if err != nil {
		return nil, err
	}

	interpretErr := it.runInterpretation(ctx, surr, art)
	if interpretErr != nil {
		logger.Warn("Interpretation pass failed.", "error", interpretErr)
		art.AddText("interpretation error", interpretErr.Error())
	}

	var analysisErr error
	if len(it.validX) > 0 {
		analysisErr = it.runErrorAnalysis(ctx, surr, art)
		if analysisErr != nil {
			logger.Warn("Error-analysis pass failed.", "error", analysisErr)
			art.AddText("error analysis error", analysisErr.Error())
		}
	}

	if interpretErr != nil && (len(it.validX) == 0 || analysisErr != nil) {
		return nil, fmt.Errorf("all interpretation passes failed: %w", interpretErr)
	}
	return art, nil
}

// runInterpretation aggregates per-class attributions over the training
// samples.
func (it *Interpreter) runInterpretation(ctx context.Context, surr *surrogate, art *report.Artifact) error {
	agg := newAggregator(interpretThreshold)
	numSamples := len(it.train) / 10
	if numSamples < 100 {
		numSamples = 100
	}

	for _, sample := range it.train {
		if err := ctx.Err(); err != nil {
			return err
		}
		exp, err := surr.explain(sample, 1, numSamples, it.interpret.kValue)
		if err != nil {
			return err
		}
		agg.feed(exp)
	}
	if agg.empty() {
		return fmt.Errorf("no explanation cleared the confidence threshold %.2f", interpretThreshold)
	}

	stats, err := agg.stats(it.interpret.statsType, it.interpret.topValue)
	if err != nil {
		return err
	}
	for _, class := range sortedClasses(stats) {
		name := fmt.Sprintf("interpretation: %s", it.className(class))
		art.AddTable(name, it.statColumns(it.interpret.statsType), it.statRows(stats[class]))
	}
	return nil
}

// runErrorAnalysis explains mispredicted validation samples and aggregates
// them per (ground truth, predicted) confusion cell.
func (it *Interpreter) runErrorAnalysis(ctx context.Context, surr *surrogate, art *report.Artifact) error {
	type cell struct{ gt, pred int }
	cells := make(map[cell]*aggregator)

	for i, sample := range it.validX {
		if err := ctx.Err(); err != nil {
			return err
		}
		exp, err := surr.explain(sample, len(it.labels), 100, it.errorCfg.kValue)
		if err != nil {
			return err
		}

		pred := predictedClass(exp)
		gt, err := it.classIndex(it.validY[i])
		if err != nil {
			return err
		}
		if pred == gt {
			continue
		}
		key := cell{gt: gt, pred: pred}
		if _, ok := cells[key]; !ok {
			cells[key] = newAggregator(errorAnalysisThreshold)
		}
		cells[key].feed(exp)
	}

	keys := make([]cell, 0, len(cells))
	for key := range cells {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].gt != keys[b].gt {
			return keys[a].gt < keys[b].gt
		}
		return keys[a].pred < keys[b].pred
	})

	for _, key := range keys {
		stats, err := cells[key].stats(it.errorCfg.statsType, it.errorCfg.topValue)
		if err != nil {
			return err
		}
		// Only the predicted class's explanation describes why the model
		// was drawn away from the truth.
		name := fmt.Sprintf("errors: %s predicted as %s", it.className(key.gt), it.className(key.pred))
		art.AddTable(name, it.statColumns(it.errorCfg.statsType), it.statRows(stats[key.pred]))
	}
	return nil
}

// predictedClass reads the highest-confidence class out of an explanation.
func predictedClass(exp Explanation) int {
	best, bestConf := 0, -1.0
	for class, ce := range exp {
		if ce.Confidence > bestConf {
			best, bestConf = class, ce.Confidence
		}
	}
	return best
}

func (it *Interpreter) className(idx int) string {
	if it.mode == ModeRegression {
		return "prediction"
	}
	if idx >= 0 && idx < len(it.labels) {
		return it.labels[idx]
	}
	return strconv.Itoa(idx)
}

func (it *Interpreter) classIndex(label string) (int, error) {
	for i, l := range it.labels {
		if l == label {
			return i, nil
		}
	}
	if idx, err := strconv.Atoi(label); err == nil {
		return idx, nil
	}
	return 0, fmt.Errorf("validation label %q is not in the labels list", label)
}

func (it *Interpreter) featureName(idx int) string {
	if idx >= 0 && idx < len(it.features) {
		return it.features[idx]
	}
	return fmt.Sprintf("feature_%d", idx)
}

func (it *Interpreter) statColumns(statsType string) []string {
	switch statsType {
	case StatsAverageScore:
		return []string{"Feature", "Average score"}
	case StatsAverageRanking:
		return []string{"Feature", "Average rank"}
	default:
		return []string{"Feature", "Top-k frequency"}
	}
}

func (it *Interpreter) statRows(stats []FeatureStat) [][]string {
	rows := make([][]string, 0, len(stats))
	for _, fs := range stats {
		rows = append(rows, []string{it.featureName(fs.Index), strconv.FormatFloat(fs.Value, 'f', 4, 64)})
	}
	return rows
}

func sortedClasses(stats map[int][]FeatureStat) []int {
	classes := make([]int, 0, len(stats))
	for class := range stats {
		classes = append(classes, class)
	}
	sort.Ints(classes)
	return classes
}
