// Package engine orchestrates a full report run: it freezes the variable
// context, drives the section tree builder, assembles the document, and
// dispatches it to every declared writer.
package engine

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vk/xreportgo/internal/builder"
	"github.com/vk/xreportgo/internal/ctxlog"
	"github.com/vk/xreportgo/internal/report"
	"github.com/vk/xreportgo/internal/resolve"
	"github.com/vk/xreportgo/internal/schema"
	"github.com/vk/xreportgo/internal/vars"

	"github.com/vk/xreportgo/internal/registry"
)

// Options configure a run.
type Options struct {
	Builder builder.Options
	// SequentialWriters disables the default concurrent writer dispatch.
	// Writers read the same frozen document and own independent targets,
	// so concurrency is the safe default.
	SequentialWriters bool
}

// Engine executes report specs against a registry.
type Engine struct {
	reg  *registry.Registry
	bld  *builder.Builder
	opts Options
}

// New creates an Engine.
func New(reg *registry.Registry, opts Options) *Engine {
	return &Engine{
		reg:  reg,
		bld:  builder.New(reg, opts.Builder),
		opts: opts,
	}
}

// Run executes the spec against the caller-populated variable context and
// returns the run summary. The context is frozen before any component
// executes. Only a structurally invalid spec is a fatal error; section and
// writer failures are recorded in the summary instead.
func (e *Engine) Run(ctx context.Context, spec *schema.ReportSpec, vc *vars.Context) (*Summary, error) {
	if spec == nil {
		return nil, ErrNilSpec
	}
	logger := ctxlog.FromContext(ctx).With("report", spec.Name)
	runID := uuid.NewString()
	logger.Info("Starting report run.", "run_id", runID, "sections", len(spec.Contents), "writers", len(spec.Writers))

	vc.Freeze()
	nodes, sectionErrs := e.bld.Build(ctx, spec.Contents, vc)
	doc := report.Assemble(spec, nodes)
	logger.Debug("Document assembled.", "top_sections", len(doc.Sections), "section_errors", len(sectionErrs))

	writerResults := e.dispatch(ctx, spec.Writers, doc, vc)

	summary := &Summary{
		RunID:         runID,
		Name:          spec.Name,
		Document:      doc,
		SectionErrors: sectionErrs,
		WriterResults: writerResults,
	}
	summary.Outcome = classify(summary, len(spec.Writers))
	logger.Info("Report run finished.", "run_id", runID, "outcome", summary.Outcome)
	return summary, nil
}

// dispatch resolves and invokes each declared writer. Writers are
// independent: one failure never blocks the others, and results are
// reported in declaration order regardless of completion order.
func (e *Engine) dispatch(ctx context.Context, specs []*schema.WriterSpec, doc *report.Document, vc *vars.Context) []WriterResult {
	results := make([]WriterResult, len(specs))

	runOne := func(i int, ws *schema.WriterSpec) {
		handle, err := e.runWriter(ctx, ws, doc, vc)
		results[i] = WriterResult{Class: ws.Class, Handle: handle, Err: err}
		if err != nil {
			ctxlog.FromContext(ctx).Warn("Writer failed.", "class", ws.Class, "error", err)
		}
	}

	if e.opts.SequentialWriters {
		for i, ws := range specs {
			runOne(i, ws)
		}
		return results
	}

	var g errgroup.Group
	for i, ws := range specs {
		g.Go(func() error {
			runOne(i, ws)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (e *Engine) runWriter(ctx context.Context, ws *schema.WriterSpec, doc *report.Document, vc *vars.Context) (string, error) {
	attrs, err := resolve.Attrs(ws.Attr, vc)
	if err != nil {
		return "", err
	}
	w, err := e.reg.CreateWriter(ws.Class, attrs)
	if err != nil {
		return "", err
	}
	handle, err := w.Render(ctx, doc)
	if err != nil {
		return "", &WriterRenderError{Class: ws.Class, Err: err}
	}
	return handle, nil
}
