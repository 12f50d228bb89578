package app

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/vk/xreportgo/internal/builder"
	"github.com/vk/xreportgo/internal/ctxlog"
	"github.com/vk/xreportgo/internal/demo"
	"github.com/vk/xreportgo/internal/engine"
	"github.com/vk/xreportgo/internal/loader"
	"github.com/vk/xreportgo/internal/schema"
	"github.com/vk/xreportgo/internal/vars"
)

// Run loads the configured spec, binds the demo runtime objects, executes
// the report, and prints the run summary. Library callers that bring their
// own models should use RunSpec instead.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	spec, err := loader.FromFile(ctx, a.config.SpecPath)
	if err != nil {
		return fmt.Errorf("failed to load report spec: %w", err)
	}

	vc := vars.NewContext()
	if err := vc.Bind("out_dir", a.config.OutDir); err != nil {
		return err
	}
	if err := demo.Bind(vc); err != nil {
		return fmt.Errorf("failed to bind demo variables: %w", err)
	}
	a.logger.Debug("Variable context populated.", "names", vc.Names())

	summary, err := a.RunSpec(ctx, spec, vc)
	if err != nil {
		return err
	}
	a.printSummary(summary)

	if summary.Outcome == engine.OutcomeFailure {
		return fmt.Errorf("report run %s failed: no writer produced output", summary.RunID)
	}
	return nil
}

// RunSpec executes an already-loaded spec against a caller-populated
// variable context.
func (a *App) RunSpec(ctx context.Context, spec *schema.ReportSpec, vc *vars.Context) (*engine.Summary, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	eng := engine.New(a.registry, engine.Options{
		Builder: builder.Options{
			Parallel:         a.config.Parallel,
			Workers:          a.config.Workers,
			ComponentTimeout: a.config.ComponentTimeout,
		},
	})
	return eng.Run(ctx, spec, vc)
}

// printSummary writes the per-run completion report to the app's output.
func (a *App) printSummary(summary *engine.Summary) {
	fmt.Fprintf(a.outW, "Report %q finished: %s (run %s)\n", summary.Name, summary.Outcome, summary.RunID)

	if len(summary.SectionErrors) > 0 {
		tw := table.NewWriter()
		tw.SetOutputMirror(a.outW)
		tw.SetStyle(table.StyleLight)
		tw.AppendHeader(table.Row{"Section", "Error"})
		for _, se := range summary.SectionErrors {
			tw.AppendRow(table.Row{se.Path, se.Err.Error()})
		}
		tw.Render()
	}

	if len(summary.WriterResults) > 0 {
		tw := table.NewWriter()
		tw.SetOutputMirror(a.outW)
		tw.SetStyle(table.StyleLight)
		tw.AppendHeader(table.Row{"Writer", "Output", "Status"})
		for _, wr := range summary.WriterResults {
			status := "ok"
			if wr.Err != nil {
				status = wr.Err.Error()
			}
			tw.AppendRow(table.Row{wr.Class, wr.Handle, status})
		}
		tw.Render()
	}
}
