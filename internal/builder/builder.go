// Package builder walks a spec's section tree, executing at most one
// component per section and collecting the results into report nodes.
//
// Failure isolation is the load-bearing invariant here: a component that
// cannot be resolved, created, or run degrades into an error artifact on
// its own node, and the walk continues into siblings and children. The
// output tree always has the same shape as the input spec.
package builder

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vk/xreportgo/internal/component"
	"github.com/vk/xreportgo/internal/ctxlog"
	"github.com/vk/xreportgo/internal/registry"
	"github.com/vk/xreportgo/internal/report"
	"github.com/vk/xreportgo/internal/resolve"
	"github.com/vk/xreportgo/internal/schema"
	"github.com/vk/xreportgo/internal/vars"
)

// DefaultMaxDepth bounds section nesting so a pathological spec cannot
// grow the call stack without limit.
const DefaultMaxDepth = 64

// SectionError records a degraded component against its slash-separated
// section path.
type SectionError struct {
	Path string
	Err  error
}

// Options tune the walk. The zero value gives sequential execution with no
// per-component timeout and the default depth bound.
type Options struct {
	// Parallel executes sibling components in worker tasks. Components
	// only read the frozen variable context and write their own artifact,
	// so this is safe without locks; results are reassembled in
	// declaration order.
	Parallel bool
	// Workers caps concurrent component runs when Parallel is set.
	Workers int
	// ComponentTimeout bounds each component run; expiry is treated like
	// any other computation failure. Zero disables the bound.
	ComponentTimeout time.Duration
	// MaxDepth overrides DefaultMaxDepth when positive.
	MaxDepth int
}

// Builder executes section trees against a component registry.
type Builder struct {
	reg  *registry.Registry
	opts Options
}

// New creates a Builder.
func New(reg *registry.Registry, opts Options) *Builder {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Builder{reg: reg, opts: opts}
}

// Build walks the top-level sections in declaration order and returns the
// mirrored node tree plus every section-scoped error encountered. The
// returned error slice never aborts the build.
func (b *Builder) Build(ctx context.Context, sections []*schema.Section, vc *vars.Context) ([]*report.Node, []SectionError) {
	return b.buildSiblings(ctx, sections, vc, "", 1)
}

func (b *Builder) buildSiblings(ctx context.Context, sections []*schema.Section, vc *vars.Context, parentPath string, depth int) ([]*report.Node, []SectionError) {
	if len(sections) == 0 {
		return nil, nil
	}
	nodes := make([]*report.Node, len(sections))
	errLists := make([][]SectionError, len(sections))

	if b.opts.Parallel {
		var g errgroup.Group
		g.SetLimit(b.opts.Workers)
		for i, sec := range sections {
			g.Go(func() error {
				nodes[i], errLists[i] = b.buildSection(ctx, sec, vc, parentPath, depth)
				return nil
			})
		}
		// Workers never return errors; failures are captured per node.
		_ = g.Wait()
	} else {
		for i, sec := range sections {
			nodes[i], errLists[i] = b.buildSection(ctx, sec, vc, parentPath, depth)
		}
	}

	var errs []SectionError
	for _, list := range errLists {
		errs = append(errs, list...)
	}
	return nodes, errs
}

func (b *Builder) buildSection(ctx context.Context, sec *schema.Section, vc *vars.Context, parentPath string, depth int) (*report.Node, []SectionError) {
	path := sec.Title
	if parentPath != "" {
		path = parentPath + "/" + sec.Title
	}
	logger := ctxlog.FromContext(ctx).With("section", path)

	node := &report.Node{Title: sec.Title, Desc: sec.Desc}
	var errs []SectionError

	if depth > b.opts.MaxDepth {
		err := fmt.Errorf("section nesting exceeds maximum depth %d", b.opts.MaxDepth)
		logger.Error("Section skipped.", "error", err)
		node.Artifact = report.ErrorArtifact(err)
		return node, []SectionError{{Path: path, Err: err}}
	}

	if sec.Component != nil {
		artifact, err := b.runComponent(ctx, sec.Component, vc)
		if err != nil {
			logger.Warn("Component degraded.", "class", sec.Component.Class, "error", err)
			artifact = report.ErrorArtifact(err)
			errs = append(errs, SectionError{Path: path, Err: err})
		} else {
			logger.Debug("Component finished.", "class", sec.Component.Class, "outputs", len(artifact.Outputs))
		}
		node.Artifact = artifact
	}

	children, childErrs := b.buildSiblings(ctx, sec.Sections, vc, path, depth+1)
	node.Children = children
	errs = append(errs, childErrs...)
	return node, errs
}

// runComponent resolves, creates, and executes one component. Every failure
// mode comes back as an error for the caller to fold into a degraded
// artifact.
func (b *Builder) runComponent(ctx context.Context, spec *schema.ComponentSpec, vc *vars.Context) (*report.Artifact, error) {
	attrs, err := resolve.Attrs(spec.Attr, vc)
	if err != nil {
		return nil, err
	}
	comp, err := b.reg.CreateComponent(spec.Class, attrs)
	if err != nil {
		return nil, err
	}
	return b.execute(ctx, spec.Class, comp)
}

// execute runs the component, applying the optional timeout and containing
// panics from third-party explanation code.
func (b *Builder) execute(ctx context.Context, class string, comp component.Component) (*report.Artifact, error) {
	runCtx := ctx
	if b.opts.ComponentTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, b.opts.ComponentTimeout)
		defer cancel()
	}

	type result struct {
		artifact *report.Artifact
		err      error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: &component.ComputationError{Class: class, Err: fmt.Errorf("panic: %v", r)}}
			}
		}()
		artifact, err := comp.Run(runCtx)
		if err != nil {
			if _, ok := err.(*component.ComputationError); !ok {
				err = &component.ComputationError{Class: class, Err: err}
			}
		}
		done <- result{artifact: artifact, err: err}
	}()

	select {
	case res := <-done:
		return res.artifact, res.err
	case <-runCtx.Done():
		return nil, &component.ComputationError{Class: class, Err: runCtx.Err()}
	}
}
