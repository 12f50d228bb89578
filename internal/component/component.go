// Package component defines the execution contracts shared by all
// interpretation components and writers, together with the error types
// their factories and runs produce.
package component

import (
	"context"
	"fmt"

	"github.com/vk/xreportgo/internal/report"
	"github.com/vk/xreportgo/internal/resolve"
)

// Component is the single execution contract every interpretation
// component implements. Concrete classes differ in required attributes and
// produced artifacts; the engine treats each as a black box.
type Component interface {
	Run(ctx context.Context) (*report.Artifact, error)
}

// Factory validates a resolved attribute set and produces an executable
// component instance. Validation failures surface as *InvalidConfigError
// before any computation begins.
type Factory func(attrs resolve.AttrSet) (Component, error)

// Writer renders an assembled document to a concrete output and returns a
// handle describing what was written (typically a file path).
type Writer interface {
	Render(ctx context.Context, doc *report.Document) (string, error)
}

// WriterFactory is the writer counterpart of Factory.
type WriterFactory func(attrs resolve.AttrSet) (Writer, error)

// InvalidConfigError reports a component or writer whose attributes failed
// validation at creation time.
type InvalidConfigError struct {
	Class  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %s", e.Class, e.Reason)
}

// InvalidConfig wraps an attribute validation failure for a class.
func InvalidConfig(class string, err error) *InvalidConfigError {
	return &InvalidConfigError{Class: class, Reason: err.Error()}
}

// ComputationError reports a failure inside a component's run. The section
// tree builder converts it into a degraded artifact; it never aborts the
// report.
type ComputationError struct {
	Class string
	Err   error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s computation failed: %v", e.Class, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }
