package engine

import (
	"errors"
	"fmt"

	"github.com/vk/xreportgo/internal/builder"
	"github.com/vk/xreportgo/internal/report"
)

// ErrNilSpec is the only fatal run error: there is no document to degrade
// into.
var ErrNilSpec = errors.New("report spec is nil")

// WriterRenderError reports an isolated writer failure.
type WriterRenderError struct {
	Class string
	Err   error
}

func (e *WriterRenderError) Error() string {
	return fmt.Sprintf("writer %s failed to render: %v", e.Class, e.Err)
}

func (e *WriterRenderError) Unwrap() error { return e.Err }

// Outcome classifies a finished run.
type Outcome string

const (
	// OutcomeSuccess means every component and writer completed.
	OutcomeSuccess Outcome = "success"
	// OutcomePartial means the report was produced but some sections or
	// writers degraded.
	OutcomePartial Outcome = "partial-failure"
	// OutcomeFailure means no declared writer produced output.
	OutcomeFailure Outcome = "total-failure"
)

// WriterResult records one writer dispatch in declaration order.
type WriterResult struct {
	Class  string
	Handle string
	Err    error
}

// Summary is the per-run completion report returned to the caller.
type Summary struct {
	RunID         string
	Name          string
	Outcome       Outcome
	Document      *report.Document
	SectionErrors []builder.SectionError
	WriterResults []WriterResult
}

// classify derives the outcome from the recorded errors.
func classify(s *Summary, declaredWriters int) Outcome {
	writerFailures := 0
	for _, wr := range s.WriterResults {
		if wr.Err != nil {
			writerFailures++
		}
	}
	if declaredWriters > 0 && writerFailures == declaredWriters {
		return OutcomeFailure
	}
	if writerFailures > 0 || len(s.SectionErrors) > 0 {
		return OutcomePartial
	}
	return OutcomeSuccess
}
