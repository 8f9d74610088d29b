package ingest

import (
	"errors"
	"fmt"

	"github.com/yungbote/paissadb/internal/deval"
	"github.com/yungbote/paissadb/internal/types"
)

var (
	// ErrUnknownPlot means the observation's identity is not in the
	// reference catalog. Rejected, never retried.
	ErrUnknownPlot = errors.New("plot not in reference catalog")

	// ErrStaleObservation means the observation was superseded by the
	// ordering rule. Callers skip it silently; it is not a data problem.
	ErrStaleObservation = errors.New("observation superseded by newer data")

	// ErrPriceMismatch surfaces the devaluation model's rejection of an
	// off-schedule price. The observation is dropped without mutating
	// any state.
	ErrPriceMismatch = deval.ErrPriceMismatch
)

// IngestError carries the identity of the plot whose observation failed.
type IngestError struct {
	Identity types.PlotIdentity
	Err      error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.Identity, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }
