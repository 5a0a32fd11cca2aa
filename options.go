// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package viewfactor

import (
	"fmt"
	"io"
	"log"
	"math"
	"runtime"
	"time"
)

const (
	defaultTolerance         = 1e-4
	defaultMinDepth          = 0
	defaultMaxDepth          = 8
	defaultLineIntegralDepth = 12
	defaultEnclosureSanity   = 0.1

	maxDepthLimit             = 24
	maxLineIntegralDepthLimit = 40
)

// SolverOptions configures Compute.
type SolverOptions struct {
	// Tolerance is the convergence tolerance of the adaptive subdivision,
	// relative to the smaller area of a surface pair.
	Tolerance float64
	// MinDepth is the subdivision depth before which convergence is not
	// checked.
	MinDepth int
	// MaxDepth is the subdivision depth at which the best estimate is
	// accepted.
	MaxDepth int
	// LineIntegralDepth bounds the adaptive bisections of the contour
	// integration.
	LineIntegralDepth int
	// Enclosure scales every row of the matrix to sum to 1.
	Enclosure bool
	// Emittances also computes gray-diffuse exchange factors.
	Emittances bool
	// FirstRow, LastRow, FirstCol and LastCol select the computed cells by
	// 1-based index into the radiating surfaces in catalog order, before
	// subsurfaces and combined surfaces are merged. Zero selects all.
	FirstRow, LastRow int
	FirstCol, LastCol int
	// ReversedProjection inverts the automatic choice of the surface that
	// obstruction shadows are projected onto.
	ReversedProjection bool
	// Workers is the number of pairs computed concurrently.
	Workers int
	// PairTimeout bounds the subdivision time of one surface pair. Zero means
	// no limit.
	PairTimeout time.Duration
	// EnclosureSanity is the row-sum deviation beyond which an enclosure
	// inconsistency is reported.
	EnclosureSanity float64
	// SeparateSubsurfaces keeps subsurfaces as separate rows and reduces their
	// base surfaces to the remaining area.
	SeparateSubsurfaces bool
	// Logger receives warnings and a summary line.
	Logger *log.Logger
}

// Option sets a field of SolverOptions.
type Option func(*SolverOptions) error

// NewSolverOptions returns SolverOptions with defaults overridden by opts and
// checks the combination.
func NewSolverOptions(opts ...Option) (*SolverOptions, error) {
	o := &SolverOptions{
		Tolerance:         defaultTolerance,
		MinDepth:          defaultMinDepth,
		MaxDepth:          defaultMaxDepth,
		LineIntegralDepth: defaultLineIntegralDepth,
		Workers:           runtime.NumCPU(),
		EnclosureSanity:   defaultEnclosureSanity,
		Logger:            log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.MinDepth > o.MaxDepth {
		return nil, fmt.Errorf("min depth %d above max depth %d: %w", o.MinDepth, o.MaxDepth, ErrInvalidConfiguration)
	}
	if (o.Enclosure || o.Emittances) && o.partial() {
		return nil, fmt.Errorf("enclosure and emittances need the full matrix: %w", ErrInvalidConfiguration)
	}
	return o, nil
}

func (o *SolverOptions) partial() bool {
	return o.FirstRow != 0 || o.FirstCol != 0
}

// WithTolerance sets the subdivision convergence tolerance. It must be
// positive.
func WithTolerance(eps float64) Option {
	return func(o *SolverOptions) error {
		if eps <= 0 || math.IsNaN(eps) || math.IsInf(eps, 0) {
			return fmt.Errorf("tolerance %v: %w", eps, ErrInvalidConfiguration)
		}
		o.Tolerance = eps
		return nil
	}
}

// WithMinDepth sets the minimum subdivision depth.
func WithMinDepth(n int) Option {
	return func(o *SolverOptions) error {
		if n < 0 {
			return fmt.Errorf("min depth %d: %w", n, ErrInvalidConfiguration)
		}
		o.MinDepth = n
		return nil
	}
}

// WithMaxDepth sets the maximum subdivision depth, at most 24.
func WithMaxDepth(n int) Option {
	return func(o *SolverOptions) error {
		if n < 0 || n > maxDepthLimit {
			return fmt.Errorf("max depth %d: %w", n, ErrInvalidConfiguration)
		}
		o.MaxDepth = n
		return nil
	}
}

// WithLineIntegralDepth sets the bisection limit of the contour integration,
// between 1 and 40.
func WithLineIntegralDepth(n int) Option {
	return func(o *SolverOptions) error {
		if n < 1 || n > maxLineIntegralDepthLimit {
			return fmt.Errorf("line integral depth %d: %w", n, ErrInvalidConfiguration)
		}
		o.LineIntegralDepth = n
		return nil
	}
}

// WithEnclosure enables row-sum normalization for closed geometry.
func WithEnclosure(enabled bool) Option {
	return func(o *SolverOptions) error {
		o.Enclosure = enabled
		return nil
	}
}

// WithEmittances enables the computation of exchange factors.
func WithEmittances(enabled bool) Option {
	return func(o *SolverOptions) error {
		o.Emittances = enabled
		return nil
	}
}

// WithRows restricts the computation to rows first through last, 1-based.
// Rows index the radiating surfaces in catalog order before merging, which
// differs from the index of Result when subsurfaces or combined surfaces are
// merged.
func WithRows(first, last int) Option {
	return func(o *SolverOptions) error {
		if first < 1 || last < first {
			return fmt.Errorf("rows [%d, %d]: %w", first, last, ErrInvalidConfiguration)
		}
		o.FirstRow, o.LastRow = first, last
		return nil
	}
}

// WithColumns restricts the computation to columns first through last,
// 1-based, indexed like WithRows.
func WithColumns(first, last int) Option {
	return func(o *SolverOptions) error {
		if first < 1 || last < first {
			return fmt.Errorf("columns [%d, %d]: %w", first, last, ErrInvalidConfiguration)
		}
		o.FirstCol, o.LastCol = first, last
		return nil
	}
}

// WithReversedProjection swaps the roles of the two surfaces of each
// obstructed pair. By default shadows are projected onto the surface nearer to
// the obstructions and viewpoints are placed on the other one.
func WithReversedProjection(enabled bool) Option {
	return func(o *SolverOptions) error {
		o.ReversedProjection = enabled
		return nil
	}
}

// WithWorkers sets the number of concurrent workers. Zero selects the number
// of CPUs.
func WithWorkers(n int) Option {
	return func(o *SolverOptions) error {
		if n < 0 {
			return fmt.Errorf("workers %d: %w", n, ErrInvalidConfiguration)
		}
		if n == 0 {
			n = runtime.NumCPU()
		}
		o.Workers = n
		return nil
	}
}

// WithPairTimeout bounds the subdivision time per surface pair.
func WithPairTimeout(d time.Duration) Option {
	return func(o *SolverOptions) error {
		if d < 0 {
			return fmt.Errorf("pair timeout %v: %w", d, ErrInvalidConfiguration)
		}
		o.PairTimeout = d
		return nil
	}
}

// WithEnclosureSanity sets the row-sum deviation reported as an enclosure
// inconsistency.
func WithEnclosureSanity(r float64) Option {
	return func(o *SolverOptions) error {
		if r <= 0 || math.IsNaN(r) {
			return fmt.Errorf("enclosure sanity %v: %w", r, ErrInvalidConfiguration)
		}
		o.EnclosureSanity = r
		return nil
	}
}

// WithSeparateSubsurfaces keeps subsurfaces in the result instead of summing
// them into their base surfaces.
func WithSeparateSubsurfaces(enabled bool) Option {
	return func(o *SolverOptions) error {
		o.SeparateSubsurfaces = enabled
		return nil
	}
}

// WithLogger sets the logger for warnings and the run summary.
func WithLogger(l *log.Logger) Option {
	return func(o *SolverOptions) error {
		if l == nil {
			return fmt.Errorf("nil logger: %w", ErrInvalidConfiguration)
		}
		o.Logger = l
		return nil
	}
}
