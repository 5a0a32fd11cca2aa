// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package viewfactor

import (
	"cmp"
	"fmt"
	"slices"
)

// WarningKind classifies a non-fatal diagnostic.
type WarningKind int

const (
	// PrecisionWarning marks a value computed with less than the requested
	// accuracy.
	PrecisionWarning WarningKind = iota
	// EnclosureInconsistency marks a row whose sum was far from 1 before
	// enclosure normalization.
	EnclosureInconsistency
)

func (k WarningKind) String() string {
	switch k {
	case PrecisionWarning:
		return "precision"
	case EnclosureInconsistency:
		return "enclosure inconsistency"
	}
	return "unknown"
}

// Warning is a non-fatal diagnostic attached to a Result.
type Warning struct {
	Kind WarningKind
	// Row and Col are the surface IDs of the affected pair. Col is 0 for
	// warnings about a whole row.
	Row, Col int
	Message  string
}

func (w Warning) String() string {
	if w.Col == 0 {
		return fmt.Sprintf("%v: surface %d: %s", w.Kind, w.Row, w.Message)
	}
	return fmt.Sprintf("%v: surfaces %d-%d: %s", w.Kind, w.Row, w.Col, w.Message)
}

func sortWarnings(ws []Warning) {
	slices.SortStableFunc(ws, func(a, b Warning) int {
		return cmp.Or(
			cmp.Compare(a.Row, b.Row),
			cmp.Compare(a.Col, b.Col),
			cmp.Compare(a.Kind, b.Kind),
		)
	})
}

// Stats summarizes a Compute run.
type Stats struct {
	// Pairs is the number of ordered surface pairs computed.
	Pairs int
	// NoView counts pairs facing away from each other.
	NoView int
	// Unobstructed counts pairs without any candidate obstruction.
	Unobstructed int
	// Obstructed counts pairs with candidate obstructions.
	Obstructed int
	// Candidates is the mean number of candidate obstructions per obstructed
	// pair.
	Candidates float64
	// Nodes is the number of sub-patch pairs evaluated.
	Nodes int
	// Forced counts sub-patch pairs accepted without convergence.
	Forced int
	// LineIntegralFailures counts pairs whose contour integration did not
	// converge.
	LineIntegralFailures int
	// EnclosureVolume is the volume bounded by the radiating surfaces.
	EnclosureVolume float64
	// RowSumMaxError and RowSumRMSError describe |Σ F(i, j) − 1| over the
	// final matrix.
	RowSumMaxError float64
	RowSumRMSError float64
}
