// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package viewfactor

import (
	"errors"

	"github.com/2dChan/viewfactor/catalog"
)

var (
	// ErrInvalidConfiguration is returned for out-of-range or conflicting
	// solver options.
	ErrInvalidConfiguration = errors.New("viewfactor: invalid configuration")

	// ErrDegenerateGeometry is returned by catalog.New for invalid surfaces.
	ErrDegenerateGeometry = catalog.ErrDegenerateGeometry
	// ErrUnknownSurface is returned for surface IDs not in the catalog.
	ErrUnknownSurface = catalog.ErrUnknownSurface
)
