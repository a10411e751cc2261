package synth

import (
	"fmt"

	"github.com/MeKo-Tech/reliefmap/internal/grid"
)

// Param is a terrain parameter that is either a single scalar applied
// everywhere or a full grid of per-cell values. It is resolved into a
// grid.Field once, at setup, so the refinement passes never branch on the
// parameter kind.
type Param struct {
	field    grid.Field
	scalar   float64
	hasField bool
}

// Scalar returns a parameter holding a single value for the whole grid.
func Scalar(v float64) Param {
	return Param{scalar: v}
}

// FieldParam returns a parameter with per-cell values. The field must match
// the output grid shape exactly; this is checked when the parameter is
// resolved.
func FieldParam(f grid.Field) Param {
	return Param{field: f, hasField: true}
}

// check validates the parameter against the output grid shape without
// allocating anything.
func (p Param) check(rows, cols int) error {
	if p.hasField && (p.field.Rows != rows || p.field.Cols != cols) {
		return fmt.Errorf("%w: got %dx%d, want %dx%d",
			ErrShapeMismatch, p.field.Rows, p.field.Cols, rows, cols)
	}
	return nil
}

// resolve broadcasts the parameter to a full grid of the given shape.
// check must have passed first.
func (p Param) resolve(rows, cols int) grid.Field {
	if p.hasField {
		return p.field
	}
	return grid.Full(rows, cols, p.scalar)
}
