// Package grid provides dense 2D raster types shared by the synthesis and
// elevation extraction code.
package grid

import "fmt"

// Field is a dense row-major grid of float64 values.
// Row 0 is the southernmost row when the grid carries geographic data.
type Field struct {
	Rows int
	Cols int
	Data []float64 // row-major, len == Rows*Cols
}

// NewField allocates a zero-filled field of the given shape.
func NewField(rows, cols int) Field {
	return Field{
		Rows: rows,
		Cols: cols,
		Data: make([]float64, rows*cols),
	}
}

// Full allocates a field of the given shape with every cell set to v.
func Full(rows, cols int, v float64) Field {
	f := NewField(rows, cols)
	for i := range f.Data {
		f.Data[i] = v
	}
	return f
}

// At returns the value at row r, column c.
func (f Field) At(r, c int) float64 {
	return f.Data[r*f.Cols+c]
}

// Set stores v at row r, column c.
func (f Field) Set(r, c int, v float64) {
	f.Data[r*f.Cols+c] = v
}

// Shape returns (rows, cols).
func (f Field) Shape() (int, int) {
	return f.Rows, f.Cols
}

// SameShape reports whether f and other have identical dimensions.
func (f Field) SameShape(other Field) bool {
	return f.Rows == other.Rows && f.Cols == other.Cols
}

// String returns a short description of the field, useful in logs and errors.
func (f Field) String() string {
	return fmt.Sprintf("field(%dx%d)", f.Rows, f.Cols)
}

// Int16 is a dense row-major grid of int16 values, used for elevation
// rasters in meters (HGT tiles and extraction output).
type Int16 struct {
	Rows int
	Cols int
	Data []int16 // row-major, len == Rows*Cols
}

// NewInt16 allocates a zero-filled int16 grid of the given shape.
func NewInt16(rows, cols int) Int16 {
	return Int16{
		Rows: rows,
		Cols: cols,
		Data: make([]int16, rows*cols),
	}
}

// At returns the value at row r, column c.
func (g Int16) At(r, c int) int16 {
	return g.Data[r*g.Cols+c]
}

// Set stores v at row r, column c.
func (g Int16) Set(r, c int, v int16) {
	g.Data[r*g.Cols+c] = v
}

// Shape returns (rows, cols).
func (g Int16) Shape() (int, int) {
	return g.Rows, g.Cols
}

// ToField converts the grid to a float64 field.
func (g Int16) ToField() Field {
	f := NewField(g.Rows, g.Cols)
	for i, v := range g.Data {
		f.Data[i] = float64(v)
	}
	return f
}
