package synth

import (
	"math/rand"

	"github.com/MeKo-Tech/reliefmap/internal/grid"
)

// Source is a seeded stream of random variates. Draws are consumed strictly
// sequentially, so the same seed and the same sequence of calls always
// produce the same values, on every platform.
type Source struct {
	rng *rand.Rand
}

// NewSource creates a deterministic random source from a seed.
func NewSource(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Exponential draws one exponential variate per cell of scale, with the
// cell's value as the mean. A zero scale yields exactly zero; the underlying
// draw is still consumed so that the stream position does not depend on the
// scale values.
func (s *Source) Exponential(scale grid.Field) grid.Field {
	out := grid.NewField(scale.Rows, scale.Cols)
	for i, sc := range scale.Data {
		out.Data[i] = sc * s.rng.ExpFloat64()
	}
	return out
}

// Normal draws a grid of standard-normal variates in row-major order.
func (s *Source) Normal(rows, cols int) grid.Field {
	out := grid.NewField(rows, cols)
	for i := range out.Data {
		out.Data[i] = s.rng.NormFloat64()
	}
	return out
}
