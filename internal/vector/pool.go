package vector

import (
	"fmt"

	"github.com/hyperjump/emnet/internal/errs"
)

// Mean returns the element-wise arithmetic mean of vectors. All vectors must share
// one dimension. An empty input is an error: a document must produce at least one chunk.
func Mean(vectors [][]float32) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: cannot pool zero vectors", errs.ErrInvalidInput)
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: cannot pool empty vectors", errs.ErrInvalidInput)
	}
	sums := make([]float64, dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, expected %d", errs.ErrInvalidInput, i, len(v), dim)
		}
		for j, x := range v {
			sums[j] += float64(x)
		}
	}
	n := float64(len(vectors))
	out := make([]float32, dim)
	for j, s := range sums {
		out[j] = float32(s / n)
	}
	return out, nil
}
