// Package biometric holds the face encoding value type and the distance rule used to
// decide whether two encodings belong to the same person.
package biometric

import (
	"errors"
	"fmt"
)

// DefaultDim is the dimensionality of dlib-style face encodings.
const DefaultDim = 128

// ErrDimensionMismatch is returned whenever two encodings, or an encoding and the
// expected dimension, disagree.
var ErrDimensionMismatch = errors.New("encoding dimension mismatch")

// Vector is a face encoding. Its length is its dimension.
type Vector []float32

// NewVector copies values into a Vector and checks it against dim.
// A dim of zero or less accepts any non-empty input.
func NewVector(values []float32, dim int) (Vector, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: empty encoding", ErrDimensionMismatch)
	}
	if dim > 0 && len(values) != dim {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrDimensionMismatch, len(values), dim)
	}
	v := make(Vector, len(values))
	copy(v, values)
	return v, nil
}

// Dim returns the number of components.
func (v Vector) Dim() int {
	return len(v)
}

// CheckDim verifies the vector has exactly dim components (dim <= 0 only rejects empty vectors).
func (v Vector) CheckDim(dim int) error {
	if len(v) == 0 {
		return fmt.Errorf("%w: empty encoding", ErrDimensionMismatch)
	}
	if dim > 0 && len(v) != dim {
		return fmt.Errorf("%w: got %d values, want %d", ErrDimensionMismatch, len(v), dim)
	}
	return nil
}
