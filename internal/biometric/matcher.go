package biometric

import (
	"fmt"
	"math"
)

// DefaultThreshold is the largest Euclidean distance that still counts as a match
// (exclusive).
const DefaultThreshold = 0.45

// Verdict is the outcome of comparing a reference encoding with a candidate.
type Verdict struct {
	Distance float64
	Match    bool
}

// Matcher compares encodings by Euclidean distance.
type Matcher struct {
	Threshold float64
	Dim       int // expected dimension, 0 accepts any as long as both sides agree
}

// NewMatcher returns a matcher with the given threshold and dimension.
// A non-positive threshold falls back to DefaultThreshold.
func NewMatcher(threshold float64, dim int) Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Matcher{Threshold: threshold, Dim: dim}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vector) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, fmt.Errorf("%w: empty encoding", ErrDimensionMismatch)
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// Verify compares reference against candidate and reports the distance alongside the decision.
func (m Matcher) Verify(reference, candidate Vector) (Verdict, error) {
	if m.Dim > 0 {
		if err := reference.CheckDim(m.Dim); err != nil {
			return Verdict{}, fmt.Errorf("reference: %w", err)
		}
		if err := candidate.CheckDim(m.Dim); err != nil {
			return Verdict{}, fmt.Errorf("candidate: %w", err)
		}
	}
	d, err := Distance(reference, candidate)
	if err != nil {
		return Verdict{}, err
	}
	threshold := m.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Verdict{Distance: d, Match: d < threshold}, nil
}

// Match reports whether the two encodings are closer than the threshold.
func (m Matcher) Match(reference, candidate Vector) (bool, error) {
	v, err := m.Verify(reference, candidate)
	if err != nil {
		return false, err
	}
	return v.Match, nil
}
