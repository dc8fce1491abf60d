package biometric

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var errShortEncoding = errors.New("encoding blob too short")

// MarshalBinary encodes the vector as a little-endian uint32 dimension followed by
// float32 components.
func (v Vector) MarshalBinary() ([]byte, error) {
	if len(v) == 0 {
		return nil, fmt.Errorf("%w: empty encoding", ErrDimensionMismatch)
	}
	buf := make([]byte, 4+4*len(v))
	binary.LittleEndian.PutUint32(buf, uint32(len(v)))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4+4*i:], math.Float32bits(f))
	}
	return buf, nil
}

// UnmarshalBinary decodes a blob produced by MarshalBinary.
func (v *Vector) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return errShortEncoding
	}
	dim := int(binary.LittleEndian.Uint32(data))
	if dim == 0 {
		return fmt.Errorf("%w: empty encoding", ErrDimensionMismatch)
	}
	if len(data) != 4+4*dim {
		return fmt.Errorf("%w: header says %d values, blob holds %d bytes", ErrDimensionMismatch, dim, len(data)-4)
	}
	out := make(Vector, dim)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4+4*i:]))
	}
	*v = out
	return nil
}
