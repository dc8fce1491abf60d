package biometric

import (
	"errors"
	"testing"
)

func TestNewVector(t *testing.T) {
	tests := []struct {
		name    string
		values  []float32
		dim     int
		wantErr bool
	}{
		{"exact dimension", []float32{1, 2, 3}, 3, false},
		{"any dimension", []float32{1, 2, 3}, 0, false},
		{"too short", []float32{1, 2}, 3, true},
		{"too long", []float32{1, 2, 3, 4}, 3, true},
		{"empty", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewVector(tt.values, tt.dim)
			if tt.wantErr {
				if !errors.Is(err, ErrDimensionMismatch) {
					t.Errorf("expected ErrDimensionMismatch, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v.Dim() != len(tt.values) {
				t.Errorf("Dim() = %d, want %d", v.Dim(), len(tt.values))
			}
		})
	}
}

func TestNewVector_Copies(t *testing.T) {
	src := []float32{1, 2, 3}
	v, err := NewVector(src, 3)
	if err != nil {
		t.Fatal(err)
	}
	src[0] = 99
	if v[0] != 1 {
		t.Error("NewVector must not alias its input")
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	v := Vector{0.25, -1.5, 3.75, 0}
	data, err := v.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 4+4*len(v) {
		t.Fatalf("blob length = %d, want %d", len(data), 4+4*len(v))
	}

	var got Vector
	if err := got.UnmarshalBinary(data); err != nil {
		t.Fatal(err)
	}
	if len(got) != len(v) {
		t.Fatalf("decoded %d values, want %d", len(got), len(v))
	}
	for i := range v {
		if got[i] != v[i] {
			t.Errorf("component %d = %v, want %v", i, got[i], v[i])
		}
	}
}

func TestUnmarshalBinary_Rejects(t *testing.T) {
	good, _ := Vector{1, 2}.MarshalBinary()

	tests := []struct {
		name string
		data []byte
	}{
		{"nil", nil},
		{"header only short", []byte{1, 0}},
		{"zero dimension", []byte{0, 0, 0, 0}},
		{"truncated", good[:len(good)-1]},
		{"trailing bytes", append(append([]byte{}, good...), 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Vector
			if err := v.UnmarshalBinary(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}
