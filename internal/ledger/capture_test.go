package ledger

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/kozaktomas/face-attendance/internal/biometric"
	"github.com/kozaktomas/face-attendance/internal/capture"
)

type streamCamera struct{}

func (streamCamera) Open(ctx context.Context) (capture.FrameSource, error) {
	return &stream{}, nil
}

type stream struct{ seq int }

func (s *stream) Read(ctx context.Context) (capture.Frame, error) {
	if err := ctx.Err(); err != nil {
		return capture.Frame{}, err
	}
	time.Sleep(time.Millisecond)
	s.seq++
	return capture.Frame{Seq: s.seq, Data: []byte("frame")}, nil
}

func (s *stream) Close() error { return nil }

// scriptedEncoder answers successive calls with successive face lists.
type scriptedEncoder struct {
	mu    sync.Mutex
	faces [][]biometric.Vector
}

func (e *scriptedEncoder) DetectAndEncode(ctx context.Context, frame capture.Frame) ([]biometric.Vector, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	f := e.faces[0]
	if len(e.faces) > 1 {
		e.faces = e.faces[1:]
	}
	return f, nil
}

func TestCheckInUsesFirstSingleFaceFrame(t *testing.T) {
	f := newFixture(t)
	crowd := []biometric.Vector{reference(), at(reference(), 0.01)}
	enc := &scriptedEncoder{faces: [][]biometric.Vector{crowd, crowd, {at(reference(), 0.30)}}}
	signals := []capture.Signal{capture.SignalCapture, capture.SignalCapture, capture.SignalCapture}
	orch := capture.New(streamCamera{}, enc, capture.Script{Signals: signals}, capture.WithTimeout(5*time.Second))

	res, err := f.ledger(orch).Record(context.Background(), "S1")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if res.Status != Present {
		t.Errorf("status = %s, want present", res.Status)
	}
	if math.Abs(res.Distance-0.30) > 1e-6 {
		t.Errorf("distance = %v, want the third frame's 0.30", res.Distance)
	}
}
