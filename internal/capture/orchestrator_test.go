package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kozaktomas/face-attendance/internal/biometric"
	"github.com/kozaktomas/face-attendance/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func vec(fill float32) biometric.Vector {
	v := make(biometric.Vector, biometric.DefaultDim)
	for i := range v {
		v[i] = fill
	}
	return v
}

type fakeSource struct {
	limit  int // 0 streams forever
	seq    int
	closed atomic.Bool
}

func (f *fakeSource) Read(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	time.Sleep(time.Millisecond)
	if f.limit > 0 && f.seq >= f.limit {
		return Frame{}, ErrEndOfStream
	}
	f.seq++
	return Frame{Seq: f.seq, Data: []byte("frame"), CapturedAt: time.Now()}, nil
}

func (f *fakeSource) Close() error {
	f.closed.Store(true)
	return nil
}

type fakeCamera struct {
	openErr error
	src     *fakeSource
}

func (c *fakeCamera) Open(ctx context.Context) (FrameSource, error) {
	if c.openErr != nil {
		return nil, c.openErr
	}
	return c.src, nil
}

// fakeEncoder answers call i with results[i] (or errs[i]); the last entry repeats.
type fakeEncoder struct {
	mu      sync.Mutex
	results [][]biometric.Vector
	errs    []error
	calls   int
}

func (e *fakeEncoder) DetectAndEncode(ctx context.Context, frame Frame) ([]biometric.Vector, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := min(e.calls, len(e.results)-1)
	e.calls++
	if i < len(e.errs) && e.errs[i] != nil {
		return nil, e.errs[i]
	}
	return e.results[i], nil
}

func (e *fakeEncoder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func oneFace(v biometric.Vector) []biometric.Vector {
	return []biometric.Vector{v}
}

func TestBeginDeviceUnavailable(t *testing.T) {
	cam := &fakeCamera{openErr: errors.New("no such device")}
	o := New(cam, &fakeEncoder{results: [][]biometric.Vector{nil}}, nil)

	s, err := o.Begin(context.Background(), "look")
	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("error = %v, want ErrDeviceUnavailable", err)
	}
	if s != nil {
		t.Fatal("expected no session")
	}
}

func TestAcquireRetriesUntilSingleFace(t *testing.T) {
	two := []biometric.Vector{vec(0.1), vec(0.2)}
	want := vec(0.3)
	enc := &fakeEncoder{results: [][]biometric.Vector{two, two, oneFace(want)}}
	src := &fakeSource{}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	o := New(&fakeCamera{src: src}, enc,
		Script{Signals: []Signal{SignalCapture, SignalCapture, SignalCapture}},
		WithMetrics(m))

	got, err := o.Acquire(context.Background(), "look")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if d, _ := biometric.Distance(got, want); d != 0 {
		t.Errorf("accepted vector differs from the third capture (distance %v)", d)
	}
	if enc.Calls() != 3 {
		t.Errorf("encoder calls = %d, want 3", enc.Calls())
	}
	if r := testutil.ToFloat64(m.CaptureRetries); r != 2 {
		t.Errorf("retries = %v, want 2", r)
	}
	if !src.closed.Load() {
		t.Error("camera not closed")
	}
}

func TestEncoderErrorKeepsCapturing(t *testing.T) {
	enc := &fakeEncoder{
		results: [][]biometric.Vector{nil, oneFace(vec(0.3))},
		errs:    []error{errors.New("model busy")},
	}
	o := New(&fakeCamera{src: &fakeSource{}}, enc, Script{Signals: []Signal{SignalCapture, SignalCapture}})

	if _, err := o.Acquire(context.Background(), "look"); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if enc.Calls() != 2 {
		t.Errorf("encoder calls = %d, want 2", enc.Calls())
	}
}

func TestCancel(t *testing.T) {
	src := &fakeSource{}
	enc := &fakeEncoder{results: [][]biometric.Vector{oneFace(vec(0.3))}}
	o := New(&fakeCamera{src: src}, enc, nil)

	s, err := o.Begin(context.Background(), "look")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if s.State() != Capturing {
		t.Errorf("state = %s, want capturing", s.State())
	}
	if s.ID == "" {
		t.Error("session has no id")
	}

	s.Cancel()
	v, err := s.Wait()
	if !errors.Is(err, ErrCaptureFailed) || !errors.Is(err, ErrAborted) {
		t.Fatalf("error = %v, want ErrCaptureFailed wrapping ErrAborted", err)
	}
	if v != nil {
		t.Error("cancelled session returned an encoding")
	}
	if s.State() != Cancelled {
		t.Errorf("state = %s, want cancelled", s.State())
	}
	if !src.closed.Load() {
		t.Error("camera not closed")
	}
	if enc.Calls() != 0 {
		t.Errorf("encoder calls = %d, want 0", enc.Calls())
	}

	// Signals after the end must not block.
	s.Capture()
	s.Cancel()

	for range s.Events() {
	}
}

func TestEndOfStream(t *testing.T) {
	src := &fakeSource{limit: 3}
	o := New(&fakeCamera{src: src}, &fakeEncoder{results: [][]biometric.Vector{nil}}, nil)

	s, err := o.Begin(context.Background(), "look")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	_, err = s.Wait()
	if !errors.Is(err, ErrCaptureFailed) || !errors.Is(err, ErrEndOfStream) {
		t.Fatalf("error = %v, want ErrCaptureFailed wrapping ErrEndOfStream", err)
	}
	if s.State() != Failed {
		t.Errorf("state = %s, want failed", s.State())
	}
	if !src.closed.Load() {
		t.Error("camera not closed")
	}
}

func TestTimeout(t *testing.T) {
	src := &fakeSource{}
	o := New(&fakeCamera{src: src}, &fakeEncoder{results: [][]biometric.Vector{nil}}, nil,
		WithTimeout(30*time.Millisecond))

	s, err := o.Begin(context.Background(), "look")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	_, err = s.Wait()
	if !errors.Is(err, ErrCaptureFailed) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want ErrCaptureFailed wrapping DeadlineExceeded", err)
	}
	if !src.closed.Load() {
		t.Error("camera not closed")
	}
}

func TestParentContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	o := New(&fakeCamera{src: &fakeSource{}}, &fakeEncoder{results: [][]biometric.Vector{nil}}, nil)

	s, err := o.Begin(ctx, "look")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	cancel()
	if _, err := s.Wait(); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestWrongDimensionFailsClosed(t *testing.T) {
	enc := &fakeEncoder{results: [][]biometric.Vector{oneFace(biometric.Vector{0.1, 0.2})}}
	o := New(&fakeCamera{src: &fakeSource{}}, enc, Script{Signals: []Signal{SignalCapture}})

	_, err := o.Acquire(context.Background(), "look")
	if !errors.Is(err, biometric.ErrDimensionMismatch) {
		t.Fatalf("error = %v, want ErrDimensionMismatch", err)
	}
}

func TestEncoderDimensionErrorFailsClosed(t *testing.T) {
	enc := &fakeEncoder{
		results: [][]biometric.Vector{nil},
		errs:    []error{fmt.Errorf("frame 1 face 0: %w", biometric.ErrDimensionMismatch)},
	}
	src := &fakeSource{}
	o := New(&fakeCamera{src: src}, enc, Script{Signals: []Signal{SignalCapture, SignalCapture, SignalCapture}})

	_, err := o.Acquire(context.Background(), "look")
	if !errors.Is(err, biometric.ErrDimensionMismatch) {
		t.Fatalf("error = %v, want ErrDimensionMismatch", err)
	}
	if enc.Calls() != 1 {
		t.Errorf("encoder calls = %d, want 1", enc.Calls())
	}
	if !src.closed.Load() {
		t.Error("camera not closed")
	}
}

func TestEventsReportRetry(t *testing.T) {
	enc := &fakeEncoder{results: [][]biometric.Vector{{}, oneFace(vec(0.3))}}
	o := New(&fakeCamera{src: &fakeSource{}}, enc, nil)

	s, err := o.Begin(context.Background(), "look")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	s.Capture()

	var retries, accepted int
	for ev := range s.Events() {
		switch ev.Type {
		case EventRetry:
			retries++
			if ev.Faces != 0 {
				t.Errorf("retry faces = %d, want 0", ev.Faces)
			}
			s.Capture()
		case EventAccepted:
			accepted++
		}
	}
	if retries != 1 || accepted != 1 {
		t.Errorf("retries = %d, accepted = %d; want 1 and 1", retries, accepted)
	}
	if s.State() != Accepted {
		t.Errorf("state = %s, want accepted", s.State())
	}
}

func TestAcquireWithoutOperator(t *testing.T) {
	o := New(&fakeCamera{src: &fakeSource{}}, &fakeEncoder{results: [][]biometric.Vector{nil}}, nil)
	if _, err := o.Acquire(context.Background(), "look"); err == nil {
		t.Fatal("expected error")
	}
}

func TestTerminalOperator(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"capture on s", "s\n", nil},
		{"capture on enter", "\n", nil},
		{"unknown then capture", "x\ns\n", nil},
		{"quit", "q\n", ErrAborted},
		{"closed input", "", ErrAborted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := &fakeEncoder{results: [][]biometric.Vector{oneFace(vec(0.3))}}
			op := NewTerminalOperator(Lines(strings.NewReader(tt.input)), io.Discard)
			o := New(&fakeCamera{src: &fakeSource{}}, enc, op)

			_, err := o.Acquire(context.Background(), "Look at the camera")
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Acquire: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state    State
		want     string
		terminal bool
	}{
		{Idle, "idle", false},
		{Capturing, "capturing", false},
		{Accepted, "accepted", true},
		{Cancelled, "cancelled", true},
		{Failed, "failed", true},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
		if got := tt.state.Terminal(); got != tt.terminal {
			t.Errorf("%s.Terminal() = %v, want %v", tt.state, got, tt.terminal)
		}
	}
}

func TestDrain(t *testing.T) {
	lines := make(chan string, 3)
	lines <- "s"
	lines <- "s"
	if n := Drain(lines); n != 2 {
		t.Errorf("Drain = %d, want 2", n)
	}
	if n := Drain(lines); n != 0 {
		t.Errorf("Drain on empty input = %d, want 0", n)
	}
	close(lines)
	if n := Drain(lines); n != 0 {
		t.Errorf("Drain on closed input = %d, want 0", n)
	}
}
