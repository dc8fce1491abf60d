package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/face-attendance/internal/biometric"
	"github.com/kozaktomas/face-attendance/internal/metrics"
)

// Operator relays human decisions into a running session. Operate returns once the
// session is done or ctx is cancelled.
type Operator interface {
	Operate(ctx context.Context, s *Session)
}

// Orchestrator starts capture sessions against one camera and encoder.
type Orchestrator struct {
	camera   Camera
	encoder  FaceEncoder
	operator Operator
	dim      int
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(o *Orchestrator)

// WithTimeout bounds every session. Zero leaves sessions unbounded.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.timeout = d
	}
}

// WithDim sets the encoding dimension accepted from the encoder.
func WithDim(dim int) Option {
	return func(o *Orchestrator) {
		o.dim = dim
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// New creates an Orchestrator. operator may be nil when callers drive sessions
// themselves through Begin.
func New(camera Camera, encoder FaceEncoder, operator Operator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		camera:   camera,
		encoder:  encoder,
		operator: operator,
		dim:      biometric.DefaultDim,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Begin opens the camera and starts the frame loop in the background.
// A camera that fails to open yields ErrDeviceUnavailable straight away.
func (o *Orchestrator) Begin(ctx context.Context, prompt string) (*Session, error) {
	src, err := o.camera.Open(ctx)
	if err != nil {
		if errors.Is(err, ErrDeviceUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	var cancel context.CancelFunc
	if o.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	s := newSession(uuid.NewString(), prompt)
	s.setState(Capturing)
	o.logger.Debug("capture session started", "session", s.ID, "prompt", prompt)

	go func() {
		defer cancel()
		o.run(ctx, s, src)
	}()
	return s, nil
}

// Acquire runs a whole session with the configured operator and returns the accepted
// encoding.
func (o *Orchestrator) Acquire(ctx context.Context, prompt string) (biometric.Vector, error) {
	if o.operator == nil {
		return nil, errors.New("capture: no operator configured")
	}
	s, err := o.Begin(ctx, prompt)
	if err != nil {
		return nil, err
	}
	opCtx, stop := context.WithCancel(ctx)
	opDone := make(chan struct{})
	go func() {
		defer close(opDone)
		o.operator.Operate(opCtx, s)
	}()

	vec, err := s.Wait()
	// The operator must stop reading input before the caller prompts again.
	stop()
	<-opDone
	return vec, err
}

func (o *Orchestrator) run(ctx context.Context, s *Session, src FrameSource) {
	defer func() {
		if err := src.Close(); err != nil {
			o.logger.Warn("closing camera", "session", s.ID, "error", err)
		}
		st := s.State()
		o.metrics.ObserveCapture(st.String(), time.Since(s.Started))
		o.logger.Debug("capture session ended", "session", s.ID, "state", st, "error", s.err)
		close(s.done)
		close(s.events)
	}()

	finish := func(st State, ev Event, err error) {
		s.err = err
		ev.Err = err
		s.setState(st)
		s.publish(ev)
	}

	for {
		frame, err := src.Read(ctx)
		if err != nil {
			switch {
			case ctx.Err() != nil:
				finish(Failed, Event{Type: EventFailed}, fmt.Errorf("%w: %w", ErrCaptureFailed, ctx.Err()))
			case errors.Is(err, ErrEndOfStream):
				finish(Failed, Event{Type: EventFailed}, fmt.Errorf("%w: %w", ErrCaptureFailed, err))
			default:
				finish(Failed, Event{Type: EventFailed}, fmt.Errorf("%w: read frame: %w", ErrCaptureFailed, err))
			}
			return
		}
		s.publish(Event{Type: EventFrame, Seq: frame.Seq})

		select {
		case sig := <-s.signals:
			if sig == SignalCancel {
				finish(Cancelled, Event{Type: EventCancelled, Seq: frame.Seq}, fmt.Errorf("%w: %w", ErrCaptureFailed, ErrAborted))
				return
			}
			vec, done, err := o.encode(ctx, s, frame)
			if err != nil {
				finish(Failed, Event{Type: EventFailed, Seq: frame.Seq}, err)
				return
			}
			if done {
				s.encoding = vec
				finish(Accepted, Event{Type: EventAccepted, Seq: frame.Seq, Faces: 1}, nil)
				return
			}
		case <-ctx.Done():
			finish(Failed, Event{Type: EventFailed, Seq: frame.Seq}, fmt.Errorf("%w: %w", ErrCaptureFailed, ctx.Err()))
			return
		default:
		}
	}
}

// encode runs the encoder on frame. It returns done=false when the session should keep
// capturing, and an error only when the session must end.
func (o *Orchestrator) encode(ctx context.Context, s *Session, frame Frame) (biometric.Vector, bool, error) {
	faces, err := o.encoder.DetectAndEncode(ctx, frame)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrCaptureFailed, ctx.Err())
		}
		if errors.Is(err, biometric.ErrDimensionMismatch) {
			return nil, false, fmt.Errorf("captured encoding: %w", err)
		}
		o.logger.Warn("face encoder failed", "session", s.ID, "frame", frame.Seq, "error", err)
		s.publish(Event{Type: EventWarning, Seq: frame.Seq, Err: err})
		return nil, false, nil
	}
	if len(faces) != 1 {
		o.logger.Info("capture rejected", "session", s.ID, "frame", frame.Seq, "faces", len(faces))
		o.metrics.IncCaptureRetry()
		s.publish(Event{Type: EventRetry, Seq: frame.Seq, Faces: len(faces)})
		return nil, false, nil
	}
	if err := faces[0].CheckDim(o.dim); err != nil {
		return nil, false, fmt.Errorf("captured encoding: %w", err)
	}
	return faces[0], true, nil
}
