package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/kozaktomas/face-attendance/internal/biometric"
	"github.com/kozaktomas/face-attendance/internal/capture"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/encoder"
	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/kozaktomas/face-attendance/internal/metrics"
	"github.com/kozaktomas/face-attendance/internal/registry"
)

// app holds the services one command invocation works with.
type app struct {
	cfg      *config.Config
	store    database.Store
	encoder  *encoder.Client
	capturer *capture.Orchestrator
	registry *registry.Registry
	ledger   *ledger.Ledger
}

type appOptions struct {
	camera    bool // wire a capture orchestrator
	threshold float64
	metrics   *metrics.Metrics
	out       io.Writer
}

// newApp opens the store and builds the services. Close must be called when done.
func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger := slog.Default()
	a := &app{cfg: cfg, store: store}

	a.registry = registry.New(store, cfg.Classes,
		registry.WithDim(cfg.Matching.Dim),
		registry.WithLogger(logger),
		registry.WithMetrics(opts.metrics),
	)
	a.encoder = encoder.New(cfg.Encoder.URL, cfg.Matching.Dim, encoder.WithMaxSize(cfg.Encoder.MaxSize))

	var capturer registry.Capturer
	if opts.camera {
		if cfg.Camera.Source == "" {
			store.Close()
			return nil, errors.New("CAMERA_SOURCE environment variable is required")
		}
		out := opts.out
		if out == nil {
			out = os.Stdout
		}
		a.capturer = capture.New(
			capture.NewCamera(cfg.Camera.Source, cfg.Camera.Loop, cfg.Camera.Interval),
			a.encoder,
			capture.NewTerminalOperator(stdinLines(), out),
			capture.WithDim(cfg.Matching.Dim),
			capture.WithTimeout(cfg.Capture.Timeout),
			capture.WithLogger(logger),
			capture.WithMetrics(opts.metrics),
		)
		capturer = a.capturer
	}

	threshold := cfg.Matching.Threshold
	if opts.threshold > 0 {
		threshold = opts.threshold
	}
	a.ledger = ledger.New(a.registry, capturer, biometric.NewMatcher(threshold, cfg.Matching.Dim), store,
		ledger.WithLogger(logger),
		ledger.WithMetrics(opts.metrics),
	)
	return a, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
