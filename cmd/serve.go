package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kozaktomas/face-attendance/internal/apperr"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/metrics"
	"github.com/kozaktomas/face-attendance/internal/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the attendance web server.
The server provides a dashboard of the day's attendance, a read-only JSON API
and Prometheus metrics on /metrics.

With --kiosk the terminal also runs a check-in kiosk: type an id, face the
camera, and the result shows up on the dashboard right away.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (default WEB_PORT or 8080)")
	serveCmd.Flags().String("host", "", "Host to bind to (default WEB_HOST or 0.0.0.0)")
	serveCmd.Flags().Bool("kiosk", false, "Run an interactive check-in kiosk on this terminal")
}

// resolveServeHostPort lets flags override the configured address.
func resolveServeHostPort(cmd *cobra.Command, cfg *config.Config) {
	if port := mustGetInt(cmd, "port"); port > 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	resolveServeHostPort(cmd, cfg)
	withKiosk := mustGetBool(cmd, "kiosk")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("Connecting to %s database...\n", cfg.Database.Driver)
	a, err := newApp(ctx, cfg, appOptions{camera: withKiosk, metrics: m})
	if err != nil {
		return err
	}
	defer a.Close()

	server := web.NewServer(cfg, web.Deps{
		Reports:   a.ledger,
		Directory: a.registry,
		Classes:   cfg.Classes.Names,
		Health:    a.store.Ping,
		Gatherer:  reg,
		Logger:    slog.Default(),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		fmt.Println("\nShutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	fmt.Printf("Attendance dashboard on http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	fmt.Println("Press Ctrl+C to stop")

	if withKiosk {
		// The kiosk blocks on the terminal, so it stays outside the group;
		// closing stdin ends the kiosk but keeps the server running.
		go func() {
			err := kiosk(gctx, stdinLines(), a.ledger.Record, func(err error) {
				m.IncCheckInFailure(apperr.KindOf(err).String())
			})
			if err != nil {
				slog.Error("kiosk stopped", "error", err)
			}
		}()
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}
