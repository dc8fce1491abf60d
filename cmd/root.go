package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kozaktomas/face-attendance/internal/apperr"
	"github.com/kozaktomas/face-attendance/internal/capture"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/spf13/cobra"
)

// stdinLines pumps the terminal once for every prompt and capture session.
var stdinLines = sync.OnceValue(func() <-chan string {
	return capture.Lines(os.Stdin)
})

var rootCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Face-verified daily attendance for students and teachers",
	Long: `Attendance enrolls students and teachers with a reference photo of their face
and records daily check-ins by comparing a fresh camera capture against it.

Reports of the day's attendance are available from the command line and,
with "attendance serve", over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if kind := apperr.KindOf(err); kind != apperr.KindInternal {
			fmt.Fprintf(os.Stderr, "Error (%s): %v\n", kind, err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()

	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
}
