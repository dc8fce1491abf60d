package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kozaktomas/face-attendance/internal/capture"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/spf13/cobra"
)

var checkinCmd = &cobra.Command{
	Use:   "checkin [id]",
	Short: "Check a person in by verifying their face",
	Long: `Verify a person against their enrolled face and record today's attendance.

The person's id is looked up among students first, then teachers. The camera
then runs until a frame with exactly one face is captured. A capture closer
than the match threshold records "present", otherwise "absent". Checking in
again the same day replaces the earlier result.

Without an id argument the id is read from the terminal.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheckin,
}

func init() {
	rootCmd.AddCommand(checkinCmd)

	checkinCmd.Flags().Float64("threshold", 0, "Override MATCH_THRESHOLD for this run")
}

// promptID reads a person id from lines. io.EOF means the input is closed.
func promptID(ctx context.Context, lines <-chan string, prompt string) (string, error) {
	fmt.Print(prompt)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-lines:
		if !ok {
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
}

func runCheckin(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	ctx, stop := signalContext()
	defer stop()

	var id string
	if len(args) == 1 {
		id = args[0]
	} else {
		var err error
		if id, err = promptID(ctx, stdinLines(), "ID: "); err != nil {
			return err
		}
	}

	a, err := newApp(ctx, cfg, appOptions{camera: true, threshold: mustGetFloat64(cmd, "threshold")})
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.ledger.Record(ctx, id)
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

func printResult(res *ledger.Result) {
	fmt.Printf("%s (%s) is %s on %s (distance %.4f)\n",
		res.Person.Name, res.Person.ID, strings.ToUpper(string(res.Status)), res.Date, res.Distance)
}

// checkInFunc records one check-in; *ledger.Ledger's Record in production.
type checkInFunc func(ctx context.Context, id string) (*ledger.Result, error)

// kiosk checks people in one after another until the input ends or ctx is done.
// Failures are reported and the kiosk moves on to the next person.
// Lines typed during a capture are dropped so they are never read as an id.
func kiosk(ctx context.Context, lines <-chan string, checkIn checkInFunc, onError func(error)) error {
	fmt.Println("Kiosk ready. Enter an id to check in, empty line or Ctrl+D to stop.")
	for {
		id, err := promptID(ctx, lines, "ID: ")
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || (err == nil && id == "") {
			return nil
		}
		if err != nil {
			return err
		}

		res, err := checkIn(ctx, id)
		capture.Drain(lines)
		if err != nil {
			onError(err)
			fmt.Printf("Check-in failed: %v\n", err)
			continue
		}
		printResult(res)
	}
}
