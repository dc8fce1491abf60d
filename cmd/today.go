package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/spf13/cobra"
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show the day's attendance records",
	Long: `List the attendance records of today (or --date), ordered by class and name.
Teachers have no class and are listed first.`,
	RunE: runToday,
}

func init() {
	rootCmd.AddCommand(todayCmd)

	todayCmd.Flags().String("date", "", "Date to report (YYYY-MM-DD), defaults to today")
	todayCmd.Flags().StringSlice("class", nil, "Only show these classes (repeatable)")
	todayCmd.Flags().Bool("json", false, "Output as JSON")
}

func runToday(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	jsonOutput := mustGetBool(cmd, "json")
	classes := mustGetStringSlice(cmd, "class")

	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cfg, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	date := mustGetString(cmd, "date")
	if date == "" {
		date = a.ledger.Today()
	}
	records, err := a.ledger.RecordsOn(ctx, date)
	if err != nil {
		return err
	}
	if len(classes) > 0 {
		records = slices.DeleteFunc(records, func(r ledger.Record) bool {
			return !slices.Contains(classes, r.Class)
		})
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"date": date, "records": records})
	}

	if len(records) == 0 {
		fmt.Printf("No attendance recorded on %s\n", date)
		return nil
	}

	var present int
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CLASS\tID\tNAME\tSTATUS")
	for _, r := range records {
		class := r.Class
		if class == "" {
			class = "(staff)"
		}
		if ledger.Status(r.Status) == ledger.Present {
			present++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", class, r.PersonID, r.Name, r.Status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%s: %d present, %d absent\n", date, present, len(records)-present)
	return nil
}
