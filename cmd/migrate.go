package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	Long: `Apply pending schema migrations for the configured DATABASE_DRIVER.
Every command migrates on connect; this one only connects, migrates and
prints the schema versions now applied.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		ctx, stop := signalContext()
		defer stop()

		store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		status, err := store.Migrations(ctx)
		if err != nil {
			return err
		}

		if mustGetBool(cmd, "json") {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(status)
		}

		for _, v := range status.Applied {
			fmt.Printf("  applied  %s\n", v)
		}
		for _, v := range status.Pending {
			fmt.Printf("  pending  %s\n", v)
		}
		if len(status.Pending) > 0 {
			return fmt.Errorf("%d migrations still pending", len(status.Pending))
		}
		fmt.Printf("Database schema is up to date (%s)\n", cfg.Database.Driver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().Bool("json", false, "Output as JSON")
}
