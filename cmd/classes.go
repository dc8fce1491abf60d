package cmd

import (
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/spf13/cobra"
)

var classesCmd = &cobra.Command{
	Use:   "classes",
	Short: "List the classes students can be enrolled in",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, c := range config.Load().Classes.Names {
			fmt.Println(c)
		}
	},
}

func init() {
	rootCmd.AddCommand(classesCmd)
}
