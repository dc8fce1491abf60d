package cmd

import (
	"fmt"
	"strings"

	"github.com/kozaktomas/face-attendance/internal/registry"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// mustGet reads a flag registered in init(); a lookup error is a programming bug.
func mustGet[T any](cmd *cobra.Command, name string, get func(*pflag.FlagSet, string) (T, error)) T {
	val, err := get(cmd.Flags(), name)
	if err != nil {
		panic(fmt.Sprintf("flag error for --%s: %v", name, err))
	}
	return val
}

func mustGetBool(cmd *cobra.Command, name string) bool {
	return mustGet(cmd, name, (*pflag.FlagSet).GetBool)
}

func mustGetInt(cmd *cobra.Command, name string) int {
	return mustGet(cmd, name, (*pflag.FlagSet).GetInt)
}

func mustGetString(cmd *cobra.Command, name string) string {
	return mustGet(cmd, name, (*pflag.FlagSet).GetString)
}

func mustGetFloat64(cmd *cobra.Command, name string) float64 {
	return mustGet(cmd, name, (*pflag.FlagSet).GetFloat64)
}

func mustGetStringSlice(cmd *cobra.Command, name string) []string {
	return mustGet(cmd, name, (*pflag.FlagSet).GetStringSlice)
}

// parseRole accepts a role name in any case; the registry rejects unknown roles.
func parseRole(s string) registry.Role {
	return registry.Role(strings.ToLower(strings.TrimSpace(s)))
}
