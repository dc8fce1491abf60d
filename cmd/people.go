package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/registry"
	"github.com/spf13/cobra"
)

var peopleCmd = &cobra.Command{
	Use:   "people",
	Short: "Browse enrolled students and teachers",
}

var peopleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List everyone enrolled in a role",
	RunE:  runPeopleList,
}

var peopleShowCmd = &cobra.Command{
	Use:   "show <role> <id>",
	Short: "Show one enrolled person",
	Args:  cobra.ExactArgs(2),
	RunE:  runPeopleShow,
}

func init() {
	rootCmd.AddCommand(peopleCmd)
	peopleCmd.AddCommand(peopleListCmd)
	peopleCmd.AddCommand(peopleShowCmd)

	peopleListCmd.Flags().String("role", "student", "Role: student or teacher")
	peopleListCmd.Flags().String("search", "", "Only people whose name or id contains this text")
	peopleListCmd.Flags().Bool("json", false, "Output as JSON")
}

func runPeopleList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	role := parseRole(mustGetString(cmd, "role"))

	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cfg, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	people, err := a.registry.Search(ctx, role, mustGetString(cmd, "search"))
	if err != nil {
		return err
	}

	if mustGetBool(cmd, "json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(people)
	}

	if len(people) == 0 {
		fmt.Printf("No %ss found\n", role)
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if role == registry.Student {
		fmt.Fprintln(w, "CLASS\tID\tNAME\tENROLLED")
	} else {
		fmt.Fprintln(w, "ID\tNAME\tENROLLED")
	}
	for _, p := range people {
		enrolled := p.CreatedAt.Format("2006-01-02")
		if role == registry.Student {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Class, p.ID, p.Name, enrolled)
		} else {
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Name, enrolled)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d %ss\n", len(people), role)
	return nil
}

func runPeopleShow(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cfg, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.registry.Lookup(ctx, args[1], parseRole(args[0]))
	if err != nil {
		return err
	}
	fmt.Printf("ID:       %s\n", p.ID)
	fmt.Printf("Name:     %s\n", p.Name)
	fmt.Printf("Role:     %s\n", p.Role)
	if p.Class != "" {
		fmt.Printf("Class:    %s\n", p.Class)
	}
	fmt.Printf("Encoding: %d dimensions\n", p.Encoding.Dim())
	fmt.Printf("Enrolled: %s\n", p.CreatedAt.Format("2006-01-02 15:04"))
	return nil
}
