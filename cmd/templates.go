package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/psds-microservice/tracker-service/internal/tracker"
)

var templatesCmd = &cobra.Command{
	Use:   "templates [name]",
	Short: "List tracker templates, or show the fields of one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTemplates,
}

func runTemplates(cmd *cobra.Command, args []string) error {
	reg, err := tracker.LoadRegistry()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		for _, t := range reg.List() {
			fmt.Fprintf(out, "%-20s %-20s %s\n", t.Name, t.Subject.Format, t.Title)
		}
		return nil
	}
	t, err := reg.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s (%s), subject format %s\n", t.Title, t.Name, t.Subject.Format)
	for _, s := range t.Sections {
		fmt.Fprintf(out, "[%s] %s\n", s.ID, s.Title)
		for _, f := range s.Fields {
			req := ""
			if f.Required {
				req = " *"
			}
			fmt.Fprintf(out, "  %-26s %-10s %s%s\n", f.ID, f.Type, f.Label, req)
		}
	}
	return nil
}
