package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tracker-service",
	Short: "Template-driven Freshdesk tracker tickets: sessions, subject lines, submission (PSDS)",
	RunE:  runAPI,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(subjectCmd)
}
