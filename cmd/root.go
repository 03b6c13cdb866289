package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "timesync",
	Short: "timesync – daily time accounting across WakaTime, ActivityWatch and Notion",
	Long: `timesync pulls coding time from WakaTime, screen time from a local
ActivityWatch server and completed tasks from a Notion database, reconciles
them into one aggregate per day, and upserts that aggregate into a Notion
time-accounting database. A JSON snapshot of each synced day is written to
the export directory for local analytics.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(reportCmd)
}
