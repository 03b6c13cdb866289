package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/0xEljh/timesync/internal/activitywatch"
	"github.com/0xEljh/timesync/internal/config"
	"github.com/0xEljh/timesync/internal/model"
	"github.com/0xEljh/timesync/internal/notion"
	"github.com/0xEljh/timesync/internal/pipeline"
	"github.com/0xEljh/timesync/internal/timecalc"
	"github.com/0xEljh/timesync/internal/wakatime"
)

var (
	reportDate      string
	reportYesterday bool
	reportFormat    string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Fetch and reconcile a day without writing anywhere",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportDate, "date", "", "Report a specific date (YYYY-MM-DD)")
	reportCmd.Flags().BoolVar(&reportYesterday, "yesterday", false, "Report yesterday")
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
}

// reportCategories is the print order for category rows.
var reportCategories = []model.Category{
	model.CategoryCoding,
	model.CategoryDevTools,
	model.CategoryPlanning,
	model.CategoryAIChat,
	model.CategoryScreen,
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	creds, err := config.LoadCredentials()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	loc, err := cfg.Location()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var day time.Time
	switch {
	case reportDate != "":
		day, err = timecalc.ParseDate(reportDate, loc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --date value %q: %v\n", reportDate, err)
			os.Exit(1)
		}
	case reportYesterday:
		day = timecalc.StartOfDay(time.Now().In(loc).AddDate(0, 0, -1))
	default:
		day = timecalc.StartOfDay(time.Now().In(loc))
	}

	ctx := context.Background()
	retries := uint64(cfg.RetryAttempts)
	notionClient := notion.NewClient(ctx, creds.NotionAPIKey, retries)

	sources := []pipeline.Source{
		wakatime.NewClient(creds.WakaTimeAPIKey, retries),
		activitywatch.NewAdapter(activitywatch.NewClient(cfg.AWServerURL, retries), cfg.AWHostname),
	}
	if creds.TaskDataSourceID != "" {
		sources = append(sources, notion.NewTaskSource(notionClient, creds.TaskDataSourceID))
	}

	runner := &pipeline.Runner{Sources: sources, SourceTimeout: cfg.SourceTimeout()}
	report := runner.RunDay(ctx, day, true)

	for _, src := range report.Sources {
		if src.Err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %s failed: %v\n", src.Name, src.Err)
		}
	}

	printAggregate(report.Aggregate, reportFormat)
	return nil
}

func printAggregate(agg model.DailyAggregate, format string) {
	switch format {
	case "csv":
		fmt.Println("category,minutes")
		for _, cat := range reportCategories {
			fmt.Printf("%s,%d\n", cat, agg.Minutes(cat))
		}
		fmt.Printf("active,%d\n", agg.ActiveMinutes())
	case "json":
		data, err := json.MarshalIndent(agg, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	default: // md
		fmt.Println(agg.Date)
		fmt.Println("--------------------------------")
		for _, cat := range reportCategories {
			fmt.Printf("%-14s%s\n", cat, timecalc.FormatMinutes(agg.Minutes(cat)))
			labels := make([]string, 0, len(agg.Breakdown[cat]))
			for label := range agg.Breakdown[cat] {
				labels = append(labels, label)
			}
			sort.Strings(labels)
			for _, label := range labels {
				fmt.Printf("  %-12s%s\n", label, timecalc.FormatMinutes(agg.Breakdown[cat][label]))
			}
		}
		fmt.Println("--------------------------------")
		fmt.Printf("%-14s%s\n", "active", timecalc.FormatMinutes(agg.ActiveMinutes()))
		if len(agg.TaskLinks) > 0 {
			fmt.Printf("%-14s%d\n", "tasks", len(agg.TaskLinks))
		}
	}
}
