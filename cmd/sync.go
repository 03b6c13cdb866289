package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/0xEljh/timesync/internal/activitywatch"
	"github.com/0xEljh/timesync/internal/config"
	"github.com/0xEljh/timesync/internal/export"
	"github.com/0xEljh/timesync/internal/model"
	"github.com/0xEljh/timesync/internal/notion"
	"github.com/0xEljh/timesync/internal/pipeline"
	"github.com/0xEljh/timesync/internal/timecalc"
	"github.com/0xEljh/timesync/internal/wakatime"
)

var (
	syncDate      string
	syncYesterday bool
	syncDryRun    bool
	syncOutput    string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch, reconcile and upsert a day of activity",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncDate, "date", "", "Sync a specific date (YYYY-MM-DD)")
	syncCmd.Flags().BoolVar(&syncYesterday, "yesterday", false, "Sync yesterday only")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Fetch and reconcile without writing to Notion or the export dir")
	syncCmd.Flags().StringVar(&syncOutput, "output", "", "Override the export directory for this run")
}

// datesToSync resolves which journal days a run covers. With no flags, today
// is synced — and yesterday too while the current hour is still inside the
// freeze window, so a run shortly after midnight finalises the previous day.
func datesToSync(now time.Time, freezeHours int, date string, yesterday bool, loc *time.Location) ([]time.Time, error) {
	if date != "" {
		d, err := timecalc.ParseDate(date, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid --date value %q: %w", date, err)
		}
		return []time.Time{d}, nil
	}

	local := now.In(loc)
	if yesterday {
		return []time.Time{timecalc.StartOfDay(local.AddDate(0, 0, -1))}, nil
	}

	days := []time.Time{timecalc.StartOfDay(local)}
	if local.Hour() < freezeHours {
		days = append(days, timecalc.StartOfDay(local.AddDate(0, 0, -1)))
	}
	return days, nil
}

func runSync(cmd *cobra.Command, args []string) error {
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

	days, err := datesToSync(time.Now(), cfg.FreezeHours, syncDate, syncYesterday, loc)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.Background()
	retries := uint64(cfg.RetryAttempts)

	awClient := activitywatch.NewClient(cfg.AWServerURL, retries)
	notionClient := notion.NewClient(ctx, creds.NotionAPIKey, retries)

	sources := []pipeline.Source{
		wakatime.NewClient(creds.WakaTimeAPIKey, retries),
		activitywatch.NewAdapter(awClient, cfg.AWHostname),
	}
	if creds.TaskDataSourceID != "" {
		sources = append(sources, notion.NewTaskSource(notionClient, creds.TaskDataSourceID))
	}

	exportDir := cfg.ExportDir
	if syncOutput != "" {
		exportDir = syncOutput
	}

	runner := &pipeline.Runner{
		Sources:       sources,
		Sink:          notion.NewSink(notionClient, creds.TimeDataSourceID),
		Exporter:      export.NewWriter(exportDir),
		SourceTimeout: cfg.SourceTimeout(),
	}

	failed := false
	for _, day := range days {
		report := runner.RunDay(ctx, day, syncDryRun)
		printRunReport(report)
		if !report.Succeeded() {
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
	return nil
}

func printRunReport(report pipeline.RunReport) {
	tag := ""
	if report.DryRun {
		tag = " [dry-run]"
	}
	fmt.Printf("%s%s\n", report.Date, tag)

	for _, src := range report.Sources {
		if src.Err != nil {
			fmt.Printf("  %-14s FAILED: %v\n", src.Name, src.Err)
			continue
		}
		fmt.Printf("  %-14s %d records\n", src.Name, src.Records)
	}

	agg := report.Aggregate
	fmt.Printf("  coding %s · dev tools %s · planning %s · ai chat %s · screen %s\n",
		timecalc.FormatMinutes(agg.Minutes(model.CategoryCoding)),
		timecalc.FormatMinutes(agg.Minutes(model.CategoryDevTools)),
		timecalc.FormatMinutes(agg.Minutes(model.CategoryPlanning)),
		timecalc.FormatMinutes(agg.Minutes(model.CategoryAIChat)),
		timecalc.FormatMinutes(agg.Minutes(model.CategoryScreen)))
	if len(agg.TaskLinks) > 0 {
		fmt.Printf("  %d completed tasks linked\n", len(agg.TaskLinks))
	}

	switch {
	case report.DryRun:
	case report.SinkErr != nil:
		fmt.Fprintf(os.Stderr, "  upsert failed: %v\n", report.SinkErr)
	default:
		fmt.Printf("  upserted page %s\n", report.PageID)
	}

	if report.ExportErr != nil {
		fmt.Fprintf(os.Stderr, "  export failed: %v\n", report.ExportErr)
	} else if report.ExportPath != "" {
		fmt.Printf("  exported %s\n", report.ExportPath)
	}
}
