package pipeline

import (
	"context"
	"time"

	"github.com/0xEljh/timesync/internal/model"
	"github.com/0xEljh/timesync/internal/reconcile"
	"github.com/0xEljh/timesync/internal/timecalc"
)

// Source fetches a window of activity records from one external service.
// Implementations are read-only, page until the window is exhausted, and
// return ErrSourceUnavailable (wrapped) once their retry budget is spent.
// An empty slice is a valid result, not an error.
type Source interface {
	Name() string
	Fetch(ctx context.Context, window timecalc.Window) ([]model.ActivityRecord, error)
}

// Sink upserts a daily aggregate into the destination record store, keyed by
// date so repeated calls with the same aggregate are idempotent.
type Sink interface {
	Upsert(ctx context.Context, agg model.DailyAggregate) (string, error)
}

// Exporter writes the local analytics snapshot for an aggregate and returns
// the file path.
type Exporter interface {
	Write(agg model.DailyAggregate) (string, error)
}

// Runner owns one sync invocation. All collaborators and policy values are
// injected at construction; nothing is read from the environment mid-run.
type Runner struct {
	Sources       []Source
	Sink          Sink
	Exporter      Exporter
	SourceTimeout time.Duration
}

// SourceReport is the per-source outcome of a run.
type SourceReport struct {
	Name    string
	Records int
	Err     error
}

// RunReport summarises a single day's sync for the CLI to print.
type RunReport struct {
	Date       string
	Sources    []SourceReport
	Aggregate  model.DailyAggregate
	DryRun     bool
	PageID     string
	SinkErr    error
	ExportPath string
	ExportErr  error
}

// Succeeded reports whether the aggregate reached the remote store (always
// true for dry runs, which never attempt the write).
func (r RunReport) Succeeded() bool {
	return r.DryRun || r.SinkErr == nil
}

// Degraded reports whether any source failed, meaning the aggregate was built
// from partial data.
func (r RunReport) Degraded() bool {
	for _, s := range r.Sources {
		if s.Err != nil {
			return true
		}
	}
	return false
}

// RunDay executes one pass for the journal day containing `day`:
// fetch → reconcile → upsert → export.
//
// A failed source is recorded and the run continues with the remaining
// sources; a partial aggregate beats dropping the day. A sink failure aborts
// the run before the export. An export failure after a successful upsert is
// recorded but does not fail the run.
func (r *Runner) RunDay(ctx context.Context, day time.Time, dryRun bool) RunReport {
	window := timecalc.DayWindow(day)
	report := RunReport{Date: timecalc.DateString(day), DryRun: dryRun}

	var records []model.ActivityRecord
	for _, src := range r.Sources {
		if err := ctx.Err(); err != nil {
			report.Sources = append(report.Sources, SourceReport{Name: src.Name(), Err: err})
			continue
		}

		fetchCtx := ctx
		cancel := func() {}
		if r.SourceTimeout > 0 {
			fetchCtx, cancel = context.WithTimeout(ctx, r.SourceTimeout)
		}
		recs, err := src.Fetch(fetchCtx, window)
		cancel()

		report.Sources = append(report.Sources, SourceReport{
			Name:    src.Name(),
			Records: len(recs),
			Err:     err,
		})
		if err != nil {
			continue
		}
		records = append(records, recs...)
	}

	report.Aggregate = reconcile.Reconcile(records, window.Start)

	if dryRun {
		return report
	}
	if err := ctx.Err(); err != nil {
		// Cancelled before the sink: the remote store is untouched.
		report.SinkErr = err
		return report
	}

	report.PageID, report.SinkErr = r.Sink.Upsert(ctx, report.Aggregate)
	if report.SinkErr != nil {
		return report
	}

	if r.Exporter != nil {
		report.ExportPath, report.ExportErr = r.Exporter.Write(report.Aggregate)
	}
	return report
}
