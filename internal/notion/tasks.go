package notion

import (
	"context"
	"errors"
	"fmt"

	"github.com/0xEljh/timesync/internal/model"
	"github.com/0xEljh/timesync/internal/pipeline"
	"github.com/0xEljh/timesync/internal/timecalc"
)

// completedStatuses are the task states that count as worked on for a day.
var completedStatuses = []string{"Done", "Delegated", "DNF"}

// TaskSource reads completed tasks for a day from the task data source.
type TaskSource struct {
	Client       *Client
	DataSourceID string
}

// NewTaskSource creates the task source for a data source ID.
func NewTaskSource(client *Client, dataSourceID string) *TaskSource {
	return &TaskSource{Client: client, DataSourceID: dataSourceID}
}

// Name implements pipeline.Source.
func (s *TaskSource) Name() string {
	return "notion-tasks"
}

// Fetch returns one zero-duration record per task dated on the window's day
// and in a completed status. The page ID doubles as external ID and task
// reference for the relation written by the sink.
func (s *TaskSource) Fetch(ctx context.Context, window timecalc.Window) ([]model.ActivityRecord, error) {
	date := timecalc.DateString(window.Start)
	filter := map[string]any{
		"and": []any{
			map[string]any{"property": "Date", "date": map[string]any{"on_or_after": date}},
			map[string]any{"property": "Date", "date": map[string]any{"on_or_before": date}},
			statusFilter(completedStatuses),
		},
	}

	pages, err := s.Client.QueryDataSource(ctx, s.DataSourceID, filter)
	if err != nil {
		if errors.Is(err, errTransient) {
			return nil, fmt.Errorf("%w: querying tasks: %v", pipeline.ErrSourceUnavailable, err)
		}
		return nil, fmt.Errorf("querying tasks: %w", err)
	}

	records := make([]model.ActivityRecord, 0, len(pages))
	for _, page := range pages {
		label := page.Title("Name")
		if label == "" {
			label = "Untitled"
		}
		// Task records carry no duration or category; they only contribute
		// the page link the sink writes into the Tasks relation.
		records = append(records, model.ActivityRecord{
			Source:     model.SourceTask,
			ExternalID: page.ID,
			Label:      label,
			Start:      window.Start,
			End:        window.Start,
			Duration:   0,
			TaskRef:    page.ID,
		})
	}
	return records, nil
}

func statusFilter(statuses []string) map[string]any {
	or := make([]any, 0, len(statuses))
	for _, status := range statuses {
		or = append(or, map[string]any{
			"property": "Status",
			"status":   map[string]any{"equals": status},
		})
	}
	return map[string]any{"or": or}
}
