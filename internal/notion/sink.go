package notion

import (
	"context"
	"errors"
	"fmt"

	"github.com/0xEljh/timesync/internal/model"
	"github.com/0xEljh/timesync/internal/pipeline"
)

// Sink upserts one row per day into the time-accounting data source.
type Sink struct {
	Client       *Client
	DataSourceID string
}

// NewSink creates the time-accounting sink for a data source ID.
func NewSink(client *Client, dataSourceID string) *Sink {
	return &Sink{Client: client, DataSourceID: dataSourceID}
}

// Upsert writes the aggregate for its date: the existing row is updated in
// place, otherwise a new one is created. Properties are replaced wholesale so
// a re-run with identical input leaves the row byte-for-byte unchanged.
func (s *Sink) Upsert(ctx context.Context, agg model.DailyAggregate) (string, error) {
	filter := map[string]any{
		"property": "Date",
		"date":     map[string]any{"equals": agg.Date},
	}
	pages, err := s.Client.QueryDataSource(ctx, s.DataSourceID, filter)
	if err != nil {
		return "", sinkError("querying day row", err)
	}

	props := s.properties(agg)

	if len(pages) > 0 {
		pageID := pages[0].ID
		if err := s.Client.UpdatePage(ctx, pageID, props); err != nil {
			return "", sinkError("updating day row", err)
		}
		return pageID, nil
	}

	props["Name"] = map[string]any{
		"title": []any{map[string]any{"text": map[string]any{"content": agg.Date}}},
	}
	props["Date"] = map[string]any{"date": map[string]any{"start": agg.Date}}
	pageID, err := s.Client.CreatePage(ctx, s.DataSourceID, props)
	if err != nil {
		return "", sinkError("creating day row", err)
	}
	return pageID, nil
}

// properties maps the aggregate onto the data source's columns. The Tasks
// relation is replaced in full; its order follows the aggregate's sorted
// task links.
func (s *Sink) properties(agg model.DailyAggregate) map[string]any {
	relations := make([]any, 0, len(agg.TaskLinks))
	for _, ref := range agg.TaskLinks {
		relations = append(relations, map[string]any{"id": ref})
	}

	return map[string]any{
		"Minutes Coding":    map[string]any{"number": agg.Minutes(model.CategoryCoding)},
		"Minutes Dev Tools": map[string]any{"number": agg.Minutes(model.CategoryDevTools)},
		"Minutes Planning":  map[string]any{"number": agg.Minutes(model.CategoryPlanning)},
		"Minutes AI Chat":   map[string]any{"number": agg.Minutes(model.CategoryAIChat)},
		"Minutes Active":    map[string]any{"number": agg.ActiveMinutes()},
		"Tasks":             map[string]any{"relation": relations},
	}
}

func sinkError(action string, err error) error {
	if errors.Is(err, errTransient) {
		return fmt.Errorf("%w: %s: %v", pipeline.ErrSinkUnavailable, action, err)
	}
	return fmt.Errorf("%w: %s: %v", pipeline.ErrSinkWriteFailed, action, err)
}
