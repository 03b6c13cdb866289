// Package activitywatch adapts a local ActivityWatch server into activity
// records: window, web and AFK watcher buckets are fetched, deduplicated,
// clipped to non-AFK time and classified into time-accounting categories.
package activitywatch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/0xEljh/timesync/internal/pipeline"
	"github.com/0xEljh/timesync/internal/timecalc"
)

// eventPageLimit bounds a single events request; larger windows page.
const eventPageLimit = 1000

// Bucket is an ActivityWatch bucket descriptor.
type Bucket struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Client   string `json:"client"`
	Hostname string `json:"hostname"`
}

// EventData carries the watcher-specific payload of an event.
type EventData struct {
	App    string `json:"app,omitempty"`
	Title  string `json:"title,omitempty"`
	URL    string `json:"url,omitempty"`
	Status string `json:"status,omitempty"`
}

// Event is one ActivityWatch event: a timestamped window with an active
// duration in seconds.
type Event struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Duration  float64   `json:"duration"`
	Data      EventData `json:"data"`
}

// End returns the event's end time (timestamp plus duration).
func (e Event) End() time.Time {
	return e.Timestamp.Add(time.Duration(e.Duration * float64(time.Second)))
}

// Client talks to the ActivityWatch REST API.
type Client struct {
	// BaseURL of the server, e.g. "http://localhost:5600".
	BaseURL string
	// MaxRetries bounds retries of transient failures per request.
	MaxRetries uint64
	// RetryInterval is the initial backoff interval between retries.
	RetryInterval time.Duration

	httpClient *http.Client
}

// NewClient creates a client for the ActivityWatch server at baseURL.
func NewClient(baseURL string, maxRetries uint64) *Client {
	return &Client{
		BaseURL:       baseURL,
		MaxRetries:    maxRetries,
		RetryInterval: 500 * time.Millisecond,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Buckets lists all buckets known to the server, keyed by bucket ID.
func (c *Client) Buckets(ctx context.Context) (map[string]Bucket, error) {
	var buckets map[string]Bucket
	if err := c.getJSON(ctx, c.BaseURL+"/api/0/buckets", &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

// Events fetches all events of a bucket inside the window, paging backwards
// through the server's newest-first ordering until the window is exhausted.
// Pages may overlap at the boundary; callers deduplicate.
func (c *Client) Events(ctx context.Context, bucketID string, window timecalc.Window) ([]Event, error) {
	var all []Event
	end := window.End

	for {
		endpoint := fmt.Sprintf("%s/api/0/buckets/%s/events?start=%s&end=%s&limit=%d",
			c.BaseURL,
			url.PathEscape(bucketID),
			url.QueryEscape(window.Start.Format(time.RFC3339)),
			url.QueryEscape(end.Format(time.RFC3339)),
			eventPageLimit,
		)

		var page []Event
		if err := c.getJSON(ctx, endpoint, &page); err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < eventPageLimit {
			return all, nil
		}

		oldest := page[0].Timestamp
		for _, ev := range page[1:] {
			if ev.Timestamp.Before(oldest) {
				oldest = ev.Timestamp
			}
		}
		if !oldest.Before(end) {
			// No progress; identical timestamps filled the whole page.
			return all, nil
		}
		end = oldest
	}
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: activitywatch request failed: %v", pipeline.ErrSourceUnavailable, err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("%w: reading activitywatch response: %v", pipeline.ErrSourceUnavailable, err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: activitywatch API error %d", pipeline.ErrSourceUnavailable, resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("activitywatch API error %d: %s", resp.StatusCode, string(body)))
		}

		if err := json.Unmarshal(body, out); err != nil {
			return backoff.Permanent(fmt.Errorf("%w: decoding activitywatch response: %v", pipeline.ErrSourceDataInvalid, err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.RetryInterval
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, c.MaxRetries), ctx))
}
