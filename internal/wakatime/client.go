// Package wakatime adapts the WakaTime summaries API into activity records.
package wakatime

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/0xEljh/timesync/internal/model"
	"github.com/0xEljh/timesync/internal/pipeline"
	"github.com/0xEljh/timesync/internal/timecalc"
)

const defaultBaseURL = "https://wakatime.com/api/v1"

// Client fetches daily coding summaries from WakaTime.
type Client struct {
	// BaseURL of the WakaTime API; overridable for tests.
	BaseURL string
	// MaxRetries bounds retries of transient failures per request.
	MaxRetries uint64
	// RetryInterval is the initial backoff interval between retries.
	RetryInterval time.Duration

	apiKey     string
	httpClient *http.Client
}

// NewClient creates a WakaTime client authenticated with the given API key.
func NewClient(apiKey string, maxRetries uint64) *Client {
	return &Client{
		BaseURL:       defaultBaseURL,
		MaxRetries:    maxRetries,
		RetryInterval: 500 * time.Millisecond,
		apiKey:        apiKey,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Name identifies this source in run reports.
func (c *Client) Name() string { return "wakatime" }

// summariesResponse is the WakaTime /users/current/summaries payload, reduced
// to the fields the sync needs.
type summariesResponse struct {
	Data []struct {
		GrandTotal struct {
			TotalSeconds float64 `json:"total_seconds"`
		} `json:"grand_total"`
		Categories []struct {
			Name         string  `json:"name"`
			TotalSeconds float64 `json:"total_seconds"`
		} `json:"categories"`
		Range struct {
			Date string `json:"date"`
		} `json:"range"`
	} `json:"data"`
}

// Fetch returns the coding-time records for the journal day starting the
// window. WakaTime summaries are already day-granular in the account
// timezone, so the window maps to a single start/end date. An empty data
// array (day not yet tracked) is a valid empty result.
func (c *Client) Fetch(ctx context.Context, window timecalc.Window) ([]model.ActivityRecord, error) {
	date := timecalc.DateString(window.Start)

	endpoint := fmt.Sprintf("%s/users/current/summaries?start=%s&end=%s&api_key=%s",
		c.BaseURL, url.QueryEscape(date), url.QueryEscape(date), url.QueryEscape(c.apiKey))

	var resp summariesResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	var records []model.ActivityRecord
	for _, summary := range resp.Data {
		if summary.Range.Date != "" && summary.Range.Date != date {
			continue
		}
		if len(summary.Categories) > 0 {
			// Per-category breakdown: Coding, Debugging, Code Reviewing, …
			// All count toward the coding bucket; the label keeps the split.
			for _, cat := range summary.Categories {
				if cat.TotalSeconds <= 0 {
					continue
				}
				records = append(records, model.ActivityRecord{
					Source:     model.SourceCoding,
					ExternalID: fmt.Sprintf("wakatime-%s-%s", date, cat.Name),
					Category:   model.CategoryCoding,
					Label:      cat.Name,
					Start:      window.Start,
					End:        window.Start.Add(time.Duration(cat.TotalSeconds * float64(time.Second))),
					Duration:   cat.TotalSeconds,
				})
			}
			continue
		}
		if summary.GrandTotal.TotalSeconds <= 0 {
			continue
		}
		records = append(records, model.ActivityRecord{
			Source:     model.SourceCoding,
			ExternalID: "wakatime-" + date,
			Category:   model.CategoryCoding,
			Label:      "wakatime",
			Start:      window.Start,
			End:        window.Start.Add(time.Duration(summary.GrandTotal.TotalSeconds * float64(time.Second))),
			Duration:   summary.GrandTotal.TotalSeconds,
		})
	}
	return records, nil
}

// getJSON performs a GET with bounded exponential backoff on transient
// failures. 5xx and 429 responses and transport errors are retried; other
// non-200 responses are permanent.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: wakatime request failed: %v", pipeline.ErrSourceUnavailable, err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("%w: reading wakatime response: %v", pipeline.ErrSourceUnavailable, err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: wakatime API error %d", pipeline.ErrSourceUnavailable, resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("wakatime API error %d: %s", resp.StatusCode, string(body)))
		}

		if err := json.Unmarshal(body, out); err != nil {
			return backoff.Permanent(fmt.Errorf("%w: decoding wakatime response: %v", pipeline.ErrSourceDataInvalid, err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.RetryInterval
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, c.MaxRetries), ctx))
}
