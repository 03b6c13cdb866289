// Package notion holds the Notion API client, the task-database source and
// the time-accounting upsert sink.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/oauth2"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	// notionVersion pins the data-source era of the API; the time-accounting
	// and task databases are addressed by data_source_id.
	notionVersion = "2025-09-03"
)

// errTransient marks retryable failures (5xx, 429, transport). Package-level
// callers translate it into the pipeline's source/sink taxonomy.
var errTransient = errors.New("notion transient error")

// Client is an authenticated Notion API client.
type Client struct {
	// BaseURL of the Notion API; overridable for tests.
	BaseURL string
	// MaxRetries bounds retries of transient failures per request.
	MaxRetries uint64
	// RetryInterval is the initial backoff interval between retries.
	RetryInterval time.Duration

	httpClient *http.Client
}

// NewClient creates a Notion client carrying the integration secret as a
// Bearer token on every request.
func NewClient(ctx context.Context, apiKey string, maxRetries uint64) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: "Bearer"})
	return &Client{
		BaseURL:       defaultBaseURL,
		MaxRetries:    maxRetries,
		RetryInterval: 500 * time.Millisecond,
		httpClient:    oauth2.NewClient(ctx, ts),
	}
}

// Page is a Notion page reduced to what the sync reads.
type Page struct {
	ID         string                     `json:"id"`
	Properties map[string]json.RawMessage `json:"properties"`
}

// Title extracts the plain-text content of a title property, or "" when the
// property is absent or empty.
func (p Page) Title(property string) string {
	raw, ok := p.Properties[property]
	if !ok {
		return ""
	}
	var prop struct {
		Title []struct {
			PlainText string `json:"plain_text"`
		} `json:"title"`
	}
	if err := json.Unmarshal(raw, &prop); err != nil || len(prop.Title) == 0 {
		return ""
	}
	return prop.Title[0].PlainText
}

// queryResponse is a paged data-source query result.
type queryResponse struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// QueryDataSource runs a filtered query against a data source, following
// pagination cursors until exhausted.
func (c *Client) QueryDataSource(ctx context.Context, dataSourceID string, filter any) ([]Page, error) {
	var all []Page
	cursor := ""

	for {
		body := map[string]any{}
		if filter != nil {
			body["filter"] = filter
		}
		if cursor != "" {
			body["start_cursor"] = cursor
		}

		var page queryResponse
		endpoint := fmt.Sprintf("%s/data_sources/%s/query", c.BaseURL, dataSourceID)
		if err := c.do(ctx, http.MethodPost, endpoint, body, &page); err != nil {
			return nil, err
		}

		all = append(all, page.Results...)
		if !page.HasMore || page.NextCursor == "" {
			return all, nil
		}
		cursor = page.NextCursor
	}
}

// UpdatePage overwrites properties of an existing page.
func (c *Client) UpdatePage(ctx context.Context, pageID string, properties map[string]any) error {
	endpoint := fmt.Sprintf("%s/pages/%s", c.BaseURL, pageID)
	return c.do(ctx, http.MethodPatch, endpoint, map[string]any{"properties": properties}, nil)
}

// CreatePage creates a page inside a data source and returns its ID.
func (c *Client) CreatePage(ctx context.Context, dataSourceID string, properties map[string]any) (string, error) {
	body := map[string]any{
		"parent":     map[string]any{"type": "data_source_id", "data_source_id": dataSourceID},
		"properties": properties,
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, c.BaseURL+"/pages", body, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// do performs one API call with bounded exponential backoff on transient
// failures. Non-2xx responses other than 429/5xx are permanent.
func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding notion request: %w", err)
	}

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Notion-Version", notionVersion)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", errTransient, err)
		}
		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("%w: reading response: %v", errTransient, err)
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: notion API error %d", errTransient, resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("notion API error %d: %s", resp.StatusCode, string(respBody)))
		}

		if out == nil {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return backoff.Permanent(fmt.Errorf("decoding notion response: %w", err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.RetryInterval
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, c.MaxRetries), ctx))
}
