// Package searchconsole fetches page-level search metrics from the metrics
// API collaborator.
package searchconsole

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/danhoward/aio-engine/pkg/types"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultDataLag    = 3
	defaultWindowDays = 28
)

// Client talks to the search metrics API. Search data arrives with a lag of a
// few days, so query windows always end in the past.
type Client struct {
	baseURL    string
	token      string
	dataLag    int
	windowDays int
	httpClient *http.Client
}

// New creates a metrics client from config.
func New(cfg types.MetricsAPIConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("metrics baseUrl required")
	}

	timeout := defaultTimeout
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parsing metrics timeout: %w", err)
		}
		timeout = d
	}

	dataLag := cfg.DataLagDays
	if dataLag <= 0 {
		dataLag = defaultDataLag
	}
	windowDays := cfg.WindowDays
	if windowDays <= 0 {
		windowDays = defaultWindowDays
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		dataLag:    dataLag,
		windowDays: windowDays,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Window returns the default reporting window ending dataLag days before now.
func (c *Client) Window(now time.Time) types.DateRange {
	end := now.AddDate(0, 0, -c.dataLag)
	start := end.AddDate(0, 0, -c.windowDays)
	return types.DateRange{
		Start: start.Format("2006-01-02"),
		End:   end.Format("2006-01-02"),
	}
}

// GetPageMetrics returns one page's metrics over the date range, or nil when
// the API has no data for that page.
func (c *Client) GetPageMetrics(ctx context.Context, pageURL string, r types.DateRange) (*types.PageMetrics, error) {
	q := url.Values{}
	q.Set("page", pageURL)
	q.Set("start", r.Start)
	q.Set("end", r.End)

	var out struct {
		Rows []types.PageRow `json:"rows"`
	}
	if err := c.get(ctx, "/metrics/page?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	if len(out.Rows) == 0 {
		return nil, nil
	}
	return &out.Rows[0].PageMetrics, nil
}

// GetAllPages returns metrics for every page with impressions in the range,
// highest volume first.
func (c *Client) GetAllPages(ctx context.Context, r types.DateRange) ([]types.PageRow, error) {
	q := url.Values{}
	q.Set("start", r.Start)
	q.Set("end", r.End)

	var out struct {
		Rows []types.PageRow `json:"rows"`
	}
	if err := c.get(ctx, "/metrics/pages?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("metrics request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading metrics response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("metrics API returned status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding metrics response: %w", err)
	}
	return nil
}
