// Package wordpress reads and writes page content through the WordPress REST
// API.
package wordpress

import (
	"bytes"
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

const defaultTimeout = 30 * time.Second

// Client talks to a WordPress site using application-password basic auth.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

// New creates a WordPress client from config.
func New(cfg types.CMSConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("cms baseUrl required")
	}
	if cfg.Username == "" || cfg.AppPassword == "" {
		return nil, fmt.Errorf("cms username and appPassword required")
	}

	timeout := defaultTimeout
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parsing cms timeout: %w", err)
		}
		timeout = d
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		username:   cfg.Username,
		password:   cfg.AppPassword,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type wpPost struct {
	ID      int64  `json:"id"`
	Slug    string `json:"slug"`
	Title   wpText `json:"title"`
	Content struct {
		Rendered string `json:"rendered"`
		Raw      string `json:"raw,omitempty"`
	} `json:"content"`
}

type wpText struct {
	Rendered string `json:"rendered"`
}

func (p wpPost) toPage() *types.Page {
	return &types.Page{
		ID:         p.ID,
		Slug:       p.Slug,
		Title:      p.Title.Rendered,
		Content:    p.Content.Rendered,
		RawContent: p.Content.Raw,
	}
}

// FetchBySlug returns the published post with the given slug, or nil if no
// post matches.
func (c *Client) FetchBySlug(ctx context.Context, slug string) (*types.Page, error) {
	q := url.Values{}
	q.Set("slug", slug)
	q.Set("context", "edit")

	var posts []wpPost
	if err := c.do(ctx, http.MethodGet, "/wp-json/wp/v2/posts?"+q.Encode(), nil, &posts); err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, nil
	}
	return posts[0].toPage(), nil
}

// FetchByID returns one post by its CMS id.
func (c *Client) FetchByID(ctx context.Context, id int64) (*types.Page, error) {
	var post wpPost
	path := fmt.Sprintf("/wp-json/wp/v2/posts/%d?context=edit", id)
	if err := c.do(ctx, http.MethodGet, path, nil, &post); err != nil {
		return nil, err
	}
	return post.toPage(), nil
}

// UpdateContent replaces a post's content.
func (c *Client) UpdateContent(ctx context.Context, id int64, content string) error {
	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return err
	}
	path := fmt.Sprintf("/wp-json/wp/v2/posts/%d", id)
	return c.do(ctx, http.MethodPost, path, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, v any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cms request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading cms response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("cms returned status %d: %s", resp.StatusCode, string(respBody))
	}
	if v != nil {
		if err := json.Unmarshal(respBody, v); err != nil {
			return fmt.Errorf("decoding cms response: %w", err)
		}
	}
	return nil
}
