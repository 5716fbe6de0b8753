// Package generator requests replacement structural elements from the text
// generation service.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/danhoward/aio-engine/pkg/types"
)

const (
	defaultTimeout = 2 * time.Minute
	excerptLimit   = 2000
)

// Client calls the generation service over HTTP. The service may omit
// elements it fails to generate; each returned element is independently
// usable.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// New creates a generator client from config.
func New(cfg types.GeneratorConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("generator baseUrl required")
	}

	timeout := defaultTimeout
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parsing generator timeout: %w", err)
		}
		timeout = d
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type generateRequest struct {
	Title           string   `json:"title"`
	ContentExcerpt  string   `json:"contentExcerpt"`
	MissingElements []string `json:"missingElements"`
	Model           string   `json:"model,omitempty"`
}

// GenerateElements asks the service to produce the missing structural
// elements for a page. The content excerpt is truncated so prompts stay
// bounded regardless of page length.
func (c *Client) GenerateElements(ctx context.Context, title, content string, missing []string) (types.GenerationResult, error) {
	excerpt := truncateExcerpt(content)

	body, err := json.Marshal(generateRequest{
		Title:           title,
		ContentExcerpt:  excerpt,
		MissingElements: missing,
		Model:           c.model,
	})
	if err != nil {
		return types.GenerationResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return types.GenerationResult{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.GenerationResult{}, fmt.Errorf("generation request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.GenerationResult{}, fmt.Errorf("reading generation response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return types.GenerationResult{}, fmt.Errorf("generator returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result types.GenerationResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return types.GenerationResult{}, fmt.Errorf("decoding generation response: %w", err)
	}

	// Drop elements with no usable payload so partial failures never corrupt
	// the output.
	kept := result.Elements[:0]
	for _, el := range result.Elements {
		if strings.TrimSpace(el.Markup) == "" && strings.TrimSpace(el.Text) == "" {
			continue
		}
		kept = append(kept, el)
	}
	result.Elements = kept
	return result, nil
}

// truncateExcerpt caps the excerpt at excerptLimit bytes, backing up to the
// previous rune boundary so a multi-byte character is never cut in half.
func truncateExcerpt(content string) string {
	if len(content) <= excerptLimit {
		return content
	}
	cut := excerptLimit
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}
