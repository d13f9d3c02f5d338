// Package trustcenter looks up public trust-center pages for client
// domains in an external registry. The sync engine treats every failure
// here as non-fatal enrichment noise.
package trustcenter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// defaultTimeout bounds a single lookup so a hung registry cannot stall
// a whole sync run.
const defaultTimeout = 5 * time.Second

// Result is the registry's answer for one domain.
type Result struct {
	Found          bool   `json:"found"`
	TrustCenterURL string `json:"trust_center_url"`
	Platform       string `json:"platform"`
}

// Client queries the trust-center registry.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// NewClient creates a registry client. baseURL is the registry root;
// httpClient may be nil.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		timeout:    defaultTimeout,
		logger:     logger,
	}
}

// Lookup queries the registry for a website domain. The call is bounded
// by the client's per-call timeout regardless of the parent context.
func (c *Client) Lookup(ctx context.Context, domain string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := fmt.Sprintf("%s/api/v1/lookup?domain=%s", c.baseURL, url.QueryEscape(domain))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("trustcenter: creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trustcenter: lookup %s: %w", domain, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trustcenter: lookup %s: HTTP %d", domain, resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("trustcenter: decoding lookup response: %w", err)
	}

	c.logger.Debug("trust center lookup",
		slog.String("domain", domain),
		slog.Bool("found", result.Found),
	)

	return &result, nil
}
