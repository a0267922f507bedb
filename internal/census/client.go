// Package census talks to the Census Bureau: the ACS 5-year API for
// block-group demographics and the TIGER/Line file server for geometry.
package census

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/politech/processor/internal/progress"
)

const defaultBaseURL = "https://api.census.gov/data"

// Client wraps the ACS API. Requests are rate limited to stay friendly with
// the per-key quota.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
}

// NewClient builds a client. apiKey may not be empty.
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("CENSUS_API_KEY is missing; set it in the environment or .env.local")
	}
	return &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(4), 2),
	}, nil
}

// BlockGroups fetches ACS 5-year variables for every block group in one
// county. The response comes back as a header row plus value rows; the
// returned maps are keyed by header name.
func (c *Client) BlockGroups(ctx context.Context, year int, variables []string, stateFIPS, countyFIPS string) ([]map[string]string, error) {
	get := "GEO_ID"
	for _, v := range variables {
		get += "," + v
	}

	params := url.Values{}
	params.Set("get", get)
	params.Set("for", "block group:*")
	params.Set("in", fmt.Sprintf("state:%s county:%s", stateFIPS, countyFIPS))
	params.Set("key", c.apiKey)

	endpoint := fmt.Sprintf("%s/%d/acs/acs5", c.baseURL, year)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	progress.LogRequest("census", "GET", endpoint, map[string]interface{}{
		"state": stateFIPS, "county": countyFIPS, "vars": len(variables),
	})
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build ACS request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ACS request for county %s: %w", countyFIPS, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ACS request for county %s: status %d: %s", countyFIPS, resp.StatusCode, string(body))
	}

	var table [][]string
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return nil, fmt.Errorf("decode ACS response for county %s: %w", countyFIPS, err)
	}
	if len(table) < 1 {
		return nil, fmt.Errorf("empty ACS response for county %s", countyFIPS)
	}

	header := table[0]
	rows := make([]map[string]string, 0, len(table)-1)
	for _, raw := range table[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(raw) {
				row[col] = raw[i]
			}
		}
		rows = append(rows, row)
	}

	progress.LogResponse("census", resp.StatusCode, time.Since(start), len(rows))
	return rows, nil
}
