// Package api talks to the Al Adhan prayer times API and adapts it to the
// prayer engine interface.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.aladhan.com/v1"

// Query holds the parameters that select a set of timings.
type Query struct {
	Latitude  float64
	Longitude float64
	// Method is the Al Adhan method id. Negative leaves it to the API.
	Method int
	// School is 0 for Shafi and 1 for Hanafi. Negative leaves it to the API.
	School int
	// Timezone is an IANA zone name; empty leaves it to the API.
	Timezone string
}

func (q Query) values() url.Values {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", q.Latitude))
	params.Set("longitude", fmt.Sprintf("%f", q.Longitude))
	if q.Method >= 0 {
		params.Set("method", fmt.Sprintf("%d", q.Method))
	}
	if q.School >= 0 {
		params.Set("school", fmt.Sprintf("%d", q.School))
	}
	if q.Timezone != "" {
		params.Set("timezonestring", q.Timezone)
	}
	return params
}

// Client communicates with the Al Adhan prayer times API.
type Client struct {
	httpClient *http.Client
	// BaseURL is the API base URL. Defaults to the Al Adhan API.
	// Exported for testing with httptest.
	BaseURL string
}

// NewClient creates a new API client with sensible defaults.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		BaseURL: defaultBaseURL,
	}
}

// FetchByCoordinates fetches prayer times for one date.
func (c *Client) FetchByCoordinates(ctx context.Context, date time.Time, q Query) (*Response, error) {
	endpoint := fmt.Sprintf("%s/timings/%s", c.BaseURL, date.Format("02-01-2006"))

	var apiResp Response
	if err := c.doRequest(ctx, endpoint, q.values(), &apiResp); err != nil {
		return nil, err
	}
	if apiResp.Code != 200 {
		return nil, fmt.Errorf("API error: code=%d status=%s", apiResp.Code, apiResp.Status)
	}
	return &apiResp, nil
}

// FetchCalendarByCoordinates fetches prayer times for every day of a month.
func (c *Client) FetchCalendarByCoordinates(ctx context.Context, year int, month time.Month, q Query) (*CalendarResponse, error) {
	endpoint := fmt.Sprintf("%s/calendar/%d/%d", c.BaseURL, year, int(month))

	var apiResp CalendarResponse
	if err := c.doRequest(ctx, endpoint, q.values(), &apiResp); err != nil {
		return nil, err
	}
	if apiResp.Code != 200 {
		return nil, fmt.Errorf("API error: code=%d status=%s", apiResp.Code, apiResp.Status)
	}
	return &apiResp, nil
}

func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build API request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode API response: %w", err)
	}
	return nil
}
