// Package upstream is the authenticated client for the Fitbit data API.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"
)

// DefaultBaseURL is the Fitbit Web API version 1 root.
const DefaultBaseURL = "https://api.fitbit.com/1"

const requestTimeout = 15 * time.Second

// RequestError reports a non-2xx response from the Fitbit data API.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("fitbit api request failed: %d - %s", e.StatusCode, e.Body)
}

// Client issues authenticated reads against the Fitbit data API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a data API client. An empty baseURL selects the Fitbit
// production endpoint; tests point it at a stub server.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
	}
}

// Request issues an authenticated GET to a Fitbit endpoint path (e.g.
// "/user/-/profile.json") and returns the raw JSON body. The body is passed
// through to callers unmodified.
func (c *Client) Request(ctx context.Context, accessToken, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// Summary aggregates one day of Fitbit data. Sub-fetches that failed are
// named in Errors; the rest of the payload is whatever succeeded.
type Summary struct {
	Date              string          `json:"date"`
	Activities        json.RawMessage `json:"activities"`
	HeartRate         json.RawMessage `json:"heartRate"`
	HeartRateIntraday json.RawMessage `json:"heartRateIntraday"`
	Sleep             json.RawMessage `json:"sleep"`
	Errors            []string        `json:"errors"`
}

// DailySummary fans out the summary sub-fetches concurrently and tolerates
// partial failure: each outcome is collected independently so the caller
// always receives whatever subset succeeded.
func (c *Client) DailySummary(ctx context.Context, accessToken, date string) *Summary {
	fetches := []struct {
		name     string
		endpoint string
	}{
		{"activities", fmt.Sprintf("/user/-/activities/date/%s.json", date)},
		{"heartRate", fmt.Sprintf("/user/-/activities/heart/date/%s/1d.json", date)},
		{"heartRateIntraday", fmt.Sprintf("/user/-/activities/heart/date/%s/1d/1min.json", date)},
		{"sleep", fmt.Sprintf("/user/-/sleep/date/%s.json", date)},
	}

	results := make([]json.RawMessage, len(fetches))
	failures := make([]bool, len(fetches))

	var wg sync.WaitGroup
	for i, f := range fetches {
		wg.Add(1)
		go func(i int, name, endpoint string) {
			defer wg.Done()
			body, err := c.Request(ctx, accessToken, endpoint)
			if err != nil {
				failures[i] = true
				return
			}
			results[i] = json.RawMessage(body)
		}(i, f.name, f.endpoint)
	}
	wg.Wait()

	summary := &Summary{Date: date, Errors: []string{}}
	for i, f := range fetches {
		if failures[i] {
			summary.Errors = append(summary.Errors, f.name)
			continue
		}
		switch f.name {
		case "activities":
			summary.Activities = results[i]
		case "heartRate":
			summary.HeartRate = results[i]
		case "heartRateIntraday":
			summary.HeartRateIntraday = extractIntraday(results[i])
		case "sleep":
			summary.Sleep = results[i]
		}
	}
	sort.Strings(summary.Errors)
	return summary
}

// extractIntraday pulls the activities-heart-intraday section out of the
// intraday response, matching the shape the dashboard consumes.
func extractIntraday(body json.RawMessage) json.RawMessage {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return body
	}
	if intraday, ok := wrapper["activities-heart-intraday"]; ok {
		return intraday
	}
	return body
}
