// Package hoursapi fetches a venue's weekly business hours.
package hoursapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/venue-opener/internal/domain/venue"
)

// ErrFetch wraps every failure to obtain a usable hours map.
var ErrFetch = errors.New("hours fetch failed")

// StatusError is returned for non-2xx upstream responses.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hours api http %d: %s", e.Status, e.Body)
}

const venuePlaceholder = "{venue_id}"

const defaultUA = "Mozilla/5.0 (X11; Linux x86_64) venue-opener/1.0"

// Client reads hours from an endpoint shaped like
// {"success": true, "results": {"location": {"monday": "10am-2am", ...}}}.
type Client struct {
	hc          *http.Client
	urlTemplate string
}

func New(urlTemplate string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		hc:          &http.Client{Timeout: timeout},
		urlTemplate: urlTemplate,
	}
}

type hoursResponse struct {
	Success bool `json:"success"`
	Results *struct {
		Location map[string]string `json:"location"`
	} `json:"results"`
}

// WeeklyHours returns the venue's hours keyed by lowercase weekday.
func (c *Client) WeeklyHours(ctx context.Context, venueID string) (venue.WeeklyHours, error) {
	status, body, err := c.do(ctx, c.endpoint(venueID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: %w", ErrFetch, &StatusError{Status: status, Body: truncate(string(body), 200)})
	}

	var res hoursResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrFetch, err)
	}
	if !res.Success {
		return nil, fmt.Errorf("%w: upstream reported success=false", ErrFetch)
	}
	if res.Results == nil || res.Results.Location == nil {
		return nil, fmt.Errorf("%w: response missing results.location", ErrFetch)
	}

	out := make(venue.WeeklyHours, len(res.Results.Location))
	for day, text := range res.Results.Location {
		out[strings.ToLower(strings.TrimSpace(day))] = text
	}
	return out, nil
}

func (c *Client) endpoint(venueID string) string {
	return strings.ReplaceAll(c.urlTemplate, venuePlaceholder, url.PathEscape(venueID))
}

func (c *Client) do(ctx context.Context, rawURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("user-agent", defaultUA)
	req.Header.Set("cache-control", "no-cache")

	res, err := c.hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, err
	}
	return res.StatusCode, b, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
