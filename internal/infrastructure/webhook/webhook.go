// Package webhook posts announcements to a chat webhook addressed by an id
// and a token, e.g. a Discord channel webhook.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultBaseURL = "https://discord.com/api/webhooks"

// ErrDispatch wraps every delivery failure.
var ErrDispatch = errors.New("webhook dispatch failed")

type Credentials struct {
	ID    string
	Token string
}

type Client struct {
	hc    *http.Client
	base  string
	creds Credentials
}

func New(baseURL string, creds Credentials, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		hc:    &http.Client{Timeout: timeout},
		base:  strings.TrimRight(baseURL, "/"),
		creds: creds,
	}
}

type payload struct {
	Content string `json:"content"`
}

// Send delivers content once. It never retries.
func (c *Client) Send(ctx context.Context, content string) error {
	if c.creds.ID == "" || c.creds.Token == "" {
		return fmt.Errorf("%w: webhook id and token are required", ErrDispatch)
	}
	b, err := json.Marshal(payload{Content: content})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDispatch, err)
	}
	endpoint := c.base + "/" + url.PathEscape(c.creds.ID) + "/" + url.PathEscape(c.creds.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDispatch, err)
	}
	req.Header.Set("content-type", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		// the URL embeds the token; keep it out of logs
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("%w: %v", ErrDispatch, err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("%w: http %d: %s", ErrDispatch, res.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
