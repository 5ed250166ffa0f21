// internal/gameclient/httpapi/client.go
package httpapi

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

	"github.com/wayfarer-go/wayfarer/internal/gameclient"
	"github.com/wayfarer-go/wayfarer/pkg/core"
)

// errorCodeNoSuchItem is the gateway error code for a missing consumable.
const errorCodeNoSuchItem = "no_such_item"

// Client talks to the game gateway's JSON API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a new gateway client.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Healthcheck checks if the gateway is reachable.
func (c *Client) Healthcheck(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthcheck", "", nil, nil)
}

// Authenticate implements gameclient.Client.
func (c *Client) Authenticate(ctx context.Context, creds core.Credentials) (gameclient.Session, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth", "", authRequest{
		Username: creds.Username,
		Password: creds.Password,
	}, &resp)
	if errors.Is(err, gameclient.ErrSessionInvalid) {
		return nil, fmt.Errorf("authenticate %q: %w", creds.Username, gameclient.ErrAuthFailed)
	}
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("authenticate: empty token: %w", gameclient.ErrUnavailable)
	}
	return &session{client: c, token: resp.Token}, nil
}

// do performs a JSON request and classifies failures into gameclient conditions.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %s: %w", method, path, ctxErr)
		}
		return fmt.Errorf("%s %s: %w: %w", method, path, gameclient.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
	}
	return nil
}

func classifyStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("status %d: %w", resp.StatusCode, gameclient.ErrSessionInvalid)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("status %d: %w", resp.StatusCode, gameclient.ErrUnavailable)
	}

	var apiErr errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Error == errorCodeNoSuchItem {
		return fmt.Errorf("status %d: %w", resp.StatusCode, gameclient.ErrNoSuchItem)
	}
	if apiErr.Error != "" {
		return fmt.Errorf("status %d: %s", resp.StatusCode, apiErr.Error)
	}
	return fmt.Errorf("unexpected status %d", resp.StatusCode)
}

func escape(s string) string {
	return url.PathEscape(s)
}

var _ gameclient.Client = (*Client)(nil)
