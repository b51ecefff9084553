// Package httpremote implements comments.Remote against the SceneCast
// comment API, for deployments where the player cannot reach Postgres
// directly.
package httpremote

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

	"github.com/scenecast/internal/comments"
)

// Client speaks the /api/v1 comment routes.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient builds a client. An empty baseURL yields a disabled remote.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether an endpoint is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// ListThreads fetches all threads for a namespace prefix.
func (c *Client) ListThreads(ctx context.Context, sceneFilter string) ([]comments.Thread, error) {
	endpoint := c.baseURL + "/api/v1/threads"
	if sceneFilter != "" {
		endpoint += "?scene_prefix=" + url.QueryEscape(sceneFilter)
	}

	var threads []comments.Thread
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

// InsertThread creates a thread remotely.
func (c *Client) InsertThread(ctx context.Context, t comments.Thread) error {
	return c.do(ctx, http.MethodPost, c.baseURL+"/api/v1/threads", t, nil)
}

// InsertReply creates a reply remotely.
func (c *Client) InsertReply(ctx context.Context, r comments.Reply) error {
	return c.do(ctx, http.MethodPost, c.baseURL+"/api/v1/replies", r, nil)
}

// UpdateThreadStatus sets a thread's status remotely.
func (c *Client) UpdateThreadStatus(ctx context.Context, id string, status comments.Status) error {
	endpoint := fmt.Sprintf("%s/api/v1/threads/%s/status", c.baseURL, url.PathEscape(id))
	return c.do(ctx, http.MethodPatch, endpoint, map[string]string{"status": string(status)}, nil)
}

// UpdateThreadMessage replaces a thread's body remotely.
func (c *Client) UpdateThreadMessage(ctx context.Context, id, text string) error {
	endpoint := fmt.Sprintf("%s/api/v1/threads/%s/message", c.baseURL, url.PathEscape(id))
	return c.do(ctx, http.MethodPatch, endpoint, map[string]string{"message": text}, nil)
}

// UpdateReplyMessage replaces a reply's body remotely.
func (c *Client) UpdateReplyMessage(ctx context.Context, id, text string) error {
	endpoint := fmt.Sprintf("%s/api/v1/replies/%s/message", c.baseURL, url.PathEscape(id))
	return c.do(ctx, http.MethodPatch, endpoint, map[string]string{"message": text}, nil)
}

// DeleteThread removes a thread remotely.
func (c *Client) DeleteThread(ctx context.Context, id string) error {
	endpoint := fmt.Sprintf("%s/api/v1/threads/%s", c.baseURL, url.PathEscape(id))
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

// DeleteReply removes a reply remotely.
func (c *Client) DeleteReply(ctx context.Context, id string) error {
	endpoint := fmt.Sprintf("%s/api/v1/replies/%s", c.baseURL, url.PathEscape(id))
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("comment api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("comment api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
