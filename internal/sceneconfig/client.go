// Package sceneconfig sends saved scene configurations to the optional
// remote persistence endpoint. Delivery is best-effort: a failed PATCH is
// logged and forgotten, the local optimistic state stands.
package sceneconfig

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Client PATCHes scene-config snapshots to
// {baseURL}/{language}/scene-config.
type Client struct {
	baseURL  string
	language string
	token    string
	client   *http.Client
}

// NewClient builds a client. An empty baseURL yields a disabled client;
// Patch becomes a no-op (capability flag, checked at runtime).
func NewClient(baseURL, language, token string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
		token:    token,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a remote endpoint is configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// PersistFunc adapts the client to the edit-session save callback. Each
// snapshot ships on its own goroutine; the save never waits on it.
func (c *Client) PersistFunc() func(sceneID string, snapshot any) {
	return func(sceneID string, snapshot any) {
		go c.Patch(context.Background(), sceneID, snapshot)
	}
}

// Patch sends {sceneID: snapshot} to the remote endpoint. Failures are
// logged at warn and swallowed; no corrective action is taken.
func (c *Client) Patch(ctx context.Context, sceneID string, snapshot any) {
	if !c.Enabled() {
		return
	}
	if err := c.patch(ctx, sceneID, snapshot); err != nil {
		log.Warn().
			Str("scene_id", sceneID).
			Str("language", c.language).
			Err(err).
			Msg("scene config persist failed, keeping local state")
	}
}

func (c *Client) patch(ctx context.Context, sceneID string, snapshot any) error {
	body, err := json.Marshal(map[string]any{sceneID: snapshot})
	if err != nil {
		return fmt.Errorf("failed to marshal scene config: %w", err)
	}

	url := fmt.Sprintf("%s/%s/scene-config", c.baseURL, c.language)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("scene config request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("scene config endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
