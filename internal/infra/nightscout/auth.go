package nightscout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

const (
	jwtRefreshMargin = time.Minute
	jwtDefaultTTL    = time.Hour
)

type authResponse struct {
	Token string `json:"token"`
	Exp   int64  `json:"exp"`
}

// authorize returns a cached JWT, exchanging the access token for a new one
// when none is cached or the cached one is about to expire.
func (c *Client) authorize(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.jwt != "" && now.Before(c.jwtExpiry.Add(-jwtRefreshMargin)) {
		return c.jwt, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+authEndpoint+url.PathEscape(c.token), nil)
	if err != nil {
		return "", retry.Unrecoverable(fmt.Errorf("failed to create auth request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to request token: %w", err)
	}
	defer resp.Body.Close()

	c.recordRequest(ctx, authEndpoint, resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("token request returned status %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return "", retry.Unrecoverable(err)
		}
		return "", err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	var auth authResponse
	if err := json.Unmarshal(body, &auth); err != nil || auth.Token == "" {
		return "", retry.Unrecoverable(errors.New("malformed token response"))
	}

	expiry := now.Add(jwtDefaultTTL)
	if auth.Exp > 0 {
		expiry = time.Unix(auth.Exp, 0)
	}
	c.jwt = auth.Token
	c.jwtExpiry = expiry

	slog.DebugContext(ctx, "obtained nightscout token",
		slog.Time("expires_at", expiry),
	)

	return c.jwt, nil
}

func (c *Client) resetJWT() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jwt = ""
	c.jwtExpiry = time.Time{}
}
