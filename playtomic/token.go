package playtomic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// CredentialStore persists the upstream access token across restarts.
type CredentialStore interface {
	Token(ctx context.Context) (string, error)
	Persist(ctx context.Context, token string) error
}

// tokenCache guards the in-memory token copy; availability fetches run
// concurrently and all go through accessToken.
type tokenCache struct {
	mu    sync.Mutex
	value string
}

// accessToken returns a bearer token, logging in when the cached one is
// missing or expired.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.token.mu.Lock()
	defer c.token.mu.Unlock()

	if c.token.value == "" && c.creds != nil {
		stored, err := c.creds.Token(ctx)
		if err != nil {
			c.log.Warn("reading stored access token", zap.Error(err))
		} else {
			c.token.value = stored
		}
	}

	if c.token.value != "" && !tokenExpired(c.token.value, time.Now()) {
		return c.token.value, nil
	}

	token, err := c.login(ctx)
	if err != nil {
		return "", err
	}
	c.token.value = token

	if c.creds != nil {
		if err := c.creds.Persist(ctx, token); err != nil {
			c.log.Warn("persisting access token", zap.Error(err))
		}
	}
	return token, nil
}

// tokenExpired decodes the exp claim without verifying the signature: the
// token is Playtomic's own, we only need its lifetime.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return !claims.ExpiresAt.After(now)
}

func (c *Client) login(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"email":    c.email,
		"password": c.password,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("logging in: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("logging in: unexpected status %d", resp.StatusCode)
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("logging in: decoding response: %w", err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("logging in: empty access token in response")
	}

	c.log.Info("logged in to playtomic")
	return out.AccessToken, nil
}
