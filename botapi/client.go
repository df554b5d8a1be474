// Package botapi is a thin pass-through client for the remote bot API that
// stores each user's preferred clubs and preferred start times. There is no
// local logic here: every call authenticates as the Telegram user and
// forwards the operation.
package botapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User identifies the Telegram user a request acts on behalf of.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	UserName  string `json:"username"`
}

// ClubSummary is the human-readable club listing used in keyboards.
type ClubSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type clubRecord struct {
	TenantID   string `json:"tenant_id"`
	TenantName string `json:"tenant_name"`
	Address    struct {
		Street     string `json:"street"`
		PostalCode string `json:"postal_code"`
		City       string `json:"city"`
		Country    string `json:"country"`
	} `json:"address"`
}

func (r clubRecord) summary() ClubSummary {
	address := fmt.Sprintf("%s, %s, %s, %s", r.Address.Street, r.Address.PostalCode, r.Address.City, r.Address.Country)
	return ClubSummary{ID: r.TenantID, Title: fmt.Sprintf("%s: %s", strings.TrimSpace(r.TenantName), address)}
}

type Client struct {
	baseURL string
	secret  string
	http    *http.Client
}

func NewClient(baseURL, secret string) *Client {
	return &Client{
		baseURL: baseURL,
		secret:  secret,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// FindClubs searches clubs by name.
func (c *Client) FindClubs(ctx context.Context, user User, name string) ([]ClubSummary, error) {
	q := url.Values{}
	q.Set("name", name)

	var records []clubRecord
	if err := c.do(ctx, user, http.MethodGet, "/playtomic/clubs?"+q.Encode(), nil, &records); err != nil {
		return nil, fmt.Errorf("finding clubs: %w", err)
	}

	clubs := make([]ClubSummary, 0, len(records))
	for _, r := range records {
		clubs = append(clubs, r.summary())
	}
	return clubs, nil
}

// ClubInfo fetches a single club by id.
func (c *Client) ClubInfo(ctx context.Context, user User, clubID string) (ClubSummary, error) {
	var record clubRecord
	if err := c.do(ctx, user, http.MethodGet, "/playtomic/clubs/"+clubID, nil, &record); err != nil {
		return ClubSummary{}, fmt.Errorf("fetching club %s: %w", clubID, err)
	}
	return record.summary(), nil
}

// PreferredClubs lists the user's preferred club ids.
func (c *Client) PreferredClubs(ctx context.Context, user User) ([]string, error) {
	var ids []string
	if err := c.do(ctx, user, http.MethodGet, "/users/preferred-clubs", nil, &ids); err != nil {
		return nil, fmt.Errorf("listing preferred clubs: %w", err)
	}
	return ids, nil
}

func (c *Client) SaveClub(ctx context.Context, user User, clubID string) error {
	body := map[string]string{"clubId": clubID}
	if err := c.do(ctx, user, http.MethodPost, "/users/preferred-clubs", body, nil); err != nil {
		return fmt.Errorf("saving club %s: %w", clubID, err)
	}
	return nil
}

func (c *Client) DeleteClub(ctx context.Context, user User, clubID string) error {
	body := map[string]string{"clubId": clubID}
	if err := c.do(ctx, user, http.MethodDelete, "/users/preferred-clubs", body, nil); err != nil {
		return fmt.Errorf("deleting club %s: %w", clubID, err)
	}
	return nil
}

// PreferredTimes lists the user's preferred start times ("HH:MM:SS").
func (c *Client) PreferredTimes(ctx context.Context, user User) ([]string, error) {
	var times []string
	if err := c.do(ctx, user, http.MethodGet, "/users/preferred-times", nil, &times); err != nil {
		return nil, fmt.Errorf("listing preferred times: %w", err)
	}
	return times, nil
}

func (c *Client) SaveTime(ctx context.Context, user User, startTime string) error {
	body := map[string]string{"time": startTime}
	if err := c.do(ctx, user, http.MethodPost, "/users/preferred-times", body, nil); err != nil {
		return fmt.Errorf("saving time %s: %w", startTime, err)
	}
	return nil
}

func (c *Client) DeleteTime(ctx context.Context, user User, startTime string) error {
	body := map[string]string{"time": startTime}
	if err := c.do(ctx, user, http.MethodDelete, "/users/preferred-times", body, nil); err != nil {
		return fmt.Errorf("deleting time %s: %w", startTime, err)
	}
	return nil
}

// authorization signs the user identity into a bearer token.
func (c *Client) authorization(user User) (string, error) {
	claims := jwt.MapClaims{
		"id":         user.ID,
		"first_name": user.FirstName,
		"username":   user.UserName,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(c.secret))
	if err != nil {
		return "", fmt.Errorf("signing user token: %w", err)
	}
	return "Bearer " + token, nil
}

func (c *Client) do(ctx context.Context, user User, method, path string, body, out any) error {
	authorization, err := c.authorization(user)
	if err != nil {
		return err
	}

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", authorization)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
