package playtomic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"padel-bot/types"
)

const (
	loginPath        = "/api/v3/auth/login"
	tenantsPath      = "/api/v1/tenants"
	availabilityPath = "/api/v1/availability"
)

// Client talks to the Playtomic API. It reuses one bearer token until it
// expires and logs in again otherwise; the token survives restarts through
// the CredentialStore.
type Client struct {
	baseURL   string
	email     string
	password  string
	allowlist []string
	creds     CredentialStore
	http      *http.Client
	log       *zap.Logger

	token tokenCache
}

func NewClient(baseURL, email, password string, allowlist []string, creds CredentialStore, log *zap.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		email:     email,
		password:  password,
		allowlist: allowlist,
		creds:     creds,
		http:      &http.Client{Timeout: 15 * time.Second},
		log:       log,
	}
}

// Tenants fetches the venues around the configured coordinate.
func (c *Client) Tenants(ctx context.Context) ([]*types.Tenant, error) {
	q := url.Values{}
	q.Set("user_id", "me")
	q.Set("playtomic_status", "active")
	q.Set("with_properties", "ALLOWS_CASH_PAYMENT")
	q.Set("coordinate", "51.99556897,4.36451191,Delft")
	q.Set("sport_id", "PADEL")
	q.Set("radius", "50000")
	q.Set("size", "40")

	var records []types.TenantRecord
	if err := c.getJSON(ctx, tenantsPath, q, &records); err != nil {
		return nil, fmt.Errorf("fetching tenants: %w", err)
	}

	tenants := make([]*types.Tenant, 0, len(records))
	for _, r := range records {
		tenants = append(tenants, types.NewTenant(r))
	}
	return tenants, nil
}

// RelevantTenants returns only the venues on the allow-list.
func (c *Client) RelevantTenants(ctx context.Context) ([]*types.Tenant, error) {
	tenants, err := c.Tenants(ctx)
	if err != nil {
		return nil, err
	}

	relevant := make([]*types.Tenant, 0, len(c.allowlist))
	for _, t := range tenants {
		if t.IsRelevant(c.allowlist) {
			relevant = append(relevant, t)
		}
	}
	return relevant, nil
}

// Availability fetches one day per request, all days concurrently. Each
// response lands in its own per-date slot, so the merged order depends
// only on the date order, never on response timing.
func (c *Client) Availability(ctx context.Context, tenantID string, dates []time.Time) ([]types.Availability, error) {
	perDate := make([][]types.Availability, len(dates))
	g, ctx := errgroup.WithContext(ctx)

	for i, date := range dates {
		g.Go(func() error {
			day := date.Format("2006-01-02")

			q := url.Values{}
			q.Set("user_id", "me")
			q.Set("sport_id", "PADEL")
			q.Set("tenant_id", tenantID)
			q.Set("local_start_min", day+"T00:00:00")
			q.Set("local_start_max", day+"T23:59:59")

			var availability []types.Availability
			if err := c.getJSON(ctx, availabilityPath, q, &availability); err != nil {
				return fmt.Errorf("fetching availability of %s for %s: %w", tenantID, day, err)
			}
			perDate[i] = availability
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []types.Availability
	for _, availability := range perDate {
		merged = append(merged, availability...)
	}
	return merged, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decoding response: %w", path, err)
	}
	return nil
}
