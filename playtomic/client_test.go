package playtomic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"padel-bot/types"
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

type memoryCreds struct {
	token string
}

func (m *memoryCreds) Token(context.Context) (string, error) { return m.token, nil }

func (m *memoryCreds) Persist(_ context.Context, token string) error {
	m.token = token
	return nil
}

type fakePlaytomic struct {
	t            *testing.T
	token        string
	logins       atomic.Int64
	tenants      []types.TenantRecord
	availability map[string][]types.Availability // keyed by local_start_min date
}

func (f *fakePlaytomic) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v3/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(f.t, "me@example.com", body.Email)
		assert.Equal(f.t, "secret", body.Password)

		f.logins.Add(1)
		json.NewEncoder(w).Encode(map[string]string{"access_token": f.token})
	})

	mux.HandleFunc("GET /api/v1/tenants", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, "Bearer "+f.token, r.Header.Get("Authorization"))
		assert.Equal(f.t, "PADEL", r.URL.Query().Get("sport_id"))
		json.NewEncoder(w).Encode(f.tenants)
	})

	mux.HandleFunc("GET /api/v1/availability", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, "Bearer "+f.token, r.Header.Get("Authorization"))
		day := r.URL.Query().Get("local_start_min")[:10]
		json.NewEncoder(w).Encode(f.availability[day])
	})

	return mux
}

func newTestClient(t *testing.T, serverURL string, allowlist []string, creds CredentialStore) *Client {
	t.Helper()
	return NewClient(serverURL, "me@example.com", "secret", allowlist, creds, zap.NewNop())
}

func TestClientLogsInWhenNoStoredToken(t *testing.T) {
	fake := &fakePlaytomic{t: t, token: signedToken(t, time.Now().Add(time.Hour))}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	creds := &memoryCreds{}
	client := newTestClient(t, srv.URL, nil, creds)

	_, err := client.Tenants(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), fake.logins.Load())
	assert.Equal(t, fake.token, creds.token, "fresh token is persisted")
}

func TestClientReusesValidStoredToken(t *testing.T) {
	valid := signedToken(t, time.Now().Add(time.Hour))
	fake := &fakePlaytomic{t: t, token: valid}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil, &memoryCreds{token: valid})

	_, err := client.Tenants(context.Background())
	require.NoError(t, err)
	_, err = client.Tenants(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(0), fake.logins.Load())
}

func TestClientRefreshesExpiredToken(t *testing.T) {
	fresh := signedToken(t, time.Now().Add(time.Hour))
	fake := &fakePlaytomic{t: t, token: fresh}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	expired := signedToken(t, time.Now().Add(-time.Hour))
	creds := &memoryCreds{token: expired}
	client := newTestClient(t, srv.URL, nil, creds)

	_, err := client.Tenants(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), fake.logins.Load())
	assert.Equal(t, fresh, creds.token)
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()

	assert.False(t, tokenExpired(signedToken(t, now.Add(time.Minute)), now))
	assert.True(t, tokenExpired(signedToken(t, now.Add(-time.Minute)), now))
	assert.True(t, tokenExpired("garbage", now))
	assert.True(t, tokenExpired("", now))
}

func TestRelevantTenants(t *testing.T) {
	fake := &fakePlaytomic{
		t:     t,
		token: signedToken(t, time.Now().Add(time.Hour)),
		tenants: []types.TenantRecord{
			{TenantID: "t1", TenantName: "Padel City"},
			{TenantID: "t2", TenantName: "Somewhere Else"},
			{TenantID: "t3", TenantName: "Plaza Padel"},
		},
	}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := newTestClient(t, srv.URL, []string{"t1", "t3"}, &memoryCreds{})

	tenants, err := client.RelevantTenants(context.Background())
	require.NoError(t, err)

	require.Len(t, tenants, 2)
	assert.Equal(t, "Padel City", tenants[0].Name())
	assert.Equal(t, "Plaza Padel", tenants[1].Name())
}

func TestAvailabilityMergesInDateOrder(t *testing.T) {
	fake := &fakePlaytomic{
		t:     t,
		token: signedToken(t, time.Now().Add(time.Hour)),
		availability: map[string][]types.Availability{
			"2024-01-06": {
				{ResourceID: "r1", StartDate: "2024-01-06", Slots: []types.Slot{{StartTime: "17:30:00", Duration: 90}}},
			},
			"2024-01-07": {
				{ResourceID: "r1", StartDate: "2024-01-07", Slots: []types.Slot{{StartTime: "18:00:00", Duration: 90}}},
				{ResourceID: "r2", StartDate: "2024-01-07"},
			},
			"2024-01-08": {
				{ResourceID: "r1", StartDate: "2024-01-08"},
			},
		},
	}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil, &memoryCreds{})

	dates := []time.Time{
		time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
	}

	got, err := client.Availability(context.Background(), "t1", dates)
	require.NoError(t, err)

	require.Len(t, got, 4)
	assert.Equal(t, "2024-01-06", got[0].StartDate)
	assert.Equal(t, "2024-01-07", got[1].StartDate)
	assert.Equal(t, "2024-01-07", got[2].StartDate)
	assert.Equal(t, "2024-01-08", got[3].StartDate)
}

func TestAvailabilityPropagatesFetchFailure(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/availability", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil, &memoryCreds{token: token})

	_, err := client.Availability(context.Background(), "t1", []time.Time{time.Now()})
	assert.Error(t, err)
}

func TestTenantsNonOKStatus(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/tenants", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil, &memoryCreds{token: token})

	_, err := client.Tenants(context.Background())
	assert.ErrorContains(t, err, "unexpected status 403")
}
