package pulpo_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altruan/pulpobot/internal/adapters/pulpo"
	"github.com/altruan/pulpobot/internal/domain/shared"
)

// newTestClient points a client at the test server with a mock clock so
// retry sleeps advance instantly
func newTestClient(t *testing.T, handler http.Handler) (*pulpo.Client, *shared.MockClock) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	clock := shared.NewMockClock(time.Date(2024, 10, 2, 6, 0, 0, 0, time.UTC))
	client := pulpo.NewClient(pulpo.Config{
		BaseURL:  server.URL + "/",
		Username: "bot",
		Password: "secret",
	}, clock, nil)
	return client, clock
}

// authHandler answers the token exchange and delegates everything else
func authHandler(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth" {
			json.NewEncoder(w).Encode(map[string]string{"access_token": "token-123"})
			return
		}
		next(w, r)
	})
}

func TestClient_Request_AuthenticatesLazilyAndSendsBearer(t *testing.T) {
	// Arrange
	var gotAuth string
	client, _ := newTestClient(t, authHandler(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("authorization")
		w.Write([]byte(`{"total_results": 1, "orders": [{"id": 7}]}`))
	}))

	// Act
	raw, err := client.Request(context.Background(), http.MethodGet, "sales/orders/fulfillments", nil, nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "bearer token-123", gotAuth)
	assert.JSONEq(t, `[{"id": 7}]`, string(raw))
}

func TestClient_Request_UnwrapsListResponses(t *testing.T) {
	client, _ := newTestClient(t, authHandler(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total_results": 2, "users": [{"id": 1}, {"id": 2}]}`))
	}))

	raw, err := client.Request(context.Background(), http.MethodGet, "iam/users", nil, nil)

	require.NoError(t, err)
	assert.JSONEq(t, `[{"id": 1}, {"id": 2}]`, string(raw))
}

func TestClient_Request_CreationResponseComesBackVerbatim(t *testing.T) {
	client, _ := newTestClient(t, authHandler(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"created": true, "id": 42}`))
	}))

	raw, err := client.Request(context.Background(), http.MethodPost, "picking/orders", nil, map[string]any{})

	require.NoError(t, err)
	assert.JSONEq(t, `{"created": true, "id": 42}`, string(raw))
}

func TestClient_Request_MessagePayloadIsBusinessError(t *testing.T) {
	client, _ := newTestClient(t, authHandler(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": "order not found"}`))
	}))

	_, err := client.Request(context.Background(), http.MethodGet, "sales/orders/fulfillments", nil, nil)

	var businessErr *pulpo.BusinessError
	require.ErrorAs(t, err, &businessErr)
	assert.Equal(t, "order not found", businessErr.Message)
}

func TestClient_Request_BareStringIsBusinessError(t *testing.T) {
	client, _ := newTestClient(t, authHandler(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`"something went wrong"`))
	}))

	_, err := client.Request(context.Background(), http.MethodGet, "inventory/stocks", nil, nil)

	var businessErr *pulpo.BusinessError
	require.ErrorAs(t, err, &businessErr)
	assert.Equal(t, "something went wrong", businessErr.Payload)
}

func TestClient_Request_RateLimitPayloadHonorsRetryHint(t *testing.T) {
	// Arrange: two rate-limit payloads with a 5s hint, then success
	attempts := 0
	client, clock := newTestClient(t, authHandler(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.Write([]byte(`{"message": "api_rate_limit_reached", "retry_after_seconds": 5}`))
			return
		}
		w.Write([]byte(`[]`))
	}))
	start := clock.Now()

	// Act
	raw, err := client.Request(context.Background(), http.MethodGet, "inventory/stocks", nil, nil)

	// Assert
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 10*time.Second, clock.Now().Sub(start))
}

func TestClient_Request_RateLimitExhaustsAttempts(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, authHandler(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.Write([]byte(`{"message": "api_rate_limit_reached"}`))
	}))

	_, err := client.Request(context.Background(), http.MethodGet, "inventory/stocks", nil, nil)

	var rateLimitErr *pulpo.RateLimitError
	require.ErrorAs(t, err, &rateLimitErr)
	assert.Equal(t, 3, attempts)
}

func TestClient_Request_Retries429(t *testing.T) {
	attempts := 0
	client, clock := newTestClient(t, authHandler(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[]`))
	}))
	start := clock.Now()

	_, err := client.Request(context.Background(), http.MethodGet, "inventory/stocks", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	// Without a hint the default retry delay applies
	assert.Equal(t, 30*time.Second, clock.Now().Sub(start))
}

func TestClient_Request_OtherHTTPErrorsAreNotRetried(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, authHandler(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`boom`))
	}))

	_, err := client.Request(context.Background(), http.MethodGet, "inventory/stocks", nil, nil)

	var httpErr *pulpo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Equal(t, 1, attempts)
}

func TestClient_Request_ParamsAreEncoded(t *testing.T) {
	var gotQuery url.Values
	client, _ := newTestClient(t, authHandler(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`[]`))
	}))

	params := url.Values{"state": {"queue"}, "owner_id": {"15"}}
	_, err := client.Request(context.Background(), http.MethodGet, "picking/orders", params, nil)

	require.NoError(t, err)
	assert.Equal(t, "queue", gotQuery.Get("state"))
	assert.Equal(t, "15", gotQuery.Get("owner_id"))
}

func TestClient_Authenticate_FailureIsFatal(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "invalid credentials"}`))
	}))

	_, err := client.Request(context.Background(), http.MethodGet, "inventory/stocks", nil, nil)

	assert.Error(t, err)
	var httpErr *pulpo.HTTPError
	assert.ErrorAs(t, err, &httpErr)
}

func TestClient_Close_IsIdempotent(t *testing.T) {
	client, _ := newTestClient(t, authHandler(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))

	assert.NoError(t, client.Close())
	assert.NoError(t, client.Close())
}
