package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	json "github.com/goccy/go-json"

	"ticketfront/internal/status"
	"ticketfront/utils"
)

func decodeJSON(t *testing.T, r *http.Request, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(r.Body).Decode(out))
}

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(&Config{BaseURL: server.URL}, func() string { return token })
}

func TestClient_GetDecodesBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events/", r.URL.Path)
		assert.Equal(t, "rock", r.URL.Query().Get("search"))
		w.Write([]byte(`{"events": [], "total_pages": 3}`))
	}, "")

	var reply struct {
		TotalPages int `json:"total_pages"`
	}
	query := url.Values{"search": []string{"rock"}}
	err := client.Get(context.Background(), "/events/", query, &reply)

	require.NoError(t, err)
	assert.Equal(t, 3, reply.TotalPages)
}

func TestClient_BearerHeaderOnProtectedCalls(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}, "tok-123")

	err := client.Get(context.Background(), "/auth/profile", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestClient_NoBearerHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}, "")

	err := client.Get(context.Background(), "/events/", nil, nil)

	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_Unauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, "expired")

	err := client.Get(context.Background(), "/auth/profile", nil, nil)

	assert.ErrorIs(t, err, status.ErrUnauthenticated)
}

func TestClient_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, "")

	err := client.Get(context.Background(), "/events/999", nil, nil)

	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestClient_BackendErrorMessageVerbatim(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "Cannot purchase your own ticket"}`))
	}, "tok")

	err := client.Post(context.Background(), "/tickets/purchase-resale/7", nil, nil)

	var ae *status.APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusBadRequest, ae.StatusCode)
	assert.Equal(t, "Cannot purchase your own ticket", ae.Message)
	assert.True(t, status.IsConflict(err))
}

func TestClient_PostSendsJSONBody(t *testing.T) {
	var gotContentType string
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		decodeJSON(t, r, &gotBody)
		w.Write([]byte(`{}`))
	}, "")

	err := client.Post(context.Background(), "/auth/login", map[string]string{
		"email":    "a@b.com",
		"password": "secret",
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "a@b.com", gotBody["email"])
}

func TestClient_TransportFailureIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(&Config{BaseURL: server.URL}, nil)
	server.Close()

	err := client.Get(context.Background(), "/events/", nil, nil)

	assert.True(t, status.IsNetwork(err))
}

func TestClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(&Config{BaseURL: server.URL}, nil)
	server.Close()

	for i := 0; i < 5; i++ {
		err := client.Get(context.Background(), "/events/", nil, nil)
		require.True(t, status.IsNetwork(err))
	}

	// Breaker is open now; the next request is refused without dialing.
	err := client.Get(context.Background(), "/events/", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrBreakerOpen))
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/events/:id", routeLabel("/events/42"))
	assert.Equal(t, "/tickets/purchase/:id", routeLabel("/tickets/purchase/7"))
	assert.Equal(t, "/auth/profile", routeLabel("/auth/profile"))
	assert.Equal(t, "/tickets/my-tickets", routeLabel("/tickets/my-tickets"))
}
