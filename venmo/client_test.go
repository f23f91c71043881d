package venmo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallRejectsInvalidMethod(t *testing.T) {
	client := NewClient(zerolog.Nop(), WithHost("http://127.0.0.1:1"))

	// Fails before any network traffic: the host is unreachable, so a
	// transport error would surface if the request were attempted.
	_, err := client.Call(context.Background(), Request{Method: "PATCH", Path: "/account"})
	assert.ErrorIs(t, err, ErrInvalidMethod)
}

func TestCallAttachesIdentityHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{}})
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(),
		WithHost(server.URL),
		WithDeviceID("device-1"),
		WithDefaultHeaders(map[string]string{"User-Agent": "Venmo/8.8.0"}),
	)
	client.UpdateAccessToken("tok123")

	_, err := client.Call(context.Background(), Request{Method: http.MethodGet, Path: "/account"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok123", got.Get("Authorization"))
	assert.Equal(t, "device-1", got.Get("device-id"))
	assert.NotEmpty(t, got.Get("X-Session-ID"))
	assert.Equal(t, "Venmo/8.8.0", got.Get("User-Agent"))
	// No body, so no forced content type
	assert.Empty(t, got.Get("Content-Type"))
}

func TestCallForcesContentTypeWithBody(t *testing.T) {
	var got http.Header
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{}})
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithHost(server.URL))
	_, err := client.Call(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/payments",
		Body:   map[string]any{"note": "lunch"},
	})
	require.NoError(t, err)

	assert.Equal(t, "application/json; charset=utf-8", got.Get("Content-Type"))
	assert.Equal(t, "lunch", body["note"])
}

func TestCallQueryEncoding(t *testing.T) {
	var query url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithHost(server.URL))
	_, err := client.Call(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/users",
		Query:  url.Values{"query": {"alice b"}, "limit": {"50"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "alice b", query.Get("query"))
	assert.Equal(t, "50", query.Get("limit"))
}

func TestCallTransportError(t *testing.T) {
	client := NewClient(zerolog.Nop(),
		WithHost("http://127.0.0.1:1"),
		WithTimeout(500*time.Millisecond),
	)

	_, err := client.Call(context.Background(), Request{Method: http.MethodGet, Path: "/account"})
	var transportErr *TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestUpdateIdentityAppliesToLaterCalls(t *testing.T) {
	var tokens []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens = append(tokens, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{}})
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithHost(server.URL))
	ctx := context.Background()

	_, err := client.Call(ctx, Request{Method: http.MethodGet, Path: "/account"})
	require.NoError(t, err)

	client.UpdateAccessToken("tok456")
	_, err = client.Call(ctx, Request{Method: http.MethodGet, Path: "/account"})
	require.NoError(t, err)

	assert.Equal(t, []string{"", "Bearer tok456"}, tokens)
}

func TestSessionIDStablePerClient(t *testing.T) {
	a := NewClient(zerolog.Nop())
	b := NewClient(zerolog.Nop())

	assert.NotEmpty(t, a.Identity().SessionID)
	assert.Equal(t, a.Identity().SessionID, a.Identity().SessionID)
	assert.NotEqual(t, a.Identity().SessionID, b.Identity().SessionID)
}

func TestCallAsyncUsesIndependentSession(t *testing.T) {
	var tokens []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens = append(tokens, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{}})
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithHost(server.URL))
	client.UpdateAccessToken("tok-before")

	resultChan := client.CallAsync(context.Background(), Request{Method: http.MethodGet, Path: "/account"})

	// Mutating the primary client must not affect the dispatched call.
	client.UpdateAccessToken("tok-after")

	result := <-resultChan
	require.NoError(t, result.Err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "Bearer tok-before", tokens[0])

	_, open := <-resultChan
	assert.False(t, open, "result channel should be closed after one result")
}
