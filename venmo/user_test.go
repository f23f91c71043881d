package venmo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMyProfileCaching(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		require.Equal(t, "/account", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"user":    map[string]any{"id": "me", "username": "alice"},
				"balance": 42.0,
			},
		})
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithHost(server.URL))
	users := NewUserService(client)
	ctx := context.Background()

	profile, err := users.MyProfile(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)

	_, err = users.MyProfile(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, requests, "second call served from cache")

	_, err = users.MyProfile(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, requests, "forceUpdate refetches")

	balance, err := users.MyBalance(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 42.0, balance)
}

func TestSearchUsersUsernameQuery(t *testing.T) {
	var queries []url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query())
		json.NewEncoder(w).Encode(map[string]any{
			"data": []any{map[string]any{"id": "u1", "username": "alice"}},
		})
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithHost(server.URL))
	users := NewUserService(client)
	ctx := context.Background()

	_, err := users.SearchUsers(ctx, "alice smith", 0, 0)
	require.NoError(t, err)

	_, err = users.SearchUsers(ctx, "@alice", 0, 0)
	require.NoError(t, err)

	require.Len(t, queries, 2)

	// Plain query: free text search with the default limit.
	assert.Equal(t, "alice smith", queries[0].Get("query"))
	assert.Empty(t, queries[0].Get("type"))
	assert.Equal(t, "50", queries[0].Get("limit"))

	// An "@" switches to exact username search with the marker stripped.
	assert.Equal(t, "alice", queries[1].Get("query"))
	assert.Equal(t, "username", queries[1].Get("type"))
}

func TestGetUserNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 283, "message": "Resource not found."},
		})
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithHost(server.URL))
	users := NewUserService(client)

	_, err := users.GetUser(context.Background(), "no-such-user")
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestGetUserByUsername(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "username", r.URL.Query().Get("type"))
		json.NewEncoder(w).Encode(map[string]any{
			"data": []any{
				map[string]any{"id": "u2", "username": "alicette"},
				map[string]any{"id": "u1", "username": "alice"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithHost(server.URL))
	users := NewUserService(client)

	user, err := users.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	// Near-matches don't count.
	_, err = users.GetUserByUsername(context.Background(), "alic")
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestUserTransactionsQueryDefaults(t *testing.T) {
	var query url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/stories/target-or-actor/u1", r.URL.Path)
		query = r.URL.Query()
		json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithHost(server.URL))
	users := NewUserService(client)

	_, err := users.UserTransactions(context.Background(), "u1", TransactionOptions{})
	require.NoError(t, err)

	assert.Equal(t, "false", query.Get("social_only"))
	assert.Equal(t, "true", query.Get("only_public_stories"))
	assert.Equal(t, "50", query.Get("limit"))
	assert.Empty(t, query.Get("before_id"))
}

func TestUserTransactionsBeforeIDAnchorsFirstPageOnly(t *testing.T) {
	var queries []url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query())
		json.NewEncoder(w).Encode(map[string]any{
			"data": []any{
				map[string]any{"id": "t1", "type": "payment", "note": "lunch"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithHost(server.URL))
	users := NewUserService(client)
	ctx := context.Background()

	page, err := users.UserTransactions(ctx, "u1", TransactionOptions{BeforeID: "t99", Limit: 25})
	require.NoError(t, err)
	require.Equal(t, 1, page.Len())

	_, err = page.NextPage(ctx)
	require.NoError(t, err)

	require.Len(t, queries, 2)
	assert.Equal(t, "t99", queries[0].Get("before_id"))
	assert.Empty(t, queries[1].Get("before_id"), "the anchor is not part of the continuation")
	assert.Equal(t, "25", queries[1].Get("limit"))
}

func TestTransactionsBetweenPath(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithHost(server.URL))
	users := NewUserService(client)

	_, err := users.TransactionsBetween(context.Background(), "me", "u2", TransactionOptions{})
	require.NoError(t, err)
	assert.Equal(t, "/stories/target-or-actor/me/target-or-actor/u2", path)
}

func TestFriendsListDefaultLimit(t *testing.T) {
	var query url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/u1/friends", r.URL.Path)
		query = r.URL.Query()
		json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithHost(server.URL))
	users := NewUserService(client)

	_, err := users.FriendsList(context.Background(), "u1", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "3337", query.Get("limit"))
}
