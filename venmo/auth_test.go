package venmo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginWithoutChallenge(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)

		require.Equal(t, "/oauth/access_token", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["phone_email_or_username"])
		assert.Equal(t, "hunter2", body["password"])

		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok123"})
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithHost(server.URL), WithDeviceID("device-1"))
	auth := NewAuth(client)

	prompted := false
	token, err := auth.Login(context.Background(), "alice", "hunter2", func(ctx context.Context) (string, error) {
		prompted = true
		return "000000", nil
	})
	require.NoError(t, err)

	assert.Equal(t, "tok123", token)
	assert.Equal(t, "tok123", client.AccessToken())
	assert.False(t, prompted, "no OTP step for a direct token")
	assert.Equal(t, []string{"POST /oauth/access_token"}, paths)
}

func TestLoginWithTwoFactorChallenge(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)

		switch r.URL.Path {
		case "/oauth/access_token":
			if r.Header.Get("venmo-otp") != "" {
				// OTP exchange
				assert.Equal(t, "123456", r.Header.Get("venmo-otp"))
				assert.Equal(t, "sec1", r.Header.Get("venmo-otp-secret"))
				assert.Equal(t, "1", r.URL.Query().Get("client_id"))
				json.NewEncoder(w).Encode(map[string]any{"access_token": "tok789"})
				return
			}
			// Credential exchange: challenge required
			w.Header().Set("venmo-otp-secret", "sec1")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": 81109, "message": "Additional authentication is required"},
			})
		case "/account/two-factor/token":
			assert.Equal(t, "sec1", r.Header.Get("venmo-otp-secret"))
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "sms", body["via"])
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{}})
		case "/users/devices":
			assert.Equal(t, "Bearer tok789", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{}})
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithHost(server.URL), WithDeviceID("device-1"))
	auth := NewAuth(client)

	token, err := auth.Login(context.Background(), "alice", "hunter2", func(ctx context.Context) (string, error) {
		return "123456", nil
	})
	require.NoError(t, err)

	assert.Equal(t, "tok789", token)
	assert.Equal(t, "tok789", client.AccessToken())
	assert.Equal(t, []string{
		"POST /oauth/access_token",
		"POST /account/two-factor/token",
		"POST /oauth/access_token",
		"POST /users/devices",
	}, paths)
}

func TestLoginWrongPassword(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		// Error body but no otp secret header: wrong password.
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 81109, "message": "Your email or password was incorrect."},
		})
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithHost(server.URL), WithDeviceID("device-1"))
	auth := NewAuth(client)

	_, err := auth.Login(context.Background(), "alice", "wrong", nil)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)

	assert.Equal(t, 1, requests, "no further calls after a failed challenge")
	assert.Empty(t, client.AccessToken())
}

func TestLoginRejectsMalformedOTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/access_token":
			w.Header().Set("venmo-otp-secret", "sec1")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": 81109},
			})
		case "/account/two-factor/token":
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{}})
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithHost(server.URL), WithDeviceID("device-1"))
	auth := NewAuth(client)

	for _, code := range []string{"12345", "1234567", "12a456", ""} {
		_, err := auth.Login(context.Background(), "alice", "hunter2", func(ctx context.Context) (string, error) {
			return code, nil
		})
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr, "code %q", code)
	}
}

func TestSendTextOTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 264, "message": "Invalid OTP secret"},
		})
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop(), WithHost(server.URL))
	auth := NewAuth(client)

	err := auth.SendTextOTP(context.Background(), "stale-secret")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestLogout(t *testing.T) {
	var method, authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		authHeader = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer server.Close()

	err := Logout(context.Background(), zerolog.Nop(), "tok123", WithHost(server.URL))
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "Bearer tok123", authHeader)
}

func TestValidOTP(t *testing.T) {
	assert.True(t, validOTP("123456"))
	assert.False(t, validOTP("12345"))
	assert.False(t, validOTP("1234567"))
	assert.False(t, validOTP("12345a"))
	assert.False(t, validOTP(""))
}
