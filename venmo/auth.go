package venmo

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
)

// Response headers used during the two-factor exchange.
const (
	otpSecretHeader = "venmo-otp-secret"
	otpHeader       = "venmo-otp"
)

// OTPPrompt supplies the 6-digit one-time code delivered to the user's phone.
// It is called only when the upstream service issues a two-factor challenge.
type OTPPrompt func(ctx context.Context) (string, error)

// Auth drives the login and two-factor flow for a client. A successful login
// leaves the client's access token updated; any failed step aborts the attempt
// and the caller must restart from scratch.
type Auth struct {
	client *Client
	logger zerolog.Logger
}

// NewAuth creates an Auth flow bound to the given client. The client's device
// id should be set beforehand; a trusted device id skips the challenge.
func NewAuth(client *Client) *Auth {
	return &Auth{client: client, logger: client.logger}
}

// Login exchanges credentials for an access token, walking the two-factor
// challenge when the upstream demands one. On success the client's token is
// updated and, if two-factor completed, the device id is registered as trusted
// so the next login from it skips the challenge.
func (a *Auth) Login(ctx context.Context, username, password string, prompt OTPPrompt) (string, error) {
	resp, err := a.SubmitCredentials(ctx, username, password)
	if err != nil {
		return "", err
	}

	// No embedded error means the token came back directly.
	if !resp.HasError() {
		token, ok := resp.stringField("access_token")
		if !ok {
			return "", &AuthError{Reason: "credential exchange returned no access token"}
		}
		a.client.UpdateAccessToken(token)
		a.logger.Info().Msg("Logged in without two-factor challenge")
		return token, nil
	}

	return a.completeTwoFactor(ctx, resp, prompt)
}

// SubmitCredentials performs the credential exchange. The two-factor-required
// error code is pre-declared acceptable, so a challenge never fails this call;
// the caller inspects the body to tell the two outcomes apart.
func (a *Auth) SubmitCredentials(ctx context.Context, username, password string) (*ValidatedResponse, error) {
	body := map[string]any{
		"phone_email_or_username": username,
		"client_id":               "1",
		"password":                password,
	}
	return a.client.Call(ctx, Request{
		Method:       http.MethodPost,
		Path:         "/oauth/access_token",
		Body:         body,
		OKErrorCodes: []int{codeTwoFactorRequired},
	})
}

// completeTwoFactor runs challenge → SMS delivery → code exchange → trust.
func (a *Auth) completeTwoFactor(ctx context.Context, resp *ValidatedResponse, prompt OTPPrompt) (string, error) {
	otpSecret := resp.Header.Get(otpSecretHeader)
	if otpSecret == "" {
		// The secret header is only populated on a genuine challenge, so its
		// absence means the credentials were wrong.
		return "", &AuthError{Reason: "no otp secret in challenge response (check your password)"}
	}

	if err := a.SendTextOTP(ctx, otpSecret); err != nil {
		return "", err
	}

	if prompt == nil {
		return "", &AuthError{Reason: "two-factor challenge issued but no OTP prompt provided"}
	}
	code, err := prompt(ctx)
	if err != nil {
		return "", &AuthError{Reason: "failed to obtain one-time code", Err: err}
	}
	if !validOTP(code) {
		return "", &AuthError{Reason: "one-time code must be exactly 6 digits"}
	}

	token, err := a.ExchangeOTP(ctx, code, otpSecret)
	if err != nil {
		return "", err
	}
	a.client.UpdateAccessToken(token)

	// The session is already usable at this point, so a failed trust
	// registration only costs a challenge on the next login.
	if err := a.TrustDevice(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to register device as trusted")
	}

	a.logger.Info().Str("device_id", a.client.DeviceID()).Msg("Logged in after two-factor challenge")
	return token, nil
}

// SendTextOTP asks the upstream service to deliver a one-time code via SMS.
func (a *Auth) SendTextOTP(ctx context.Context, otpSecret string) error {
	header := http.Header{}
	header.Set(otpSecretHeader, otpSecret)

	resp, err := a.client.Call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/account/two-factor/token",
		Header: header,
		Body:   map[string]any{"via": "sms"},
	})
	if err != nil {
		if apiErr, ok := err.(*APIError); ok {
			return &AuthError{Reason: "failed to send the one-time code to your phone", Err: apiErr}
		}
		return err
	}
	if resp.StatusCode != http.StatusOK {
		reason := resp.ErrorMessage()
		if reason == "" {
			reason = "failed to send the one-time code to your phone"
		}
		return &AuthError{Reason: reason}
	}
	return nil
}

// ExchangeOTP trades the one-time code and challenge secret for an access token.
func (a *Auth) ExchangeOTP(ctx context.Context, code, otpSecret string) (string, error) {
	header := http.Header{}
	header.Set(otpHeader, code)
	header.Set(otpSecretHeader, otpSecret)

	resp, err := a.client.Call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/oauth/access_token",
		Header: header,
		Query:  url.Values{"client_id": {"1"}},
	})
	if err != nil {
		return "", &AuthError{Reason: "one-time code exchange failed", Err: err}
	}

	token, ok := resp.stringField("access_token")
	if !ok {
		return "", &AuthError{Reason: "one-time code exchange returned no access token"}
	}
	return token, nil
}

// TrustDevice registers the client's device id as trusted so future logins
// from it skip the two-factor challenge.
func (a *Auth) TrustDevice(ctx context.Context) error {
	_, err := a.client.Call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/users/devices",
	})
	return err
}

// Logout revokes an access token. It uses a fresh client so a logged-in
// instance can revoke any token, not just its own.
func Logout(ctx context.Context, logger zerolog.Logger, accessToken string, opts ...Option) error {
	client := NewClient(logger, append([]Option{WithAccessToken(accessToken)}, opts...)...)
	_, err := client.Call(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/oauth/access_token",
	})
	return err
}

func validOTP(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
