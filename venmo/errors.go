package venmo

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Common errors returned by the Venmo client.
var (
	// ErrInvalidMethod indicates an unsupported HTTP verb was passed to Call.
	ErrInvalidMethod = errors.New("invalid HTTP method")

	// ErrResourceNotFound indicates the upstream resource does not exist
	// (HTTP 400 with Venmo error code 283).
	ErrResourceNotFound = errors.New("resource not found")

	// ErrEmptyBody indicates a response arrived without a usable body.
	ErrEmptyBody = errors.New("empty response body")

	// ErrNoPaymentMethod indicates no default payment method was found.
	ErrNoPaymentMethod = errors.New("no default payment method found")
)

// Venmo error codes embedded in response bodies. These are defined by the
// upstream service and must match exactly.
const (
	codeResourceNotFound    = 283
	codeTwoFactorRequired   = 81109
	codeAlreadyReminded     = 2907
	codeNoPendingPayment    = 2901
	codeNoPendingPaymentAlt = 2905
	codeInsufficientBalance = 13006
)

// APIError represents a Venmo API error response that was not recognized
// as success or an acceptable domain error.
type APIError struct {
	StatusCode int
	Body       any
}

// Error implements the error interface
func (e *APIError) Error() string {
	raw, err := json.Marshal(e.Body)
	if err != nil {
		return fmt.Sprintf("venmo API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("venmo API error: status %d: %s", e.StatusCode, raw)
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// TransportError represents a network-level failure (DNS, timeout, refused
// connection). It is never reclassified into an API error.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure calling %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AuthError represents a failed login or two-factor step. Reason carries the
// upstream-provided message when one was available.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// MissingKeyError indicates a nested key was absent or empty while walking a
// response body during deserialization.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("key %q not found in response data", e.Key)
}

// PaymentError represents a business-rule rejection embedded in an otherwise
// successful payment response.
type PaymentError struct {
	Code    int
	Title   string
	Message string
}

func (e *PaymentError) Error() string {
	if e.Title != "" || e.Message != "" {
		return fmt.Sprintf("payment error %d: %s %s", e.Code, e.Title, e.Message)
	}
	return fmt.Sprintf("payment error %d", e.Code)
}

// IsAlreadyReminded reports whether a reminder was already sent for the payment.
func (e *PaymentError) IsAlreadyReminded() bool {
	return e.Code == codeAlreadyReminded
}

// IsNoPendingPayment reports whether there was no pending payment to update.
func (e *PaymentError) IsNoPendingPayment() bool {
	return e.Code == codeNoPendingPayment || e.Code == codeNoPendingPaymentAlt
}

// IsInsufficientBalance reports whether the payment was rejected for lack of funds.
func (e *PaymentError) IsInsufficientBalance() bool {
	return e.Code == codeInsufficientBalance
}
