package venmo

import (
	"encoding/json"
	"io"
	"net/http"
	"slices"
)

// ValidatedResponse is an already-classified API response. It is built only by
// validateResponse and never mutated afterwards. Body holds the decoded JSON
// value (object or array); an unparsable body decodes to an empty object.
type ValidatedResponse struct {
	StatusCode int
	Header     http.Header
	Body       any
}

// HasError reports whether the body carries an embedded error object.
func (r *ValidatedResponse) HasError() bool {
	m, ok := r.Body.(map[string]any)
	if !ok {
		return false
	}
	_, ok = m["error"]
	return ok
}

// ErrorMessage returns the embedded error message, if any.
func (r *ValidatedResponse) ErrorMessage() string {
	m, ok := r.Body.(map[string]any)
	if !ok {
		return ""
	}
	errObj, ok := m["error"].(map[string]any)
	if !ok {
		return ""
	}
	msg, _ := errObj["message"].(string)
	return msg
}

// stringField returns a top-level string field from an object body.
func (r *ValidatedResponse) stringField(key string) (string, bool) {
	m, ok := r.Body.(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := m[key].(string)
	return s, ok
}

// validateResponse classifies a raw HTTP response. Statuses in [200,205) are
// always success. A 400 carrying error code 283 maps to ErrResourceNotFound and
// takes precedence over okCodes, so the sentinel can never be whitelisted.
// Bodies whose embedded error code is in okCodes pass through untouched for the
// caller to interpret. Everything else fails with an APIError.
func validateResponse(resp *http.Response, okCodes []int) (*ValidatedResponse, error) {
	defer resp.Body.Close()

	var body any = map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	if err == nil && len(raw) > 0 {
		var parsed any
		if json.Unmarshal(raw, &parsed) == nil && parsed != nil {
			body = parsed
		}
	}

	validated := &ValidatedResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}

	code, hasCode := embeddedErrorCode(body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 205:
		return validated, nil
	case resp.StatusCode == http.StatusBadRequest && hasCode && code == codeResourceNotFound:
		return nil, ErrResourceNotFound
	case hasCode && slices.Contains(okCodes, code):
		return validated, nil
	default:
		return nil, &APIError{StatusCode: resp.StatusCode, Body: body}
	}
}

// embeddedErrorCode extracts body.error.code from an object body.
func embeddedErrorCode(body any) (int, bool) {
	m, ok := body.(map[string]any)
	if !ok {
		return 0, false
	}
	errObj, ok := m["error"].(map[string]any)
	if !ok {
		return 0, false
	}
	code, ok := errObj["code"].(float64)
	if !ok {
		return 0, false
	}
	return int(code), true
}
