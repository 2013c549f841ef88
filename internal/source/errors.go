package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// FallbackMessage is reported when the upstream gives no usable error text.
const FallbackMessage = "failed to load data"

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 1024

// UpstreamError is the normalized form of a failed upstream fetch.
type UpstreamError struct {
	Message string
	// Status is the upstream HTTP status, or 500 when no response was received.
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream error (%d): %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("upstream error (%d): %s", e.Status, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsUpstreamError reports whether err carries an UpstreamError and returns it.
func IsUpstreamError(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// transportError wraps a failure where no HTTP response was received.
func transportError(err error) *UpstreamError {
	return &UpstreamError{Message: FallbackMessage, Status: http.StatusInternalServerError, Err: err}
}

// responseError builds an UpstreamError from a non-2xx response. The body is
// consumed up to maxErrorBody bytes.
func responseError(resp *http.Response) *UpstreamError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &UpstreamError{
		Message: errorMessage(body),
		Status:  resp.StatusCode,
	}
}

// errorMessage extracts the "error" field from a JSON error body. Both the
// flat {"error":"msg"} form and Google's {"error":{"message":"msg"}} form are
// understood.
func errorMessage(body []byte) string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return FallbackMessage
	}

	var s string
	if err := json.Unmarshal(envelope.Error, &s); err == nil {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
		return FallbackMessage
	}

	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &nested); err == nil && strings.TrimSpace(nested.Message) != "" {
		return strings.TrimSpace(nested.Message)
	}
	return FallbackMessage
}
