package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error describes a failed remote call. StatusCode is zero for transport failures
// (unreachable server, timeout, malformed response) and the HTTP status otherwise.
type Error struct {
	Op         string
	Method     string
	Path       string
	StatusCode int
	Detail     string
	RequestID  string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Reason is the human-readable cause: the server detail when present, otherwise a
// status-based message, otherwise the transport cause.
func (e *Error) Reason() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.StatusCode != 0:
		return fmt.Sprintf("HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "request failed"
	}
}

// Transport reports whether the request never produced a usable response.
func (e *Error) Transport() bool {
	return e.StatusCode == 0
}

// IsTransport reports whether err is a transport failure from this package.
func IsTransport(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Transport()
}

// IsRejected reports whether err is a non-2xx response from the server.
func IsRejected(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && !apiErr.Transport()
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Reason returns the human-readable reason of err.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Reason()
	}
	return err.Error()
}

// parseDetail extracts the "detail" field of an error body. FastAPI sends either a
// string or a list of validation errors with a "msg" each.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}
