package client

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/jrsteele09/go-travels-client/authmodel"
	"github.com/jrsteele09/go-travels-client/internal/errors"
)

// RequestError describes a call that did not produce a 2xx response.
// StatusCode is 0 when no response was received (network failure, timeout,
// cancelled context); the pipeline never treats that as an authentication
// failure.
type RequestError struct {
	Op         string
	Method     string
	Path       string
	StatusCode int
	Header     http.Header
	Body       []byte
	Err        error
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	target := e.Op
	if e.Method != "" || e.Path != "" {
		target = fmt.Sprintf("%s %s %s", e.Op, e.Method, e.Path)
	}
	switch {
	case e.Err != nil && e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d: %v", target, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", target, e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d", target, e.StatusCode)
	default:
		return target
	}
}

func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsUnauthorized reports an HTTP 401, and nothing else.
func (e *RequestError) IsUnauthorized() bool {
	return e != nil && e.StatusCode == http.StatusUnauthorized
}

// APIMessage returns the message carried in the API error body, falling back
// to the wrapped error.
func (e *RequestError) APIMessage() string {
	if e == nil {
		return ""
	}
	if apiErr, ok := authmodel.ParseAPIError(e.Body); ok {
		return apiErr.Text()
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.StatusCode)
}

// StatusCode extracts the HTTP status from err, or 0.
func StatusCode(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err is a RequestError for an HTTP 401.
func IsUnauthorized(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.IsUnauthorized()
}

// IsNetworkError reports failures where no HTTP response was received.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.StatusCode != 0 {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
