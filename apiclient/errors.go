package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
)

// Kind classifies a failed request.
type Kind int

const (
	// KindServerRejected means a response arrived with status >= 400.
	KindServerRejected Kind = iota + 1
	// KindUnreachable means no response arrived at all.
	KindUnreachable
	// KindTimeout means the global request bound elapsed.
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindServerRejected:
		return "server_rejected"
	case KindUnreachable:
		return "unreachable"
	case KindTimeout:
		return "timeout"
	}
	return "unknown"
}

// Cause narrows down why a server was unreachable.
type Cause string

const (
	CauseOffline  Cause = "offline"
	CauseRefused  Cause = "refused"
	CauseTimedOut Cause = "timed_out"
	CauseDNS      Cause = "dns"
	CauseUnknown  Cause = "unknown"
)

var unreachableMessages = map[Cause]string{
	CauseOffline:  "You appear to be offline. Check your network connection and try again.",
	CauseRefused:  "The server refused the connection. It may be down or restarting.",
	CauseTimedOut: "The connection to the server timed out. Please try again.",
	CauseDNS:      "The server address could not be resolved. Check the API URL or your DNS settings.",
	CauseUnknown:  "Unable to reach the server. Please try again.",
}

// RequestError is returned for every failed request. For server rejections
// Payload holds the decoded response body (JSON value or raw string).
type RequestError struct {
	Kind    Kind
	Cause   Cause
	Method  string
	URL     string
	Status  int
	Payload any
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is lets callers match on the shared sentinels, e.g. errors.Is(err, ErrUnauthorized).
func (e *RequestError) Is(target error) bool {
	switch target {
	case apperrors.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case apperrors.ErrNotFound:
		return e.Status == http.StatusNotFound
	case apperrors.ErrServerRejected:
		return e.Kind == KindServerRejected
	case apperrors.ErrUnreachable:
		return e.Kind == KindUnreachable
	case apperrors.ErrTimeout:
		return e.Kind == KindTimeout
	}
	return false
}

// AsRequestError extracts a *RequestError from err's chain.
func AsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if apperrors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}

// IsStatus reports whether err is a server rejection with the given status.
func IsStatus(err error, status int) bool {
	reqErr, ok := AsRequestError(err)
	return ok && reqErr.Kind == KindServerRejected && reqErr.Status == status
}

func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

func rejected(method, rawURL string, status int, payload any) *RequestError {
	return &RequestError{
		Kind:    KindServerRejected,
		Method:  method,
		URL:     rawURL,
		Status:  status,
		Payload: payload,
		Message: fmt.Sprintf("request failed with status code %d", status),
	}
}

// classifyTransport turns an error from http.Client.Do into a RequestError.
// Caller cancellation is not a transport failure and is returned unchanged.
func classifyTransport(method, rawURL string, err error, timeout time.Duration) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	reqErr := &RequestError{Method: method, URL: rawURL, Err: err}

	if cause, ok := unreachableCause(err); ok {
		reqErr.Kind = KindUnreachable
		reqErr.Cause = cause
		reqErr.Message = unreachableMessages[cause]
		return reqErr
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		reqErr.Kind = KindTimeout
		reqErr.Message = fmt.Sprintf("Connection timeout: the server did not respond within %s.", timeout)
		return reqErr
	}

	reqErr.Kind = KindUnreachable
	reqErr.Cause = CauseUnknown
	reqErr.Message = unreachableMessages[CauseUnknown]
	return reqErr
}

func unreachableCause(err error) (Cause, bool) {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return CauseDNS, true
	}
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return CauseRefused, true
	case errors.Is(err, syscall.ENETUNREACH), errors.Is(err, syscall.EHOSTUNREACH), errors.Is(err, syscall.ENETDOWN):
		return CauseOffline, true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" && opErr.Timeout() && !errors.Is(err, context.DeadlineExceeded) {
		return CauseTimedOut, true
	}

	var urlErr *url.Error
	msg := err.Error()
	if errors.As(err, &urlErr) {
		msg = urlErr.Err.Error()
	}
	switch {
	case strings.Contains(msg, "connection refused"):
		return CauseRefused, true
	case strings.Contains(msg, "no such host"):
		return CauseDNS, true
	case strings.Contains(msg, "network is unreachable"), strings.Contains(msg, "no route to host"):
		return CauseOffline, true
	case strings.Contains(msg, "dial") && strings.Contains(msg, "i/o timeout"):
		return CauseTimedOut, true
	}
	return "", false
}
