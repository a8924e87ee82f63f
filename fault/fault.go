// Package fault defines the error taxonomy shared by every stage of the acquisition pipeline.
//
// Errors are plain typed values inspected with errors.As; KindOf collapses any error chain
// into a stable label suitable for logs and task reports.
package fault

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Kind is a stable classification label for an error.
type Kind string

const (
	KindNetwork     Kind = "network"
	KindRateLimited Kind = "rate_limited"
	KindParse       Kind = "parse"
	KindIO          Kind = "io"
	KindConfig      Kind = "config"
	KindCanceled    Kind = "canceled"
	KindUnknown     Kind = "unknown"
)

// NetworkError is a transport level failure or a non-2xx response.
type NetworkError struct {
	URL        string
	StatusCode int
	RetryAfter time.Duration
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}

	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// RateLimited reports whether the remote host asked us to slow down.
func (e *NetworkError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		(e.StatusCode == http.StatusServiceUnavailable && e.RetryAfter > 0)
}

// Temporary reports whether repeating the same request may succeed.
func (e *NetworkError) Temporary() bool {
	switch {
	case e.StatusCode == 0:
		return true
	case e.StatusCode == http.StatusRequestTimeout,
		e.StatusCode == http.StatusTooEarly,
		e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 500:
		return true
	default:
		return false
	}
}

// ParseError means a remote document did not have the expected structure.
// It is never retried.
type ParseError struct {
	Provider string
	URL      string
	Selector string
	Expected int
	Found    int
	Err      error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf(
		"%s: unexpected document %s: %q expected at least %d element(s), found %d",
		e.Provider, e.URL, e.Selector, e.Expected, e.Found,
	)

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IOError is a local disk or permission failure.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ConfigError is an invalid configuration value detected before the pipeline starts.
type ConfigError struct {
	Key    string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %s", fmt.Sprint(e.Value), e.Key, e.Reason)
}

// Missing builds the ParseError reported when a selector matched fewer elements than required.
func Missing(provider, url, selector string, expected, found int) *ParseError {
	return &ParseError{
		Provider: provider,
		URL:      url,
		Selector: selector,
		Expected: expected,
		Found:    found,
	}
}

// FromResponse returns a NetworkError for a non-2xx response, nil otherwise.
func FromResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var url string
	if resp.Request != nil {
		url = resp.Request.URL.String()
	}

	return &NetworkError{
		URL:        url,
		StatusCode: resp.StatusCode,
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}
}

// FromTransport wraps an error returned by an http.Client.
// Cancellation of ctx is returned as the context error so it is never retried.
func FromTransport(ctx context.Context, url string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	return &NetworkError{URL: url, Err: err}
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}

	return 0
}

// Retryable reports whether err is a transient NetworkError.
// Caller cancellation reaches here unwrapped (see FromTransport), so a NetworkError
// carrying context.DeadlineExceeded is a client timeout and is retried.
func Retryable(err error) bool {
	if err == nil {
		return false
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Temporary()
	}

	return false
}

// RateLimited reports whether err carries a rate limiting response.
func RateLimited(err error) (time.Duration, bool) {
	var netErr *NetworkError
	if errors.As(err, &netErr) && netErr.RateLimited() {
		return netErr.RetryAfter, true
	}

	return 0, false
}

// KindOf classifies err.
func KindOf(err error) Kind {
	var (
		netErr    *NetworkError
		parseErr  *ParseError
		ioErr     *IOError
		configErr *ConfigError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.As(err, &configErr):
		return KindConfig
	case errors.As(err, &parseErr):
		return KindParse
	case errors.As(err, &ioErr):
		return KindIO
	case errors.As(err, &netErr):
		if netErr.RateLimited() {
			return KindRateLimited
		}
		return KindNetwork
	default:
		return KindUnknown
	}
}
