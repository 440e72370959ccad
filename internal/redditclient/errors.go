package redditclient

import (
	"errors"
	"fmt"
)

// ErrorKind classifies upstream fetch failures. Only rate_limited and
// transient kinds are retried.
type ErrorKind string

const (
	KindNotFound    ErrorKind = "not_found"
	KindForbidden   ErrorKind = "forbidden"
	KindRateLimited ErrorKind = "rate_limited"
	KindTransient   ErrorKind = "transient"
)

// FetchError is a classified upstream failure for one request.
type FetchError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("reddit %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("reddit %s: %s", e.Op, e.Kind)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Retryable reports whether the failure may succeed on a later attempt.
func (e *FetchError) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindTransient
}

// KindOf extracts the error kind, defaulting to transient for
// unclassified errors.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindTransient
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == 404:
		return KindNotFound
	case status == 401 || status == 403:
		return KindForbidden
	case status == 429:
		return KindRateLimited
	default:
		return KindTransient
	}
}
