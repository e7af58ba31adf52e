package llama

import (
	"context"
	"errors"
	"net"
)

// Kind classifies why a completion call failed.
type Kind int

const (
	// KindUpstream covers every failure that is not a connect error or a timeout:
	// non-2xx statuses, unreadable bodies, malformed JSON.
	KindUpstream Kind = iota
	// KindUnavailable means the server could not be reached.
	KindUnavailable
	// KindTimeout means the call exceeded its deadline.
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindTimeout:
		return "timeout"
	default:
		return "upstream"
	}
}

// Error is returned by every failed Client call.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or KindUpstream if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

// classify wraps a transport error from http.Client.Do. Timeouts are checked
// first: a dial that times out is KindTimeout (504), only a dial that fails
// outright (refused, unreachable) is KindUnavailable (503).
func classify(err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Kind: KindTimeout, Err: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return &Error{Kind: KindUnavailable, Err: err}
	}

	return &Error{Kind: KindUpstream, Err: err}
}

func upstreamErr(err error) *Error {
	return &Error{Kind: KindUpstream, Err: err}
}
