package telegram

import (
	"context"
	"errors"
	"net"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// FailureKind is the closed set of remote-call failure classes. Both the
// sender and the inbound loop branch on it instead of on error types.
type FailureKind int

const (
	FailNone FailureKind = iota
	FailRateLimited
	FailForbidden
	FailUnauthorized
	FailServer
	FailTimeout
	FailOther
)

func (k FailureKind) String() string {
	switch k {
	case FailNone:
		return "none"
	case FailRateLimited:
		return "rate_limited"
	case FailForbidden:
		return "forbidden"
	case FailUnauthorized:
		return "unauthorized"
	case FailServer:
		return "server_error"
	case FailTimeout:
		return "timeout"
	default:
		return "other"
	}
}

// SendError carries a classified failure. RetryAfter is set only for
// FailRateLimited.
type SendError struct {
	Kind       FailureKind
	RetryAfter time.Duration
	Err        error
}

func (e SendError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e SendError) Unwrap() error { return e.Err }

// defaultRetryAfter is used when the API signals flood control without a
// concrete retry-after value.
const defaultRetryAfter = 5 * time.Second

// Classify maps an API error into the failure taxonomy.
func Classify(err error) SendError {
	if err == nil {
		return SendError{Kind: FailNone}
	}

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		retryAfter := 0
		if apiErr.ResponseParameters.RetryAfter > 0 {
			retryAfter = apiErr.ResponseParameters.RetryAfter
		}
		switch {
		case apiErr.Code == 429 || retryAfter > 0:
			d := defaultRetryAfter
			if retryAfter > 0 {
				d = time.Duration(retryAfter) * time.Second
			}
			return SendError{Kind: FailRateLimited, RetryAfter: d, Err: err}
		case apiErr.Code == 403:
			return SendError{Kind: FailForbidden, Err: err}
		case apiErr.Code == 401:
			return SendError{Kind: FailUnauthorized, Err: err}
		case apiErr.Code >= 500:
			return SendError{Kind: FailServer, Err: err}
		default:
			return SendError{Kind: FailOther, Err: err}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return SendError{Kind: FailTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return SendError{Kind: FailTimeout, Err: err}
	}

	return SendError{Kind: FailOther, Err: err}
}
