package oracle

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"time"

	"google.golang.org/genai"

	"cafe_voice_backend/platform/ai/chatapi"
)

// RetryPolicy bounds the extraction attempts made for a single turn.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	Jitter      bool
}

// DefaultRetryPolicy matches the provider guidance for transient overload.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Multiplier:  2,
		Jitter:      true,
	}
}

// delay returns the backoff before the given retry, where attempt is the
// 1-based number of the attempt that just failed.
func (p RetryPolicy) delay(attempt int) time.Duration {
	d := float64(p.BaseDelay)
	for i := 1; i < attempt; i++ {
		d *= p.Multiplier
	}
	if p.Jitter {
		d += d * 0.25 * rand.Float64()
	}
	return time.Duration(d)
}

var retryableStatuses = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	529: true,
}

// retryable reports whether an attempt failure is worth repeating. Shape
// violations and client-side errors are terminal; overload, transient
// server errors and timeouts are not.
func retryable(err error) bool {
	var oe *Error
	if errors.As(err, &oe) {
		return false
	}

	var statusErr *chatapi.StatusError
	if errors.As(err, &statusErr) {
		return retryableStatuses[statusErr.StatusCode]
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatuses[apiErr.Code]
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}
