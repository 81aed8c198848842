package oracle

import (
	"context"
	"time"

	"cafe_voice_backend/platform/logger"
)

// Extractor is a single-shot completion backend. Implementations return the
// raw model output for one system/user prompt pair.
type Extractor interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Client wraps an Extractor with the retry policy and output validation.
type Client struct {
	extractor Extractor
	policy    RetryPolicy
	timeout   time.Duration
	log       *logger.Logger
}

func NewClient(extractor Extractor, policy RetryPolicy, timeout time.Duration, log *logger.Logger) *Client {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{extractor: extractor, policy: policy, timeout: timeout, log: log}
}

// Query runs one extraction for the given call turn. Transient failures are
// retried with exponential backoff up to the policy ceiling; anything else
// fails immediately. The returned error is always a *Error.
func (c *Client) Query(ctx context.Context, callID string, input TurnInput) (*Result, error) {
	systemPrompt := buildSystemPrompt()
	userPrompt := buildUserPrompt(input)

	var lastErr error
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		result, err := c.attempt(ctx, systemPrompt, userPrompt)
		if err == nil {
			return result, nil
		}
		lastErr = err
		c.log.OracleAttempt(callID, attempt, err)

		if !retryable(err) {
			return nil, asOracleError(err, false)
		}
		if attempt == c.policy.MaxAttempts {
			break
		}

		select {
		case <-time.After(c.policy.delay(attempt)):
		case <-ctx.Done():
			return nil, &Error{Reason: "canceled while backing off", Transient: true, Err: ctx.Err()}
		}
	}

	return nil, asOracleError(lastErr, true)
}

func (c *Client) attempt(ctx context.Context, systemPrompt, userPrompt string) (*Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.extractor.Complete(attemptCtx, systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}
	return parseResult(raw)
}

func asOracleError(err error, transient bool) *Error {
	if oe, ok := err.(*Error); ok {
		return oe
	}
	reason := "extraction failed"
	if transient {
		reason = "retry ceiling exhausted"
	}
	return &Error{Reason: reason, Transient: transient, Err: err}
}
