// Package httputil provides HTTP helpers shared by the publishers.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrUnauthorized marks a 401/403 answer. It is never retried.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRetriesExhausted is returned when every attempt hit a retryable failure.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

const defaultMaxAttempts = 3

// Policy bounds DoWithRetry. MaxAttempts counts the first try.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DoWithRetry executes req and retries with a fixed delay on transport errors,
// HTTP 429 and 5xx. A 401 or 403 returns ErrUnauthorized at once; any other
// status is handed back to the caller. The request body is replayed through
// req.GetBody, so build requests with a bytes reader.
//
// If the context is cancelled during a wait the function returns ctx.Err().
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, policy Policy) (*http.Response, error) {
	attempts := policy.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		attemptReq, err := replay(ctx, req)
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(attemptReq)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			drain(resp)
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, resp.Status)
		case retryable(resp.StatusCode):
			drain(resp)
			lastErr = fmt.Errorf("server returned %s", resp.Status)
		default:
			return resp, nil
		}

		if attempt >= attempts {
			return nil, fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, attempt, lastErr)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(policy.Delay):
		}
	}
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func replay(ctx context.Context, req *http.Request) (*http.Request, error) {
	clone := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("replay body: %w", err)
		}
		clone.Body = body
	}
	return clone, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
