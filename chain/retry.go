// Copyright 2026 Helix Wallet
// This file is part of the Helix Wallet backend.
//
// This software is provided "as is", without warranty of any kind,
// express or implied, including but not limited to the warranties
// of merchantability, fitness for a particular purpose and
// noninfringement. In no event shall the authors or copyright
// holders be liable for any claim, damages, or other liability,
// whether in an action of contract, tort or otherwise, arising
// from, out of or in connection with the software or the use or
// other dealings in the software.

package chain

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"time"
)

const (
	// RequestTimeout bounds every outbound RPC call.
	RequestTimeout = 30 * time.Second

	retryAttempts  = 3
	retryBaseDelay = 500 * time.Millisecond
)

// HTTPError is a non-2xx response from a chain endpoint. 5xx responses are
// transient, everything else propagates immediately.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.Status, e.Body)
}

func (e *HTTPError) Temporary() bool {
	return e.Status >= 500 || e.Status == 429
}

// temporary reports whether an error is worth retrying: network level
// failures, timeouts and 5xx responses. Decode errors and 4xx are not.
func temporary(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Temporary()
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// Retry runs fn with bounded exponential backoff and jitter. The retry
// policy is centralized here so providers never roll their own loops.
func Retry(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
		err = fn(callCtx)
		cancel()
		if err == nil {
			return nil
		}
		if !temporary(err) || attempt == retryAttempts-1 {
			return err
		}
		delay := retryBaseDelay << attempt
		delay += time.Duration(rand.Int63n(int64(delay) / 2))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
