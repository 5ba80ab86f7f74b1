package hub

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/muurk/vegehub/internal/logging"
)

// withRetries runs op up to retries+1 times, retrying only on transport
// failures. The retries parameter counts additional attempts after the
// first, so retries=0 means exactly one attempt. When every attempt fails
// at the transport level the result is a ConnectionError wrapping the last
// transport error; any other failure kind returns immediately unretried.
// Retries are immediate, with no backoff delay.
func (h *Hub) withRetries(ctx context.Context, path string, retries int, op func(context.Context) error) error {
	if retries < 0 {
		retries = 0
	}
	attempts := retries + 1

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}

		var te *TransportError
		if !errors.As(err, &te) {
			return err
		}
		last = err

		logging.Debug("device request failed",
			zap.String("device", h.ipAddress),
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Int("attempts", attempts),
			zap.Error(err))

		if ctx.Err() != nil {
			break
		}
	}

	return &ConnectionError{Path: path, Attempts: attempts, Err: last}
}
