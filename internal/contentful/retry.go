package contentful

import (
	"context"
	"errors"

	"github.com/brightpath/coaching-api/internal/pkg/logger"
)

// WithConflictRetry runs op up to maxAttempts times, retrying only when
// it fails with ErrVersionConflict. op must re-read the entry fresh on
// every invocation so the retry carries the advanced version, not the
// stale one. Any other error, and the final conflict, propagate.
//
// Two near-simultaneous writers (the registration flow attaching a
// payment reference and the webhook confirming payment) can race on the
// same entry; a single bounded retry resolves the common case without
// risking an unbounded loop. Update and publish are separate phases and
// each get their own call; their retry budgets are independent.
func WithConflictRetry(ctx context.Context, maxAttempts int, op func(context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err = op(ctx)
		if err == nil || !errors.Is(err, ErrVersionConflict) {
			return err
		}
		if attempt < maxAttempts {
			logger.Warn("contentful: version conflict, re-reading and retrying",
				"attempt", attempt, "max", maxAttempts)
		}
	}
	return err
}
