package ingest

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	qerrors "quotelake/internal/errors"
)

// Limiter paces outbound calls for one source: a per-minute rate plus an
// optional hard daily cap.
type Limiter struct {
	lim   *rate.Limiter
	daily int
	used  int
}

// NewLimiter builds a limiter from a source's rate limit. A non-positive
// per-minute value means unpaced.
func NewLimiter(rl RateLimit) *Limiter {
	limit := rate.Inf
	if rl.CallsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(rl.CallsPerMinute))
	}
	return &Limiter{
		lim:   rate.NewLimiter(limit, 1),
		daily: rl.CallsPerDay,
	}
}

// Wait blocks until the next call is allowed. It fails once the daily cap
// is exhausted.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.daily > 0 && l.used >= l.daily {
		return qerrors.Wrapf(qerrors.ErrRateLimitExceeded, "daily cap of %d calls reached", l.daily)
	}
	if err := l.lim.Wait(ctx); err != nil {
		return err
	}
	l.used++
	return nil
}

// ResetDaily resets the daily call counter.
func (l *Limiter) ResetDaily() {
	l.used = 0
}
