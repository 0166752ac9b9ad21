package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Throttle counts failed logins per email in Redis. It is best-effort:
// a Redis outage never blocks a legitimate login.
type Throttle struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
}

// NewThrottle constructs a Throttle. limit is the number of failures
// tolerated inside window before logins for that email are refused.
func NewThrottle(rdb *redis.Client, limit int64, window time.Duration) *Throttle {
	return &Throttle{rdb: rdb, limit: limit, window: window}
}

func (t *Throttle) key(email string) string {
	return fmt.Sprintf("login_failures:%s", email)
}

// Blocked reports whether the email has exceeded the failure budget.
func (t *Throttle) Blocked(ctx context.Context, email string) bool {
	if t == nil || t.rdb == nil {
		return false
	}
	count, err := t.rdb.Get(ctx, t.key(email)).Int64()
	if err != nil {
		return false
	}
	return count >= t.limit
}

// RecordFailure bumps the failure counter, starting the window on the
// first failure.
func (t *Throttle) RecordFailure(ctx context.Context, email string) error {
	if t == nil || t.rdb == nil {
		return nil
	}
	count, err := t.rdb.Incr(ctx, t.key(email)).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return t.rdb.Expire(ctx, t.key(email), t.window).Err()
	}
	return nil
}

// Reset clears the counter after a successful login.
func (t *Throttle) Reset(ctx context.Context, email string) error {
	if t == nil || t.rdb == nil {
		return nil
	}
	return t.rdb.Del(ctx, t.key(email)).Err()
}
