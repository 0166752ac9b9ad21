package shared

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Audit outcomes stored in activity_log.status.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeInfo    = "info"
)

// ActivityEntry represents a record stored in activity_log.
type ActivityEntry struct {
	Actor   string
	Action  string
	Detail  string
	Outcome string
	At      time.Time
}

// ActivityRecorder is the side-effect port services write audit facts through.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) error
}

// ActivityLogger writes records into activity_log.
type ActivityLogger struct {
	pool *pgxpool.Pool
}

// NewActivityLogger returns a new ActivityLogger.
func NewActivityLogger(pool *pgxpool.Pool) *ActivityLogger {
	return &ActivityLogger{pool: pool}
}

// Record persists the log entry. The write commits before the caller's
// operation returns, so a failure here propagates to the caller.
func (l *ActivityLogger) Record(ctx context.Context, entry ActivityEntry) error {
	if l == nil {
		return errors.New("activity logger not initialised")
	}
	if entry.Actor == "" || entry.Action == "" || entry.Outcome == "" {
		return errors.New("activity entry requires actor/action/outcome")
	}
	var detail any
	if entry.Detail != "" {
		detail = entry.Detail
	}
	_, err := l.pool.Exec(ctx,
		`INSERT INTO activity_log (user_email, action, details, status, created_at) VALUES ($1, $2, $3, $4, COALESCE($5, NOW()))`,
		entry.Actor, entry.Action, detail, entry.Outcome, nilTime(entry.At))
	return err
}

func nilTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

var _ ActivityRecorder = (*ActivityLogger)(nil)
