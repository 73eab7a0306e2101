package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AdvisoryLock is a session-scoped Postgres advisory lock. The
// reminder scheduler takes it around each scan cycle so overlapping
// runs (or a second instance) cannot both pass the reminder checks.
type AdvisoryLock struct {
	db  *pgxpool.Pool
	key int64
}

// NewAdvisoryLock creates an advisory lock for the given key
func NewAdvisoryLock(db *pgxpool.Pool, key int64) *AdvisoryLock {
	return &AdvisoryLock{db: db, key: key}
}

// TryAcquire attempts to take the lock without blocking. When the lock
// is held elsewhere it returns ok=false. On success the returned
// release function must be called to unlock.
func (l *AdvisoryLock) TryAcquire(ctx context.Context) (release func(), ok bool, err error) {
	conn, err := l.db.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire connection: %w", err)
	}

	var locked bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, l.key).Scan(&locked); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("failed to take advisory lock: %w", err)
	}
	if !locked {
		conn.Release()
		return nil, false, nil
	}

	release = func() {
		// Unlock on a fresh context; the scan context may be done.
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, l.key)
		conn.Release()
	}
	return release, true, nil
}
