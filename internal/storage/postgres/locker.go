package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Locker guards batch jobs with session-level advisory locks so that two
// processes never run the same job concurrently.
type Locker struct {
	db *pgxpool.Pool
}

// NewLocker creates a Locker on db.
func NewLocker(db *pgxpool.Pool) *Locker {
	return &Locker{db: db}
}

// TryLock attempts to take the advisory lock for name without waiting.
//
// Postcondition: when ok is true, release must be called exactly once to
// unlock and return the held connection to the pool. A connection whose
// unlock fails is closed instead, which ends its session and drops the lock.
func (l *Locker) TryLock(ctx context.Context, name string) (release func(), ok bool, err error) {
	conn, err := l.db.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquiring connection for lock %q: %w", name, err)
	}
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock(hashtext($1))`, name).Scan(&ok); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("taking lock %q: %w", name, err)
	}
	if !ok {
		conn.Release()
		return nil, false, nil
	}
	return func() {
		ctx := context.Background()
		var unlocked bool
		if err := conn.QueryRow(ctx, `SELECT pg_advisory_unlock(hashtext($1))`, name).Scan(&unlocked); err != nil || !unlocked {
			_ = conn.Hijack().Close(ctx)
			return
		}
		conn.Release()
	}, true, nil
}
