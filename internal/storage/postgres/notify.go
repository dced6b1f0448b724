package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/dominion/internal/notify"
)

// InsertNotification implements notify.Sink.
func (s *Store) InsertNotification(ctx context.Context, n *notify.Notification) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO notifications (user_id, kind, message, created_at)
		VALUES ($1, $2, $3, COALESCE($4, NOW()))
		RETURNING id, created_at`,
		n.UserID, string(n.Kind), n.Message, nullTime(n.CreatedAt),
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

// Notifications returns userID's notifications, newest first.
func (s *Store) Notifications(ctx context.Context, userID int64, limit int) ([]notify.Notification, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, kind, message, created_at
		FROM notifications WHERE user_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (notify.Notification, error) {
		var n notify.Notification
		err := row.Scan(&n.ID, &n.UserID, &n.Kind, &n.Message, &n.CreatedAt)
		return n, err
	})
}
