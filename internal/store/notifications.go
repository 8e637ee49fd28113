package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

// CreateNotification appends a notification for a user. matchID is optional.
func CreateNotification(ctx context.Context, db *sql.DB, recipientID int64, matchID *int64, message string) (*model.Notification, error) {
	var id int64
	err := db.QueryRowContext(ctx,
		`INSERT INTO notifications (recipient_id, match_id, message) VALUES (?, ?, ?) RETURNING id`,
		recipientID, matchID, message,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}

	n := &model.Notification{}
	err = db.QueryRowContext(ctx,
		`SELECT id, recipient_id, match_id, message, is_read, created_at FROM notifications WHERE id = ?`, id,
	).Scan(&n.ID, &n.RecipientID, &n.MatchID, &n.Message, &n.Read, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("reading notification: %w", err)
	}
	return n, nil
}

// ListNotifications returns a user's notifications, newest first.
func ListNotifications(ctx context.Context, db *sql.DB, recipientID int64, unreadOnly bool) ([]model.Notification, error) {
	query := `SELECT id, recipient_id, match_id, message, is_read, created_at
	          FROM notifications WHERE recipient_id = ?`
	if unreadOnly {
		query += ` AND is_read = 0`
	}
	query += ` ORDER BY id DESC`

	rows, err := db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.MatchID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationRead marks one of the recipient's notifications as read.
func MarkNotificationRead(ctx context.Context, db *sql.DB, id, recipientID int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND recipient_id = ?`,
		id, recipientID,
	)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
