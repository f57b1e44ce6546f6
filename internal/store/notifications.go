package store

import (
	"context"
	"fmt"
	"time"
)

// AlreadySent reports whether a notification of the given kind has been
// recorded for the user on the given civil day.
func (s *Store) AlreadySent(ctx context.Context, userID int64, day time.Time, kind NotificationKind) (bool, error) {
	var (
		query string
		args  []any
	)
	switch kind {
	case KindDaily:
		query = `SELECT EXISTS(SELECT 1 FROM email_notifications WHERE user_id = $1 AND send_date = $2)`
		args = []any{userID, civilDate(day)}
	default:
		query = `SELECT EXISTS(SELECT 1 FROM reminder_logs WHERE user_id = $1 AND send_date = $2 AND kind = $3)`
		args = []any{userID, civilDate(day), string(kind)}
	}

	var exists bool
	if err := s.db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check notification record: %w", err)
	}
	return exists, nil
}

// MarkSent records a sent notification. The insert is a single
// insert-or-ignore so overlapping job runs cannot produce two records; the
// return value reports whether this call created the record. A false return
// means a concurrent run got there first.
func (s *Store) MarkSent(ctx context.Context, userID int64, day time.Time, kind NotificationKind) (bool, error) {
	var (
		query string
		args  []any
	)
	switch kind {
	case KindDaily:
		query = `
			INSERT INTO email_notifications (user_id, send_date)
			VALUES ($1, $2)
			ON CONFLICT (user_id, send_date) DO NOTHING
		`
		args = []any{userID, civilDate(day)}
	default:
		query = `
			INSERT INTO reminder_logs (user_id, send_date, kind)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, send_date, kind) DO NOTHING
		`
		args = []any{userID, civilDate(day), string(kind)}
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("record notification: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// NotificationLog returns all delivery records joined with user emails,
// newest first. Used by the ops report.
func (s *Store) NotificationLog(ctx context.Context) ([]NotificationLogEntry, error) {
	query := `
		SELECT n.user_id, u.email, n.send_date, n.kind, n.created_at
		FROM (
			SELECT user_id, send_date, 'daily' AS kind, created_at FROM email_notifications
			UNION ALL
			SELECT user_id, send_date, kind, created_at FROM reminder_logs
		) n
		JOIN users u ON u.id = n.user_id
		ORDER BY n.created_at DESC
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list notification log: %w", err)
	}
	defer rows.Close()

	var entries []NotificationLogEntry
	for rows.Next() {
		var (
			e    NotificationLogEntry
			kind string
		)
		if err := rows.Scan(&e.UserID, &e.Email, &e.SendDate, &kind, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification log: %w", err)
		}
		e.Kind = NotificationKind(kind)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// civilDate truncates a timestamp to its civil date for DATE columns.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
