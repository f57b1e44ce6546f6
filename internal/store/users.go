package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ListUsers returns every registered user.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.Query(ctx, `SELECT id, email FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// PreferencesForUser returns the user's stored preferences, or
// DefaultPreferences when no row exists.
func (s *Store) PreferencesForUser(ctx context.Context, userID int64) (Preferences, error) {
	query := `
		SELECT allow_ubahn, allow_sbahn, allow_regional, allow_tram,
		       allow_bus, timing_pref, arrival_time, home_location
		FROM user_preferences
		WHERE user_id = $1
	`
	var (
		p           Preferences
		arrivalTime *string
		homeLoc     *string
	)
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&p.AllowSubway, &p.AllowSuburban, &p.AllowRegional, &p.AllowTram,
		&p.AllowBus, &p.TimingPref, &arrivalTime, &homeLoc,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DefaultPreferences(), nil
		}
		return Preferences{}, fmt.Errorf("get preferences for user %d: %w", userID, err)
	}
	if arrivalTime != nil {
		p.ArrivalTime = *arrivalTime
	}
	if homeLoc != nil {
		p.HomeLocation = *homeLoc
	}
	return p, nil
}

// ClassesForDay returns the user's classes starting on the given civil day,
// ordered by start time.
func (s *Store) ClassesForDay(ctx context.Context, userID int64, day time.Time) ([]ClassSession, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24*time.Hour - time.Nanosecond)

	query := `
		SELECT course_name, start_time, end_time, location
		FROM classes
		WHERE user_id = $1 AND start_time >= $2 AND start_time <= $3
		ORDER BY start_time ASC
	`
	rows, err := s.db.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list classes for user %d: %w", userID, err)
	}
	defer rows.Close()

	var classes []ClassSession
	for rows.Next() {
		var c ClassSession
		if err := rows.Scan(&c.CourseName, &c.StartTime, &c.EndTime, &c.Location); err != nil {
			return nil, fmt.Errorf("scan class: %w", err)
		}
		c.StartTime = s.rebase(c.StartTime)
		c.EndTime = s.rebase(c.EndTime)
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// LastClassEnd returns the latest class end time on the given civil day, or
// a zero time when no class ends that day.
func (s *Store) LastClassEnd(ctx context.Context, userID int64, day time.Time) (time.Time, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24*time.Hour - time.Nanosecond)

	query := `
		SELECT MAX(end_time)
		FROM classes
		WHERE user_id = $1 AND end_time >= $2 AND end_time <= $3
	`
	var lastEnd *time.Time
	if err := s.db.QueryRow(ctx, query, userID, start, end).Scan(&lastEnd); err != nil {
		return time.Time{}, fmt.Errorf("last class end for user %d: %w", userID, err)
	}
	if lastEnd == nil {
		return time.Time{}, nil
	}
	return s.rebase(*lastEnd), nil
}
