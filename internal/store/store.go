package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides typed access to the shared CampusPulse database. The CRUD
// service owns writes to users, classes and preferences; this service reads
// them and owns the two notification dedup tables.
//
// Class timestamps are stored as civil times (TIMESTAMP without zone); the
// store rebases them into the service timezone at the scan boundary so the
// rest of the code never compares mismatched wall clocks.
type Store struct {
	db  *pgxpool.Pool
	loc *time.Location
}

func New(ctx context.Context, dsn string, loc *time.Location) (*Store, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db, loc: loc}, nil
}

// rebase reinterprets a scanned civil timestamp in the service timezone.
func (s *Store) rebase(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), s.loc)
}

func (s *Store) Close() {
	s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
