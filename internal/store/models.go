package store

import "time"

// User identifies a notification recipient. Accounts are created by the
// auth service; this service only reads them.
type User struct {
	ID    int64
	Email string
}

// Preferences holds a user's transit and timing preferences. A missing row
// means DefaultPreferences.
type Preferences struct {
	AllowSubway   bool
	AllowSuburban bool
	AllowRegional bool
	AllowTram     bool
	AllowBus      bool
	TimingPref    string // "earlier" or "later"
	ArrivalTime   string // "HH:MM", empty when unset
	HomeLocation  string // free text, empty when unset
}

// DefaultPreferences returns the preferences assumed for users without a
// stored row: every mode allowed, arrive earlier, no arrival time, no home.
func DefaultPreferences() Preferences {
	return Preferences{
		AllowSubway:   true,
		AllowSuburban: true,
		AllowRegional: true,
		AllowTram:     true,
		AllowBus:      true,
		TimingPref:    "earlier",
	}
}

// ClassSession is one scheduled class of one user.
type ClassSession struct {
	CourseName string
	StartTime  time.Time
	EndTime    time.Time
	Location   string
}

// NotificationKind distinguishes the two reminder jobs.
type NotificationKind string

const (
	KindDaily  NotificationKind = "daily"
	KindReturn NotificationKind = "return"
)

// NotificationLogEntry is one persisted delivery record.
type NotificationLogEntry struct {
	UserID    int64
	Email     string
	SendDate  time.Time
	Kind      NotificationKind
	CreatedAt time.Time
}
