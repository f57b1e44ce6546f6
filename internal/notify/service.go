package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"campuspulse/internal/journey"
	"campuspulse/internal/store"
	"campuspulse/internal/transit"
)

const (
	// returnLeadTime is how long before the last class ends that the
	// head-home reminder becomes eligible.
	returnLeadTime = 30 * time.Minute
	// returnWindow is how long eligibility lasts. Must be at least the
	// return job's polling interval or users can fall through the gap.
	returnWindow = 5 * time.Minute

	dailySubject  = "CampusPulse daily reminder"
	returnSubject = "CampusPulse reminder: time to head home"
)

// DataStore is the slice of the shared database the jobs read, plus the two
// dedup tables they own.
type DataStore interface {
	ListUsers(ctx context.Context) ([]store.User, error)
	PreferencesForUser(ctx context.Context, userID int64) (store.Preferences, error)
	ClassesForDay(ctx context.Context, userID int64, day time.Time) ([]store.ClassSession, error)
	LastClassEnd(ctx context.Context, userID int64, day time.Time) (time.Time, error)
	AlreadySent(ctx context.Context, userID int64, day time.Time, kind store.NotificationKind) (bool, error)
	MarkSent(ctx context.Context, userID int64, day time.Time, kind store.NotificationKind) (bool, error)
}

// LocationResolver resolves free-text place names to routable endpoints.
type LocationResolver interface {
	Resolve(ctx context.Context, query string) (journey.ResolvedLocation, error)
}

// JourneyPlanner plans a journey between two resolved endpoints.
type JourneyPlanner interface {
	Plan(ctx context.Context, origin, dest journey.ResolvedLocation, prefs store.Preferences) (*transit.Journey, error)
}

// Mailer delivers one HTML email.
type Mailer interface {
	Send(ctx context.Context, toEmail, subject, html string) error
}

// outcome classifies one user's processing inside a job tick. Every user
// yields exactly one outcome and the batch always continues.
type outcome int

const (
	outcomeSent outcome = iota
	outcomeSkipped
	outcomeFailed
)

// Service runs the two reminder jobs. All dependencies, including the
// clock, are explicit so ticks are reproducible in tests.
type Service struct {
	store    DataStore
	resolver LocationResolver
	planner  JourneyPlanner
	renderer *Renderer
	mailer   Mailer
	campus   string
	loc      *time.Location
	now      func() time.Time
	metrics  *Metrics
	log      zerolog.Logger
}

func NewService(
	dataStore DataStore,
	resolver LocationResolver,
	planner JourneyPlanner,
	renderer *Renderer,
	mailer Mailer,
	campus string,
	loc *time.Location,
	now func() time.Time,
	metrics *Metrics,
	log zerolog.Logger,
) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:    dataStore,
		resolver: resolver,
		planner:  planner,
		renderer: renderer,
		mailer:   mailer,
		campus:   campus,
		loc:      loc,
		now:      now,
		metrics:  metrics,
		log:      log,
	}
}

// RunDaily executes one daily-digest tick: every user with classes today who
// has not been notified yet gets the digest, with a home-to-campus journey
// when a home location is set.
func (s *Service) RunDaily(ctx context.Context) {
	s.runBatch(ctx, store.KindDaily, s.processDailyUser)
}

// RunReturn executes one return-reminder tick: users whose last class ends
// soon get the head-home reminder, with a campus-to-home journey.
func (s *Service) RunReturn(ctx context.Context) {
	s.runBatch(ctx, store.KindReturn, s.processReturnUser)
}

func (s *Service) runBatch(ctx context.Context, kind store.NotificationKind, process func(context.Context, store.User, time.Time) outcome) {
	start := time.Now()
	now := s.now().In(s.loc)
	log := s.log.With().Str("job", string(kind)).Str("run_id", uuid.NewString()).Logger()

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to list users")
		return
	}

	var sent, skipped, failed int
	for _, user := range users {
		select {
		case <-ctx.Done():
			log.Info().Int("processed", sent+skipped+failed).Int("remaining", len(users)-sent-skipped-failed).
				Msg("job interrupted")
			return
		default:
		}

		switch process(ctx, user, now) {
		case outcomeSent:
			sent++
			s.metrics.IncOutcome(string(kind), "sent")
		case outcomeSkipped:
			skipped++
			s.metrics.IncOutcome(string(kind), "skipped")
		case outcomeFailed:
			failed++
			s.metrics.IncOutcome(string(kind), "failed")
		}
	}

	if sent > 0 || failed > 0 {
		log.Info().
			Int("total", len(users)).
			Int("sent", sent).
			Int("skipped", skipped).
			Int("failed", failed).
			Dur("duration", time.Since(start)).
			Msg("job tick finished")
	}
}

func (s *Service) processDailyUser(ctx context.Context, user store.User, now time.Time) outcome {
	log := s.log.With().Str("job", "daily").Int64("user_id", user.ID).Logger()

	already, err := s.store.AlreadySent(ctx, user.ID, now, store.KindDaily)
	if err != nil {
		log.Error().Err(err).Msg("dedup check failed")
		return outcomeFailed
	}
	if already {
		return outcomeSkipped
	}

	classes, err := s.store.ClassesForDay(ctx, user.ID, now)
	if err != nil {
		log.Error().Err(err).Msg("failed to load classes")
		return outcomeFailed
	}
	if len(classes) == 0 {
		return outcomeSkipped
	}

	prefs, err := s.store.PreferencesForUser(ctx, user.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load preferences")
		return outcomeFailed
	}

	j, ok := s.planUserJourney(ctx, log, prefs, prefs.HomeLocation, s.campus)
	if !ok {
		return outcomeFailed
	}

	return s.deliver(ctx, log, user, now, store.KindDaily, dailySubject, classes, j)
}

func (s *Service) processReturnUser(ctx context.Context, user store.User, now time.Time) outcome {
	log := s.log.With().Str("job", "return").Int64("user_id", user.ID).Logger()

	lastEnd, err := s.store.LastClassEnd(ctx, user.ID, now)
	if err != nil {
		log.Error().Err(err).Msg("failed to load last class end")
		return outcomeFailed
	}
	if lastEnd.IsZero() {
		return outcomeSkipped
	}
	if !inReturnWindow(lastEnd, now) {
		return outcomeSkipped
	}

	already, err := s.store.AlreadySent(ctx, user.ID, now, store.KindReturn)
	if err != nil {
		log.Error().Err(err).Msg("dedup check failed")
		return outcomeFailed
	}
	if already {
		return outcomeSkipped
	}

	prefs, err := s.store.PreferencesForUser(ctx, user.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load preferences")
		return outcomeFailed
	}

	j, ok := s.planUserJourney(ctx, log, prefs, s.campus, prefs.HomeLocation)
	if !ok {
		return outcomeFailed
	}

	classes, err := s.store.ClassesForDay(ctx, user.ID, now)
	if err != nil {
		log.Error().Err(err).Msg("failed to load classes")
		return outcomeFailed
	}

	return s.deliver(ctx, log, user, now, store.KindReturn, returnSubject, classes, j)
}

// planUserJourney resolves both endpoints and plans a journey. A user with
// no home location, or a route the service cannot find, yields a nil
// journey and the email goes out without a route section; only an upstream
// or transport failure marks the user failed.
func (s *Service) planUserJourney(ctx context.Context, log zerolog.Logger, prefs store.Preferences, from, to string) (*transit.Journey, bool) {
	if prefs.HomeLocation == "" {
		return nil, true
	}

	origin, err := s.resolver.Resolve(ctx, from)
	if err != nil {
		log.Error().Err(err).Str("query", from).Msg("location resolution failed")
		s.metrics.IncJourney("error")
		return nil, false
	}
	dest, err := s.resolver.Resolve(ctx, to)
	if err != nil {
		log.Error().Err(err).Str("query", to).Msg("location resolution failed")
		s.metrics.IncJourney("error")
		return nil, false
	}

	j, err := s.planner.Plan(ctx, origin, dest, prefs)
	if err != nil {
		log.Error().Err(err).Msg("journey planning failed")
		s.metrics.IncJourney("error")
		return nil, false
	}
	if j == nil {
		s.metrics.IncJourney("none")
		return nil, true
	}
	s.metrics.IncJourney("found")
	return j, true
}

// deliver renders, sends and records one notification. The dedup record is
// written only after a successful send; a crash in between can duplicate
// one email on the next tick, which is accepted.
func (s *Service) deliver(ctx context.Context, log zerolog.Logger, user store.User, now time.Time, kind store.NotificationKind, subject string, classes []store.ClassSession, j *transit.Journey) outcome {
	start := time.Now()

	html, err := s.renderer.Render(user.Email, classes, j)
	if err != nil {
		log.Error().Err(err).Msg("failed to render email")
		return outcomeFailed
	}

	if err := s.mailer.Send(ctx, user.Email, subject, html); err != nil {
		log.Error().Err(err).Msg("failed to send email")
		return outcomeFailed
	}
	s.metrics.ObserveSend(time.Since(start).Seconds())

	created, err := s.store.MarkSent(ctx, user.ID, now, kind)
	if err != nil {
		log.Error().Err(err).Msg("failed to record notification")
		return outcomeFailed
	}
	if !created {
		// A concurrent tick sent and recorded first; the uniqueness
		// constraint is what keeps this at one record.
		log.Warn().Msg("notification already recorded by concurrent run")
	}

	log.Info().Str("kind", string(kind)).Msg("notification sent")
	return outcomeSent
}

// inReturnWindow reports whether now falls inside the eligibility window
// (lastEnd-30m, lastEnd-30m+5m]. With last class ending 14:00 the reminder
// fires between 13:31 and 13:35.
func inReturnWindow(lastEnd, now time.Time) bool {
	open := lastEnd.Add(-returnLeadTime)
	return now.After(open) && !now.After(open.Add(returnWindow))
}
