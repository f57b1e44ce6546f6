package journey

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuspulse/internal/store"
	"campuspulse/internal/transit"
)

type fakeRouteService struct {
	journeys []transit.Journey
	err      error
	lastReq  transit.JourneyRequest
	called   bool
}

func (f *fakeRouteService) Journeys(_ context.Context, req transit.JourneyRequest) ([]transit.Journey, error) {
	f.called = true
	f.lastReq = req
	return f.journeys, f.err
}

func berlin(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	return loc
}

func TestBuildArrivalTime(t *testing.T) {
	loc, _ := time.LoadLocation("Europe/Berlin")
	now := time.Date(2026, 3, 9, 6, 0, 0, 0, loc)

	earlier := BuildArrivalTime("08:30", "earlier", now)
	require.NotNil(t, earlier)
	assert.Equal(t, time.Date(2026, 3, 9, 8, 20, 0, 0, loc), *earlier)

	later := BuildArrivalTime("08:30", "later", now)
	require.NotNil(t, later)
	assert.Equal(t, time.Date(2026, 3, 9, 8, 40, 0, 0, loc), *later)

	assert.Nil(t, BuildArrivalTime("", "earlier", now))
	assert.Nil(t, BuildArrivalTime("8h30", "earlier", now))
	assert.Nil(t, BuildArrivalTime("25:00", "earlier", now))
	assert.Nil(t, BuildArrivalTime("08:61", "later", now))
}

func TestPlanUsesStopIDPair(t *testing.T) {
	routes := &fakeRouteService{journeys: []transit.Journey{{Legs: []transit.Leg{{Mode: "bus"}}}}}
	loc := berlin(t)
	p := NewPlanner(routes, loc, func() time.Time { return time.Date(2026, 3, 9, 6, 0, 0, 0, loc) })

	prefs := store.DefaultPreferences()
	prefs.AllowBus = false
	prefs.ArrivalTime = "09:00"

	j, err := p.Plan(context.Background(),
		ResolvedLocation{StopID: "900000012345", Name: "Home"},
		ResolvedLocation{StopID: "900000054321", Name: "Campus"},
		prefs)
	require.NoError(t, err)
	require.NotNil(t, j)

	assert.Equal(t, "900000012345", routes.lastReq.FromID)
	assert.Equal(t, "900000054321", routes.lastReq.ToID)
	assert.Nil(t, routes.lastReq.From)
	assert.False(t, routes.lastReq.Modes.Bus)
	assert.True(t, routes.lastReq.Modes.Subway)
	require.NotNil(t, routes.lastReq.Arrival)
	assert.Equal(t, time.Date(2026, 3, 9, 8, 50, 0, 0, loc), *routes.lastReq.Arrival)
	assert.Equal(t, 3, routes.lastReq.Results)
}

func TestPlanFallsBackToCoordinates(t *testing.T) {
	routes := &fakeRouteService{journeys: []transit.Journey{{}}}
	p := NewPlanner(routes, berlin(t), nil)

	j, err := p.Plan(context.Background(),
		ResolvedLocation{Coord: &transit.Coordinate{Latitude: 52.5, Longitude: 13.4}, Name: "Home"},
		ResolvedLocation{StopID: "900000054321", Coord: &transit.Coordinate{Latitude: 52.42, Longitude: 13.05}, Name: "Campus"},
		store.DefaultPreferences())
	require.NoError(t, err)
	require.NotNil(t, j)

	// Only one end has a stop id, so the request must go by coordinates.
	assert.Empty(t, routes.lastReq.FromID)
	require.NotNil(t, routes.lastReq.From)
	assert.Equal(t, "Home", routes.lastReq.FromName)
	assert.Equal(t, "Campus", routes.lastReq.ToName)
	assert.Nil(t, routes.lastReq.Arrival)
}

func TestPlanAbsentWhenCoordinateMissing(t *testing.T) {
	routes := &fakeRouteService{}
	p := NewPlanner(routes, berlin(t), nil)

	j, err := p.Plan(context.Background(),
		ResolvedLocation{Name: "nowhere"},
		ResolvedLocation{StopID: "900000054321", Name: "Campus"},
		store.DefaultPreferences())
	require.NoError(t, err)
	assert.Nil(t, j)
	assert.False(t, routes.called, "no journey must be attempted without a routable origin")
}

func TestPlanAbsentWhenNoJourneys(t *testing.T) {
	p := NewPlanner(&fakeRouteService{}, berlin(t), nil)

	j, err := p.Plan(context.Background(),
		ResolvedLocation{StopID: "1"},
		ResolvedLocation{StopID: "2"},
		store.DefaultPreferences())
	require.NoError(t, err)
	assert.Nil(t, j)
}
