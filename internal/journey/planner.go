package journey

import (
	"context"
	"strconv"
	"strings"
	"time"

	"campuspulse/internal/store"
	"campuspulse/internal/transit"
)

// timingOffset is how far the requested arrival is shifted from the user's
// stated time, towards earlier or later.
const timingOffset = 10 * time.Minute

// RouteService is the journey-routing dependency.
type RouteService interface {
	Journeys(ctx context.Context, req transit.JourneyRequest) ([]transit.Journey, error)
}

// Planner builds routing requests from resolved endpoints and user
// preferences and keeps the best returned itinerary.
type Planner struct {
	routes RouteService
	loc    *time.Location
	now    func() time.Time
}

func NewPlanner(routes RouteService, loc *time.Location, now func() time.Time) *Planner {
	if now == nil {
		now = time.Now
	}
	return &Planner{routes: routes, loc: loc, now: now}
}

// Plan requests a journey between two resolved locations. It returns
// (nil, nil) when no journey can be attempted or the service finds none;
// only upstream or transport failures are errors.
func (p *Planner) Plan(ctx context.Context, origin, dest ResolvedLocation, prefs store.Preferences) (*transit.Journey, error) {
	req := transit.JourneyRequest{
		Modes: transit.ModeFilters{
			Subway:   prefs.AllowSubway,
			Suburban: prefs.AllowSuburban,
			Regional: prefs.AllowRegional,
			Tram:     prefs.AllowTram,
			Bus:      prefs.AllowBus,
		},
		Results: 3,
	}

	if origin.StopID != "" && dest.StopID != "" {
		req.FromID = origin.StopID
		req.ToID = dest.StopID
	} else {
		if origin.Coord == nil || dest.Coord == nil {
			return nil, nil
		}
		req.From = origin.Coord
		req.FromName = origin.Name
		req.To = dest.Coord
		req.ToName = dest.Name
	}

	if arrival := BuildArrivalTime(prefs.ArrivalTime, prefs.TimingPref, p.now().In(p.loc)); arrival != nil {
		req.Arrival = arrival
	}

	journeys, err := p.routes.Journeys(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(journeys) == 0 {
		return nil, nil
	}
	return &journeys[0], nil
}

// BuildArrivalTime turns an "HH:MM" preference into a concrete arrival
// constraint on now's civil date, shifted 10 minutes towards the timing
// preference ("later" pushes forward, anything else pulls back). Empty or
// unparsable input means no constraint.
func BuildArrivalTime(arrival, timingPref string, now time.Time) *time.Time {
	if arrival == "" {
		return nil
	}
	parts := strings.Split(arrival, ":")
	if len(parts) != 2 {
		return nil
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return nil
	}

	target := time.Date(now.Year(), now.Month(), now.Day(), hh, mm, 0, 0, now.Location())
	if timingPref == "later" {
		target = target.Add(timingOffset)
	} else {
		target = target.Add(-timingOffset)
	}
	return &target
}
