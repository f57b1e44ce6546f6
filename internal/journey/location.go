package journey

import (
	"context"
	"strings"
	"unicode"

	"campuspulse/internal/geocode"
	"campuspulse/internal/transit"
)

// ResolvedLocation is a routable endpoint derived from a free-text place
// name. Never persisted; recomputed per job run. A stop identifier is
// preferred over a bare coordinate because the routing service returns
// richer journeys for known stops.
type ResolvedLocation struct {
	StopID string
	Coord  *transit.Coordinate
	Name   string
}

// Routable reports whether the location can anchor a journey request.
func (l ResolvedLocation) Routable() bool {
	return l.StopID != "" || l.Coord != nil
}

// PlaceSearcher is the transit place-search dependency.
type PlaceSearcher interface {
	Locations(ctx context.Context, query string, limit int) ([]transit.Place, error)
}

// Geocoder is the fallback free-text geocoding dependency.
type Geocoder interface {
	Search(ctx context.Context, query string) (*geocode.Result, error)
}

// Resolver turns free-text place names into routable endpoints.
type Resolver struct {
	places   PlaceSearcher
	geocoder Geocoder
}

func NewResolver(places PlaceSearcher, geocoder Geocoder) *Resolver {
	return &Resolver{places: places, geocoder: geocoder}
}

// Resolve finds the best routable endpoint for the query. Candidate order:
// first place-search candidate with a stable stop identifier, then the
// first with a coordinate, then the geocoder's best match. When everything
// comes up empty the result carries only the original query as its name.
func (r *Resolver) Resolve(ctx context.Context, query string) (ResolvedLocation, error) {
	places, err := r.places.Locations(ctx, query, 5)
	if err != nil {
		return ResolvedLocation{}, err
	}

	for _, p := range places {
		stopID := normalizeStopID(p)
		if stopID == "" {
			continue
		}
		return ResolvedLocation{
			StopID: stopID,
			Coord:  extractCoord(p),
			Name:   nameOr(p.Name, query),
		}, nil
	}
	for _, p := range places {
		if coord := extractCoord(p); coord != nil {
			return ResolvedLocation{Coord: coord, Name: nameOr(p.Name, query)}, nil
		}
	}

	result, err := r.geocoder.Search(ctx, query)
	if err != nil {
		return ResolvedLocation{}, err
	}
	if result == nil {
		return ResolvedLocation{Name: query}, nil
	}
	return ResolvedLocation{
		Coord: &transit.Coordinate{Latitude: result.Latitude, Longitude: result.Longitude},
		Name:  nameOr(result.DisplayName, query),
	}, nil
}

// normalizeStopID extracts a stable numeric stop identifier from a place
// candidate, trying ibnr, then the candidate's own id, then the parent
// station's id. Compound values keep only the final colon segment, and a
// segment counts only if it is all digits.
func normalizeStopID(p transit.Place) string {
	if id := pickID(p.IBNR); id != "" {
		return id
	}
	if id := pickID(p.ID); id != "" {
		return id
	}
	if p.Station != nil {
		if id := pickID(p.Station.ID); id != "" {
			return id
		}
	}
	return ""
}

func pickID(val string) string {
	if val == "" {
		return ""
	}
	parts := strings.Split(val, ":")
	last := parts[len(parts)-1]
	if last == "" || !allDigits(last) {
		return ""
	}
	return last
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// extractCoord reads a coordinate from the candidate itself, falling back
// to its nested location object.
func extractCoord(p transit.Place) *transit.Coordinate {
	if p.Latitude != nil && p.Longitude != nil {
		return &transit.Coordinate{Latitude: *p.Latitude, Longitude: *p.Longitude}
	}
	if p.Location != nil && p.Location.Latitude != nil && p.Location.Longitude != nil {
		return &transit.Coordinate{Latitude: *p.Location.Latitude, Longitude: *p.Location.Longitude}
	}
	return nil
}

func nameOr(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
