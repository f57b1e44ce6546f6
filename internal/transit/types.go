package transit

// Coordinate is a WGS84 point.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place is one candidate returned by the place-search endpoint. Identifier
// fields may be compound ("a:b:900000012345"); coordinates may live on the
// place itself (points of interest) or in the nested location object.
type Place struct {
	Type      string         `json:"type"`
	ID        string         `json:"id"`
	IBNR      string         `json:"ibnr"`
	Name      string         `json:"name"`
	Latitude  *float64       `json:"latitude"`
	Longitude *float64       `json:"longitude"`
	Location  *PlaceLocation `json:"location"`
	Station   *ParentStation `json:"station"`
}

// PlaceLocation is the nested location object some candidates carry.
type PlaceLocation struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// ParentStation is the station a platform or stop belongs to.
type ParentStation struct {
	ID string `json:"id"`
}

// Line identifies the transit line serving a leg.
type Line struct {
	Name string `json:"name"`
}

// Leg is one continuous segment of a journey on a single line or mode.
type Leg struct {
	Origin      *Stop  `json:"origin"`
	Destination *Stop  `json:"destination"`
	Departure   string `json:"departure"`
	Arrival     string `json:"arrival"`
	Mode        string `json:"mode"`
	Line        *Line  `json:"line"`
}

// Stop names one end of a leg.
type Stop struct {
	Name string `json:"name"`
}

// Journey is one itinerary returned by the routing endpoint.
type Journey struct {
	Legs []Leg `json:"legs"`
}

type journeysResponse struct {
	Journeys []Journey `json:"journeys"`
}

// ModeFilters mirrors the five product toggles the routing endpoint accepts.
type ModeFilters struct {
	Subway   bool
	Suburban bool
	Regional bool
	Tram     bool
	Bus      bool
}

// AllModes returns filters with every product allowed.
func AllModes() ModeFilters {
	return ModeFilters{Subway: true, Suburban: true, Regional: true, Tram: true, Bus: true}
}
