package transit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuspulse/internal/upstream"
)

func TestLocationsDecodesCandidates(t *testing.T) {
	var gotQuery, gotResults string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/locations", r.URL.Path)
		gotQuery = r.URL.Query().Get("query")
		gotResults = r.URL.Query().Get("results")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"type":"stop","id":"de:11000:900100003","ibnr":"8089001","name":"S+U Alexanderplatz",
			 "location":{"latitude":52.521508,"longitude":13.411267}},
			{"type":"location","name":"Some POI","latitude":52.4,"longitude":13.1}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	places, err := c.Locations(context.Background(), "Alexanderplatz", 5)
	require.NoError(t, err)
	assert.Equal(t, "Alexanderplatz", gotQuery)
	assert.Equal(t, "5", gotResults)

	require.Len(t, places, 2)
	assert.Equal(t, "8089001", places[0].IBNR)
	require.NotNil(t, places[0].Location)
	require.NotNil(t, places[0].Location.Latitude)
	assert.InDelta(t, 52.521508, *places[0].Location.Latitude, 1e-9)
	require.NotNil(t, places[1].Latitude)
	assert.Nil(t, places[1].Location)
}

func TestJourneysStopIDRequest(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/journeys", r.URL.Path)
		got = map[string]string{}
		for k := range r.URL.Query() {
			got[k] = r.URL.Query().Get(k)
		}
		_, _ = w.Write([]byte(`{"journeys":[{"legs":[{"mode":"bus","departure":"2026-03-09T08:02:00+01:00","arrival":"2026-03-09T08:19:00+01:00"}]}]}`))
	}))
	defer srv.Close()

	arrival := time.Date(2026, 3, 9, 8, 20, 0, 0, time.FixedZone("CET", 3600))
	c := NewClient(srv.URL)
	journeys, err := c.Journeys(context.Background(), JourneyRequest{
		FromID:  "900000012345",
		ToID:    "900000054321",
		Modes:   ModeFilters{Subway: true, Suburban: true, Regional: true, Tram: true},
		Arrival: &arrival,
	})
	require.NoError(t, err)
	require.Len(t, journeys, 1)
	require.Len(t, journeys[0].Legs, 1)
	assert.Equal(t, "bus", journeys[0].Legs[0].Mode)

	assert.Equal(t, "900000012345", got["from"])
	assert.Equal(t, "900000054321", got["to"])
	assert.Equal(t, "true", got["products[subway]"])
	assert.Equal(t, "false", got["products[bus]"])
	assert.Equal(t, "2026-03-09T08:20:00+01:00", got["arrival"])
	assert.Equal(t, "3", got["results"])
	assert.Equal(t, "false", got["polylines"])
}

func TestJourneysCoordinateRequest(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = map[string]string{}
		for k := range r.URL.Query() {
			got[k] = r.URL.Query().Get(k)
		}
		_, _ = w.Write([]byte(`{"journeys":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	journeys, err := c.Journeys(context.Background(), JourneyRequest{
		From:     &Coordinate{Latitude: 52.5, Longitude: 13.4},
		FromName: "Home",
		To:       &Coordinate{Latitude: 52.42, Longitude: 13.05},
		ToName:   "Campus Jungfernsee",
		Modes:    AllModes(),
	})
	require.NoError(t, err)
	assert.Empty(t, journeys)

	assert.Equal(t, "52.5", got["from.latitude"])
	assert.Equal(t, "13.4", got["from.longitude"])
	assert.Equal(t, "Home", got["from.name"])
	assert.Equal(t, "Campus Jungfernsee", got["to.name"])
	_, hasArrival := got["arrival"]
	assert.False(t, hasArrival)
}

func TestJourneysUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"invalid stop"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Journeys(context.Background(), JourneyRequest{FromID: "1", ToID: "2", Modes: AllModes()})
	require.Error(t, err)

	ue, ok := upstream.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, ue.Status)
	assert.Contains(t, ue.Body, "invalid stop")
}
