package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuspulse/internal/store"
	"campuspulse/internal/transit"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer("Campus Jungfernsee")
	require.NoError(t, err)
	return r
}

func TestRenderClassRows(t *testing.T) {
	r := newTestRenderer(t)
	loc, _ := time.LoadLocation("Europe/Berlin")
	classes := []store.ClassSession{
		{
			CourseName: "Algorithms",
			StartTime:  time.Date(2026, 3, 9, 9, 0, 0, 0, loc),
			EndTime:    time.Date(2026, 3, 9, 10, 30, 0, 0, loc),
			Location:   "Room 2.01",
		},
		{
			CourseName: "Databases",
			StartTime:  time.Date(2026, 3, 9, 11, 0, 0, 0, loc),
			Location:   "Room 1.10",
		},
	}

	html, err := r.Render("student@ue-germany.de", classes, nil)
	require.NoError(t, err)

	assert.Contains(t, html, "Good morning student@ue-germany.de")
	assert.Contains(t, html, "09:00-10:30")
	assert.Contains(t, html, "Algorithms")
	// End time missing: only the start is shown.
	assert.Contains(t, html, "<td>11:00</td>")
	assert.NotContains(t, html, "11:00-")
	assert.NotContains(t, html, "Route to")
	assert.NotContains(t, html, "No classes today.")
}

func TestRenderEmptyDay(t *testing.T) {
	r := newTestRenderer(t)

	html, err := r.Render("student@ue-germany.de", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, html, "No classes today.")
}

func TestRenderJourneySection(t *testing.T) {
	r := newTestRenderer(t)
	j := &transit.Journey{Legs: []transit.Leg{
		{
			Origin:      &transit.Stop{Name: "Home Stop"},
			Destination: &transit.Stop{Name: "S Jungfernsee"},
			Departure:   "2026-03-09T08:02:00+01:00",
			Arrival:     "2026-03-09T08:19:00+01:00",
			Line:        &transit.Line{Name: "S1"},
			Mode:        "train",
		},
		{
			Departure: "2026-03-09T08:21:00+01:00",
			Arrival:   "2026-03-09T08:27:00+01:00",
			Mode:      "bus",
		},
	}}

	html, err := r.Render("student@ue-germany.de", nil, j)
	require.NoError(t, err)

	assert.Contains(t, html, "Route to Campus Jungfernsee")
	assert.Contains(t, html, "S1")
	assert.Contains(t, html, "08:02-08:19")
	assert.Contains(t, html, "Home Stop")
	assert.Contains(t, html, "S Jungfernsee")
	// Leg without a line falls back to its mode and placeholder stops.
	assert.Contains(t, html, "<td>bus</td>")
	assert.Contains(t, html, "Start")
	assert.Contains(t, html, "End")
}
