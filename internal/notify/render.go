package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"campuspulse/internal/store"
	"campuspulse/internal/transit"
)

//go:embed templates/*.gohtml
var templatesFS embed.FS

// Renderer composes the notification email body. Rendering is pure: it does
// no I/O and takes everything it shows as arguments.
type Renderer struct {
	campus string
	tmpl   *template.Template
}

func NewRenderer(campus string) (*Renderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/reminder.gohtml")
	if err != nil {
		return nil, fmt.Errorf("parse email template: %w", err)
	}
	return &Renderer{campus: campus, tmpl: tmpl}, nil
}

type classRow struct {
	Time     string
	Course   string
	Location string
}

type legRow struct {
	Line        string
	Time        string
	Origin      string
	Destination string
}

type emailData struct {
	UserEmail string
	Campus    string
	Classes   []classRow
	Legs      []legRow
}

// Render builds the HTML body for one user's day. Classes come already
// ordered by start time; a nil journey omits the route section.
func (r *Renderer) Render(userEmail string, classes []store.ClassSession, j *transit.Journey) (string, error) {
	data := emailData{UserEmail: userEmail, Campus: r.campus}

	for _, c := range classes {
		row := classRow{
			Time:     c.StartTime.Format("15:04"),
			Course:   c.CourseName,
			Location: c.Location,
		}
		if !c.EndTime.IsZero() {
			row.Time = fmt.Sprintf("%s-%s", row.Time, c.EndTime.Format("15:04"))
		}
		data.Classes = append(data.Classes, row)
	}

	if j != nil {
		for _, leg := range j.Legs {
			data.Legs = append(data.Legs, legRow{
				Line:        legLabel(leg),
				Time:        fmt.Sprintf("%s-%s", clockPart(leg.Departure), clockPart(leg.Arrival)),
				Origin:      stopName(leg.Origin, "Start"),
				Destination: stopName(leg.Destination, "End"),
			})
		}
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return buf.String(), nil
}

func legLabel(leg transit.Leg) string {
	if leg.Line != nil && leg.Line.Name != "" {
		return leg.Line.Name
	}
	if leg.Mode != "" {
		return leg.Mode
	}
	return "Travel"
}

// clockPart slices HH:MM out of an ISO timestamp string without parsing it;
// leg timestamps pass through to the email verbatim otherwise.
func clockPart(ts string) string {
	if len(ts) < 16 {
		return ""
	}
	return ts[11:16]
}

func stopName(s *transit.Stop, fallback string) string {
	if s != nil && s.Name != "" {
		return s.Name
	}
	return fallback
}
