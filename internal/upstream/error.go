package upstream

import (
	"errors"
	"fmt"
)

// Error is a non-2xx reply from an external service (routing, geocoding or
// email delivery). Interactive callers surface the status and body; the
// reminder jobs treat it as a per-user skip. Transport failures stay plain
// wrapped errors.
type Error struct {
	Service string
	Status  int
	Body    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: http %d: %s", e.Service, e.Status, e.Body)
}

// As unwraps err into an *Error when it is one.
func As(err error) (*Error, bool) {
	var ue *Error
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
