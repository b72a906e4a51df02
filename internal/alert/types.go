package alert

import (
	"time"

	"github.com/google/uuid"
)

// Event announces a plate read next to a helmet violation.
type Event struct {
	ID     string    `json:"id"`
	Plate  string    `json:"plate"`
	Source string    `json:"source"`
	Count  int64     `json:"count_today,omitempty"`
	At     time.Time `json:"at"`
}

func NewEvent(plate, source string, at time.Time) Event {
	return Event{
		ID:     uuid.NewString(),
		Plate:  plate,
		Source: source,
		At:     at.UTC(),
	}
}
