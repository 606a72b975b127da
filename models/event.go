package models

import (
	"fmt"
	"strings"
	"time"
)

// EventTime accepts both the backend's `YYYY-MM-DD HH:MM:SS` wire format
// and RFC 3339 timestamps.
type EventTime struct {
	time.Time
}

const eventTimeLayout = "2006-01-02 15:04:05"

func (t *EventTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{eventTimeLayout, time.RFC3339, "2006-01-02T15:04:05"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("models: cannot parse event time %q", s)
}

func (t EventTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(eventTimeLayout) + `"`), nil
}

type Event struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	LocationLat *float64  `json:"location_lat,omitempty"`
	LocationLng *float64  `json:"location_lng,omitempty"`
	Date        EventTime `json:"date"`
	Price       float64   `json:"price"`
	Capacity    int       `json:"capacity"`
	TicketsSold int       `json:"tickets_sold"`
	Category    string    `json:"category,omitempty"`
	Image       string    `json:"image,omitempty"`
	Status      string    `json:"status,omitempty"` // upcoming, ongoing, completed
	UserID      int       `json:"user_id,omitempty"`
}

// Availability derives capacity minus tickets sold from the cached
// snapshot, clamped at zero. The backend count is authoritative; this is
// only a fallback for display before the live count arrives.
func (e *Event) Availability() int {
	n := e.Capacity - e.TicketsSold
	if n < 0 {
		return 0
	}
	return n
}

// EventFilter selects a catalog page. Zero-valued fields are omitted
// from the query string; the backend treats absent as "no filter".
type EventFilter struct {
	Page      int
	Search    string
	Category  string
	StartDate string
	EndDate   string
}

type EventPage struct {
	Events     []Event `json:"events"`
	TotalPages int     `json:"total_pages"`
}

// EventSummary pairs a listed event with its live availability count.
// Availability is nil when the count could not be fetched; the view
// degrades that one card instead of failing the page.
type EventSummary struct {
	Event        Event
	Availability *int
}
