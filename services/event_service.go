package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"ticketfront/internal/api"
	"ticketfront/internal/status"
	"ticketfront/models"
)

const eventDateLayout = "2006-01-02 15:04:05"

// EventInput is the payload for creating an event. Price and capacity
// are validated locally with the backend's own rules before any request
// is sent.
type EventInput struct {
	Name        string
	Description string
	Location    string
	LocationLat *float64
	LocationLng *float64
	Date        string // `YYYY-MM-DD HH:MM:SS`, must be in the future
	Price       decimal.Decimal
	Capacity    int
	Image       string
}

func (in *EventInput) validate(now time.Time) error {
	if in.Name == "" {
		return status.Invalid("name", "required")
	}
	if in.Location == "" {
		return status.Invalid("location", "required")
	}
	if in.Description == "" {
		return status.Invalid("description", "required")
	}
	date, err := time.Parse(eventDateLayout, in.Date)
	if err != nil {
		return status.Invalid("date", "must be formatted YYYY-MM-DD HH:MM:SS")
	}
	if !date.After(now) {
		return status.Invalid("date", "must be in the future")
	}
	if in.Price.IsNegative() {
		return status.Invalid("price", "cannot be negative")
	}
	if in.Capacity <= 0 {
		return status.Invalid("capacity", "must be greater than 0")
	}
	return nil
}

// EventService covers the organizer side: creating, deleting and
// listing the caller's own events.
type EventService struct {
	api     *api.Client
	session *SessionService
}

func NewEventService(session *SessionService) *EventService {
	return &EventService{
		api:     session.Client(),
		session: session,
	}
}

// CreateEvent posts a new event. The backend generates one available
// ticket per unit of capacity.
func (s *EventService) CreateEvent(ctx context.Context, input EventInput) (*models.Event, error) {
	if !s.session.Authenticated() {
		return nil, status.ErrUnauthenticated
	}
	if err := input.validate(time.Now()); err != nil {
		return nil, err
	}

	body := map[string]any{
		"name":        input.Name,
		"description": input.Description,
		"location":    input.Location,
		"date":        input.Date,
		"price":       input.Price.InexactFloat64(),
		"capacity":    input.Capacity,
	}
	if input.LocationLat != nil {
		body["location_lat"] = *input.LocationLat
	}
	if input.LocationLng != nil {
		body["location_lng"] = *input.LocationLng
	}
	if input.Image != "" {
		body["image"] = input.Image
	} else {
		body["image"] = nil
	}

	var event models.Event
	if err := s.api.Post(ctx, "/events/", body, &event); err != nil {
		return nil, fmt.Errorf("CreateEvent: %w", err)
	}

	slog.Info("events: created", "event_id", event.ID, "name", event.Name)
	return &event, nil
}

// DeleteEvent removes an event the caller owns. The backend's 403 for
// someone else's event surfaces as a conflict.
func (s *EventService) DeleteEvent(ctx context.Context, eventID int) error {
	if !s.session.Authenticated() {
		return status.ErrUnauthenticated
	}

	if err := s.api.Delete(ctx, fmt.Sprintf("/events/%d", eventID), nil); err != nil {
		return fmt.Errorf("DeleteEvent: %w", err)
	}

	slog.Info("events: deleted", "event_id", eventID)
	return nil
}

// MyEvents lists the events the caller created.
func (s *EventService) MyEvents(ctx context.Context) ([]models.Event, error) {
	if !s.session.Authenticated() {
		return nil, status.ErrUnauthenticated
	}

	var events []models.Event
	if err := s.api.Get(ctx, "/events/my-events", nil, &events); err != nil {
		return nil, fmt.Errorf("MyEvents: %w", err)
	}
	return events, nil
}
