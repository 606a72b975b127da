package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"ticketfront/internal/api"
	"ticketfront/models"
)

// CatalogService fetches event listings and details. It is stateless;
// the Browser wraps it with filter state, debounce and ordering.
type CatalogService struct {
	api *api.Client
}

func NewCatalogService(client *api.Client) *CatalogService {
	return &CatalogService{api: client}
}

// ListEvents fetches one catalog page. Empty filter fields are omitted
// from the query string; the backend treats absent as "no filter".
func (s *CatalogService) ListEvents(ctx context.Context, filter models.EventFilter) (models.EventPage, error) {
	query := url.Values{}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.StartDate != "" {
		query.Set("start_date", filter.StartDate)
	}
	if filter.EndDate != "" {
		query.Set("end_date", filter.EndDate)
	}

	var page models.EventPage
	if err := s.api.Get(ctx, "/events/", query, &page); err != nil {
		return models.EventPage{}, fmt.Errorf("ListEvents: %w", err)
	}
	return page, nil
}

// GetEvent fetches a single event. Returns status.ErrNotFound for an
// unknown id.
func (s *CatalogService) GetEvent(ctx context.Context, id int) (*models.Event, error) {
	var event models.Event
	if err := s.api.Get(ctx, fmt.Sprintf("/events/%d", id), nil, &event); err != nil {
		return nil, fmt.Errorf("GetEvent: %w", err)
	}
	return &event, nil
}

// Availability returns the backend's live available-ticket count for an
// event, clamped at zero. The backend is authoritative; cached Event
// snapshots are never trusted over this.
func (s *CatalogService) Availability(ctx context.Context, eventID int) (int, error) {
	var reply struct {
		AvailableTickets int `json:"available_tickets"`
	}
	if err := s.api.Get(ctx, fmt.Sprintf("/tickets/available/%d", eventID), nil, &reply); err != nil {
		return 0, fmt.Errorf("Availability: %w", err)
	}
	if reply.AvailableTickets < 0 {
		return 0, nil
	}
	return reply.AvailableTickets, nil
}

// ListWithAvailability fetches a catalog page and fans out one
// availability request per event, joined before returning. A failed
// fan-out request leaves that event's Availability nil rather than
// failing the page.
func (s *CatalogService) ListWithAvailability(ctx context.Context, filter models.EventFilter) ([]models.EventSummary, int, error) {
	page, err := s.ListEvents(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]models.EventSummary, len(page.Events))
	var wg sync.WaitGroup
	for i, event := range page.Events {
		summaries[i].Event = event

		wg.Add(1)
		go func(i, eventID int) {
			defer wg.Done()
			if n, err := s.Availability(ctx, eventID); err == nil {
				summaries[i].Availability = &n
			}
		}(i, event.ID)
	}
	wg.Wait()

	return summaries, page.TotalPages, nil
}
