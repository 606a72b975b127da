package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"ticketfront/internal/api"
	"ticketfront/internal/status"
	"ticketfront/models"
)

// InventoryService issues purchases and tracks a local, optimistic copy
// of per-event availability. The backend's atomic decrement is the
// source of truth; the local copy exists so a view never shows a stale
// or negative count, and it is reconciled against the backend after
// every failed purchase.
type InventoryService struct {
	api     *api.Client
	session *SessionService
	catalog *CatalogService

	mu           sync.Mutex
	availability map[int]int
	resales      map[int][]models.ResaleListing
}

func NewInventoryService(session *SessionService, catalog *CatalogService) *InventoryService {
	return &InventoryService{
		api:          session.Client(),
		session:      session,
		catalog:      catalog,
		availability: make(map[int]int),
		resales:      make(map[int][]models.ResaleListing),
	}
}

// Availability fetches the live count and refreshes the local copy.
func (s *InventoryService) Availability(ctx context.Context, eventID int) (int, error) {
	n, err := s.catalog.Availability(ctx, eventID)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.availability[eventID] = n
	s.mu.Unlock()
	return n, nil
}

// CachedAvailability returns the local optimistic count, if any.
func (s *InventoryService) CachedAvailability(eventID int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.availability[eventID]
	return n, ok
}

type purchaseReply struct {
	Message       string `json:"message"`
	TicketID      int    `json:"ticket_id"`
	TransactionID int    `json:"transaction_id"`
}

// Purchase buys a primary ticket. The local count is decremented
// optimistically; on any backend failure it is reconciled by
// re-fetching, never by local arithmetic.
func (s *InventoryService) Purchase(ctx context.Context, eventID int) (*models.Ticket, error) {
	if !s.session.Authenticated() {
		return nil, status.ErrUnauthenticated
	}

	s.mu.Lock()
	if n, ok := s.availability[eventID]; ok && n == 0 {
		s.mu.Unlock()
		return nil, status.ErrSoldOut
	}
	if n, ok := s.availability[eventID]; ok && n > 0 {
		s.availability[eventID] = n - 1
	}
	s.mu.Unlock()

	var reply purchaseReply
	if err := s.api.Post(ctx, fmt.Sprintf("/tickets/purchase/%d", eventID), nil, &reply); err != nil {
		s.reconcile(ctx, eventID)

		var ae *status.APIError
		if errors.As(err, &ae) && strings.Contains(strings.ToLower(ae.Message), "no tickets available") {
			return nil, status.ErrSoldOut
		}
		return nil, fmt.Errorf("Purchase: %w", err)
	}

	slog.Info("inventory: ticket purchased", "event_id", eventID, "ticket_id", reply.TicketID)
	return &models.Ticket{
		TicketID: reply.TicketID,
		Status:   models.TicketSold,
	}, nil
}

// PurchaseResale buys a listed resale ticket. On success the listing is
// removed from the local resale set; backend rejections (already sold,
// own listing) come back verbatim.
func (s *InventoryService) PurchaseResale(ctx context.Context, ticketID int) (*models.Ticket, error) {
	if !s.session.Authenticated() {
		return nil, status.ErrUnauthenticated
	}

	var reply purchaseReply
	if err := s.api.Post(ctx, fmt.Sprintf("/tickets/purchase-resale/%d", ticketID), nil, &reply); err != nil {
		return nil, fmt.Errorf("PurchaseResale: %w", err)
	}

	s.mu.Lock()
	for eventID, listings := range s.resales {
		kept := listings[:0]
		for _, l := range listings {
			if l.TicketID != ticketID {
				kept = append(kept, l)
			}
		}
		s.resales[eventID] = kept
	}
	s.mu.Unlock()

	slog.Info("inventory: resale ticket purchased", "ticket_id", ticketID)
	return &models.Ticket{
		TicketID: reply.TicketID,
		Status:   models.TicketSold,
	}, nil
}

// ResaleListings fetches the current resale offers for an event and
// refreshes the local set.
func (s *InventoryService) ResaleListings(ctx context.Context, eventID int) ([]models.ResaleListing, error) {
	var listings []models.ResaleListing
	if err := s.api.Get(ctx, fmt.Sprintf("/tickets/resale/%d", eventID), nil, &listings); err != nil {
		return nil, fmt.Errorf("ResaleListings: %w", err)
	}

	s.mu.Lock()
	s.resales[eventID] = listings
	s.mu.Unlock()
	return listings, nil
}

// CachedResaleListings returns the local resale set for an event.
func (s *InventoryService) CachedResaleListings(eventID int) []models.ResaleListing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resales[eventID]
}

// MyTickets fetches one page of the current user's tickets. Page is
// 1-indexed.
func (s *InventoryService) MyTickets(ctx context.Context, page int) (models.TicketPage, error) {
	if !s.session.Authenticated() {
		return models.TicketPage{}, status.ErrUnauthenticated
	}
	if page < 1 {
		page = 1
	}

	query := url.Values{"page": []string{strconv.Itoa(page)}}
	var reply models.TicketPage
	if err := s.api.Get(ctx, "/tickets/my-tickets", query, &reply); err != nil {
		return models.TicketPage{}, fmt.Errorf("MyTickets: %w", err)
	}
	return reply, nil
}

// reconcile replaces the optimistic count with the backend's. A failed
// re-fetch just drops the cached entry so nothing stale is shown.
func (s *InventoryService) reconcile(ctx context.Context, eventID int) {
	n, err := s.catalog.Availability(ctx, eventID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		delete(s.availability, eventID)
		return
	}
	s.availability[eventID] = n
}
