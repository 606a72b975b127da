package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"ticketfront/internal/api"
	"ticketfront/internal/status"
	"ticketfront/models"
)

// ResaleService manages the owner side of resale: listing a ticket,
// cancelling a listing, and keeping the owner's local ticket snapshots
// in step with what the backend accepted.
//
// Per ticket the owner observes sold → resale → sold: listing moves it
// to resale, cancelling moves it back, and a third party's purchase
// removes it from the owner's tickets entirely.
type ResaleService struct {
	api     *api.Client
	session *SessionService

	mu      sync.Mutex
	tickets map[int]*models.Ticket
}

func NewResaleService(session *SessionService) *ResaleService {
	return &ResaleService{
		api:     session.Client(),
		session: session,
		tickets: make(map[int]*models.Ticket),
	}
}

// Track seeds the local snapshot for a ticket, typically from a
// MyTickets page, so later transitions can be reconciled locally.
func (s *ResaleService) Track(ticket models.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := ticket
	s.tickets[ticket.TicketID] = &t
}

// Ticket returns the local snapshot, or nil if untracked.
func (s *ResaleService) Ticket(ticketID int) *models.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tickets[ticketID]; ok {
		copied := *t
		return &copied
	}
	return nil
}

// ListForResale offers a ticket at the given price. A non-positive
// price fails locally without touching the backend.
func (s *ResaleService) ListForResale(ctx context.Context, ticketID int, price decimal.Decimal) error {
	if !price.IsPositive() {
		return status.Invalid("price", "resale price must be positive")
	}
	if !s.session.Authenticated() {
		return status.ErrUnauthenticated
	}

	body := map[string]float64{"price": price.InexactFloat64()}
	var reply struct {
		Message     string  `json:"message"`
		TicketID    int     `json:"ticket_id"`
		ResalePrice float64 `json:"resale_price"`
	}
	if err := s.api.Post(ctx, fmt.Sprintf("/tickets/resell/%d", ticketID), body, &reply); err != nil {
		return fmt.Errorf("ListForResale: %w", err)
	}

	s.mu.Lock()
	if t, ok := s.tickets[ticketID]; ok {
		t.Status = models.TicketResale
		p := reply.ResalePrice
		t.ResalePrice = &p
	}
	s.mu.Unlock()

	slog.Info("resale: ticket listed", "ticket_id", ticketID, "price", price)
	return nil
}

// CancelResale withdraws a listing. The backend rejects tickets that
// are not currently listed; that rejection comes back verbatim.
func (s *ResaleService) CancelResale(ctx context.Context, ticketID int) error {
	if !s.session.Authenticated() {
		return status.ErrUnauthenticated
	}

	if err := s.api.Post(ctx, fmt.Sprintf("/tickets/cancel-resale/%d", ticketID), nil, nil); err != nil {
		return fmt.Errorf("CancelResale: %w", err)
	}

	s.mu.Lock()
	if t, ok := s.tickets[ticketID]; ok {
		t.Status = models.TicketSold
		t.ResalePrice = nil
	}
	s.mu.Unlock()

	slog.Info("resale: listing cancelled", "ticket_id", ticketID)
	return nil
}

// Release drops a ticket from the local set, used when a resale
// purchase by another user transfers ownership away.
func (s *ResaleService) Release(ticketID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tickets, ticketID)
}
