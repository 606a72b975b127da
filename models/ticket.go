package models

// Ticket statuses as the backend reports them.
const (
	TicketAvailable = "available"
	TicketSold      = "sold"
	TicketResale    = "resale"
)

type Ticket struct {
	TicketID     int        `json:"ticket_id"`
	Event        Event      `json:"event"`
	Status       string     `json:"status"`
	Price        float64    `json:"price"`
	ResalePrice  *float64   `json:"resale_price"`
	PurchaseDate *EventTime `json:"purchase_date"`
}

type TicketPage struct {
	Tickets    []Ticket `json:"tickets"`
	TotalPages int      `json:"total_pages"`
}

// ResaleListing is the buyer-facing view of a ticket in resale status.
type ResaleListing struct {
	TicketID      int     `json:"ticket_id"`
	OriginalPrice float64 `json:"original_price"`
	ResalePrice   float64 `json:"resale_price"`
	Seller        string  `json:"seller"`
}
