package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"ticketfront/models"
	"ticketfront/utils"
)

// BrowseUpdate is delivered to the Browser's listener for every fetch
// that is still the newest one when it resolves.
type BrowseUpdate struct {
	Filter     models.EventFilter
	Events     []models.Event
	TotalPages int
	Err        error
}

// Browser is a stateful catalog browse session for one view. Changing
// any filter resets the page to 1. Free-text search waits for the input
// to settle before fetching; discrete filters fetch immediately. A
// superseded request never overwrites the results of a newer one:
// ordering is last-issued-wins, decided by a generation counter.
type Browser struct {
	catalog  *CatalogService
	debounce *utils.Debouncer
	timeout  time.Duration
	listener func(BrowseUpdate)

	gen atomic.Uint64

	// deliverMu serializes listener calls so gen checks and delivery
	// are atomic with respect to each other.
	deliverMu sync.Mutex

	mu     sync.Mutex
	filter models.EventFilter
}

func NewBrowser(catalog *CatalogService, settle, timeout time.Duration, listener func(BrowseUpdate)) *Browser {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Browser{
		catalog:  catalog,
		debounce: utils.NewDebouncer(settle),
		timeout:  timeout,
		listener: listener,
		filter:   models.EventFilter{Page: 1},
	}
}

// Filter returns the browse session's current filter.
func (b *Browser) Filter() models.EventFilter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter
}

// SetSearch updates the free-text search, resets to page 1, and fetches
// once the keystroke burst settles.
func (b *Browser) SetSearch(search string) {
	b.mu.Lock()
	b.filter.Search = search
	b.filter.Page = 1
	b.mu.Unlock()

	b.debounce.Trigger(b.fetch)
}

// SetCategory updates the category filter and fetches immediately.
func (b *Browser) SetCategory(category string) {
	b.mu.Lock()
	b.filter.Category = category
	b.filter.Page = 1
	b.mu.Unlock()

	b.debounce.Cancel()
	b.fetch()
}

// SetDateRange updates the date window and fetches immediately. Dates
// are `YYYY-MM-DD`; empty means unbounded on that side.
func (b *Browser) SetDateRange(start, end string) {
	b.mu.Lock()
	b.filter.StartDate = start
	b.filter.EndDate = end
	b.filter.Page = 1
	b.mu.Unlock()

	b.debounce.Cancel()
	b.fetch()
}

// SetPage moves within the current filter and fetches immediately.
func (b *Browser) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	b.mu.Lock()
	b.filter.Page = page
	b.mu.Unlock()

	b.debounce.Cancel()
	b.fetch()
}

// Refresh re-fetches the current filter immediately.
func (b *Browser) Refresh() {
	b.debounce.Cancel()
	b.fetch()
}

func (b *Browser) fetch() {
	gen := b.gen.Add(1)
	filter := b.Filter()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()

		page, err := b.catalog.ListEvents(ctx, filter)

		b.deliverMu.Lock()
		defer b.deliverMu.Unlock()

		// A newer fetch was issued while this one was in flight; its
		// result wins regardless of arrival order.
		if b.gen.Load() != gen {
			return
		}
		if b.listener != nil {
			b.listener(BrowseUpdate{
				Filter:     filter,
				Events:     page.Events,
				TotalPages: page.TotalPages,
				Err:        err,
			})
		}
	}()
}
