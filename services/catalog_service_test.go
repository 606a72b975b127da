package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketfront/internal/api"
	"ticketfront/internal/status"
	"ticketfront/models"
)

func catalogHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/events/":
			w.Write([]byte(`{
				"events": [
					{"id": 1, "name": "Rock Night", "location": "Arena", "date": "2026-10-01 20:00:00",
					 "price": 50.0, "capacity": 100, "tickets_sold": 40},
					{"id": 2, "name": "Jazz Eve", "location": "Club", "date": "2026-11-05 19:30:00",
					 "price": 30.0, "capacity": 50, "tickets_sold": 50}
				],
				"total_pages": 2
			}`))
		case r.URL.Path == "/events/1":
			w.Write([]byte(`{"id": 1, "name": "Rock Night", "location": "Arena",
				"date": "2026-10-01 20:00:00", "price": 50.0, "capacity": 100, "tickets_sold": 40}`))
		case strings.HasPrefix(r.URL.Path, "/tickets/available/"):
			id := strings.TrimPrefix(r.URL.Path, "/tickets/available/")
			if id == "2" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprintf(w, `{"available_tickets": 60}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestCatalog(t *testing.T, handler http.HandlerFunc) (*CatalogService, *testBackend) {
	t.Helper()
	backend := newTestBackend(t, handler)
	client := api.NewClient(&api.Config{BaseURL: backend.server.URL}, nil)
	return NewCatalogService(client), backend
}

func TestCatalogService_ListEventsOmitsEmptyFilters(t *testing.T) {
	var gotQuery string
	catalog, _ := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"events": [], "total_pages": 1}`))
	})

	_, err := catalog.ListEvents(context.Background(), models.EventFilter{Page: 1, Search: "rock"})

	require.NoError(t, err)
	assert.Contains(t, gotQuery, "page=1")
	assert.Contains(t, gotQuery, "search=rock")
	assert.NotContains(t, gotQuery, "category")
	assert.NotContains(t, gotQuery, "start_date")
	assert.NotContains(t, gotQuery, "end_date")
}

func TestCatalogService_ListEventsDecodesPage(t *testing.T) {
	catalog, _ := newTestCatalog(t, catalogHandler(t))

	page, err := catalog.ListEvents(context.Background(), models.EventFilter{Page: 1})

	require.NoError(t, err)
	require.Len(t, page.Events, 2)
	assert.Equal(t, "Rock Night", page.Events[0].Name)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 2026, page.Events[0].Date.Year())
}

func TestCatalogService_GetEventNotFound(t *testing.T) {
	catalog, _ := newTestCatalog(t, catalogHandler(t))

	_, err := catalog.GetEvent(context.Background(), 999)

	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestCatalogService_AvailabilityNeverNegative(t *testing.T) {
	catalog, _ := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"available_tickets": -3}`))
	})

	n, err := catalog.Availability(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCatalogService_FanOutDegradesSingleEvent(t *testing.T) {
	catalog, _ := newTestCatalog(t, catalogHandler(t))

	summaries, totalPages, err := catalog.ListWithAvailability(context.Background(), models.EventFilter{Page: 1})

	require.NoError(t, err)
	assert.Equal(t, 2, totalPages)
	require.Len(t, summaries, 2)

	// Event 1's availability request succeeds, event 2's fails; only
	// that one card degrades.
	require.NotNil(t, summaries[0].Availability)
	assert.Equal(t, 60, *summaries[0].Availability)
	assert.Nil(t, summaries[1].Availability)
}
