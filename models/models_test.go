package models

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTime_ParsesBackendFormat(t *testing.T) {
	var event Event
	err := json.Unmarshal([]byte(`{"id": 1, "date": "2026-10-01 20:00:00"}`), &event)

	require.NoError(t, err)
	assert.Equal(t, 2026, event.Date.Year())
	assert.Equal(t, 20, event.Date.Hour())
}

func TestEventTime_ParsesISO(t *testing.T) {
	var event Event
	err := json.Unmarshal([]byte(`{"id": 1, "date": "2026-10-01T20:00:00"}`), &event)

	require.NoError(t, err)
	assert.Equal(t, 2026, event.Date.Year())
}

func TestEventTime_NullIsZero(t *testing.T) {
	var ticket Ticket
	err := json.Unmarshal([]byte(`{"ticket_id": 7, "purchase_date": null}`), &ticket)

	require.NoError(t, err)
	assert.Nil(t, ticket.PurchaseDate)
}

func TestEventTime_RoundTrip(t *testing.T) {
	var event Event
	require.NoError(t, json.Unmarshal([]byte(`{"date": "2026-10-01 20:00:00"}`), &event))

	data, err := json.Marshal(event.Date)
	require.NoError(t, err)
	assert.Equal(t, `"2026-10-01 20:00:00"`, string(data))
}

func TestEvent_AvailabilityClampsAtZero(t *testing.T) {
	event := Event{Capacity: 100, TicketsSold: 40}
	assert.Equal(t, 60, event.Availability())

	oversold := Event{Capacity: 50, TicketsSold: 55}
	assert.Equal(t, 0, oversold.Availability())
}

func TestTicket_DecodesBackendShape(t *testing.T) {
	payload := `{
		"ticket_id": 7,
		"event": {"id": 1, "name": "Rock Night", "date": "2026-10-01 20:00:00", "price": 50.0},
		"status": "resale",
		"price": 50.0,
		"resale_price": 65.5,
		"purchase_date": "2026-09-01 10:00:00"
	}`

	var ticket Ticket
	require.NoError(t, json.Unmarshal([]byte(payload), &ticket))

	assert.Equal(t, 7, ticket.TicketID)
	assert.Equal(t, TicketResale, ticket.Status)
	assert.Equal(t, "Rock Night", ticket.Event.Name)
	require.NotNil(t, ticket.ResalePrice)
	assert.Equal(t, 65.5, *ticket.ResalePrice)
	require.NotNil(t, ticket.PurchaseDate)
}

func TestResaleListing_DecodesBackendShape(t *testing.T) {
	payload := `[{"ticket_id": 7, "original_price": 50.0, "resale_price": 60.0, "seller": "carol"}]`

	var listings []ResaleListing
	require.NoError(t, json.Unmarshal([]byte(payload), &listings))

	require.Len(t, listings, 1)
	assert.Equal(t, "carol", listings[0].Seller)
	assert.Equal(t, 60.0, listings[0].ResalePrice)
}
