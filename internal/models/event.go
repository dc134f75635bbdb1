package models

import "time"

// Event is a studio event with purchasable tickets.
type Event struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Date             string    `json:"date"` // YYYY-MM-DD
	Venue            string    `json:"venue"`
	Price            float64   `json:"price"`
	AvailableTickets int       `json:"available_tickets"`
	ImageURL         string    `json:"image_url,omitempty"`
	Revision         int64     `json:"revision,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func (e Event) RecordID() int64       { return e.ID }
func (e Event) RecordRevision() int64 { return e.Revision }

// CreateEventRequest is the event creation form payload.
type CreateEventRequest struct {
	Title            string  `json:"title" validate:"required"`
	Description      string  `json:"description" validate:"required"`
	Date             string  `json:"date" validate:"required"`
	Venue            string  `json:"venue" validate:"required"`
	Price            float64 `json:"price" validate:"gte=0"`
	AvailableTickets int     `json:"available_tickets" validate:"gte=0"`
}

// UpdateEventRequest mirrors the create payload plus the revision held by the
// editing view, so the server can reject a stale edit.
type UpdateEventRequest struct {
	Title            string  `json:"title" validate:"required"`
	Description      string  `json:"description" validate:"required"`
	Date             string  `json:"date" validate:"required"`
	Venue            string  `json:"venue" validate:"required"`
	Price            float64 `json:"price" validate:"gte=0"`
	AvailableTickets int     `json:"available_tickets" validate:"gte=0"`
	Revision         int64   `json:"revision,omitempty"`
}
