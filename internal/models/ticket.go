package models

import "time"

// PaymentMethod enumerates the supported gateways.
type PaymentMethod string

const (
	MethodEsewa  PaymentMethod = "esewa"
	MethodKhalti PaymentMethod = "khalti"
)

// Ticket is a purchased (or pending) event ticket.
type Ticket struct {
	ID          int64         `json:"id"`
	EventID     int64         `json:"event_id"`
	UserID      int64         `json:"user_id"`
	Quantity    int           `json:"quantity"`
	TotalAmount float64       `json:"total_amount"`
	Method      PaymentMethod `json:"payment_method"`
	Status      string        `json:"payment_status"` // pending, paid, failed
	Reference   string        `json:"reference,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

func (t Ticket) RecordID() int64       { return t.ID }
func (t Ticket) RecordRevision() int64 { return 0 }

// PurchaseTicketRequest is the ticket purchase payload. Quantity bounds are
// checked against the event's availability before the network call.
type PurchaseTicketRequest struct {
	EventID  int64         `json:"event_id" validate:"required"`
	Quantity int           `json:"quantity" validate:"required,gte=1"`
	Method   PaymentMethod `json:"payment_method" validate:"required,oneof=esewa khalti"`
}

// VerifyEsewaRequest confirms an eSewa payment from the gateway callback.
type VerifyEsewaRequest struct {
	TicketID  int64  `json:"ticket_id" validate:"required"`
	Amount    string `json:"amount" validate:"required"`
	Reference string `json:"ref_id" validate:"required"`
}
