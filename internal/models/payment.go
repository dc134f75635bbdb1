package models

import "time"

// Payment is a settled or attempted transaction as listed by the admin view.
type Payment struct {
	ID          int64         `json:"id"`
	UserID      int64         `json:"user_id"`
	UserName    string        `json:"user_name,omitempty"`
	TotalAmount float64       `json:"total_amount"`
	Method      PaymentMethod `json:"payment_method"`
	Status      string        `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}

func (p Payment) RecordID() int64       { return p.ID }
func (p Payment) RecordRevision() int64 { return 0 }

// PaymentSort is the user-selected ordering for the payments view.
type PaymentSort string

const (
	SortNewest  PaymentSort = "newest"
	SortOldest  PaymentSort = "oldest"
	SortHighest PaymentSort = "highest"
	SortLowest  PaymentSort = "lowest"
)
