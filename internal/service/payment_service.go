package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/inkridge/studio-client/internal/api"
	"github.com/inkridge/studio-client/internal/models"
	colsync "github.com/inkridge/studio-client/internal/sync"
)

// PaymentService backs the payments views. List order is the server's
// insertion order until the user picks an explicit sort.
type PaymentService struct {
	client *api.Client
	col    *colsync.Collection[models.Payment]
	logger *zap.Logger
}

// NewPaymentService constructs a PaymentService instance.
func NewPaymentService(client *api.Client, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		client: client,
		col:    colsync.NewCollection[models.Payment](),
		logger: logger,
	}
}

// Payments returns the current in-memory collection in server order.
func (s *PaymentService) Payments() []models.Payment { return s.col.Items() }

// LoadAll fetches every payment (admin view).
func (s *PaymentService) LoadAll(ctx context.Context) error {
	var payments []models.Payment
	if err := s.client.Get(ctx, "payments_all", "/payments/all", &payments); err != nil {
		s.col.Reset(nil)
		return err
	}
	s.col.Reset(payments)
	return nil
}

// LoadForUser fetches one user's payments.
func (s *PaymentService) LoadForUser(ctx context.Context, userID int64) error {
	var payments []models.Payment
	if err := s.client.Get(ctx, "payments_user", fmt.Sprintf("/payments/user/%d", userID), &payments); err != nil {
		s.col.Reset(nil)
		return err
	}
	s.col.Reset(payments)
	return nil
}

// Sorted returns a copy of the collection ordered by the user's selection.
// Sorting is stable, so equal keys keep their server order; the held
// collection itself is never reordered.
func (s *PaymentService) Sorted(order models.PaymentSort) []models.Payment {
	payments := s.col.Items()
	sort.SliceStable(payments, comparator(order, payments))
	return payments
}

func comparator(order models.PaymentSort, payments []models.Payment) func(i, j int) bool {
	switch order {
	case models.SortOldest:
		return func(i, j int) bool { return payments[i].CreatedAt.Before(payments[j].CreatedAt) }
	case models.SortHighest:
		return func(i, j int) bool { return payments[i].TotalAmount > payments[j].TotalAmount }
	case models.SortLowest:
		return func(i, j int) bool { return payments[i].TotalAmount < payments[j].TotalAmount }
	default: // SortNewest
		return func(i, j int) bool { return payments[i].CreatedAt.After(payments[j].CreatedAt) }
	}
}
