package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/inkridge/studio-client/internal/api"
	"github.com/inkridge/studio-client/internal/models"
	apperrors "github.com/inkridge/studio-client/pkg/errors"
	"github.com/inkridge/studio-client/pkg/export"
)

// TicketService handles ticket purchase, gateway verification and receipts.
type TicketService struct {
	client    *api.Client
	validator *validator.Validate
	logger    *zap.Logger
	receipts  *export.ReceiptRenderer
}

// NewTicketService constructs a TicketService instance.
func NewTicketService(client *api.Client, validate *validator.Validate, logger *zap.Logger) *TicketService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TicketService{
		client:    client,
		validator: validate,
		logger:    logger,
		receipts:  export.NewReceiptRenderer(),
	}
}

// Purchase validates the quantity against the event's availability before
// any network call, then submits the purchase.
func (s *TicketService) Purchase(ctx context.Context, req models.PurchaseTicketRequest, event models.Event) (*models.Ticket, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "event, quantity and payment method are required")
	}
	if req.EventID != event.ID {
		return nil, apperrors.Clone(apperrors.ErrValidation, "quantity was checked against a different event")
	}
	if req.Quantity < 1 || req.Quantity > event.AvailableTickets {
		return nil, apperrors.Clone(apperrors.ErrValidation,
			fmt.Sprintf("quantity must be between 1 and %d", event.AvailableTickets))
	}

	var ticket models.Ticket
	if err := s.client.Post(ctx, "tickets_purchase", "/tickets/purchase", req, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// VerifyEsewa confirms an eSewa payment using the gateway callback values.
func (s *TicketService) VerifyEsewa(ctx context.Context, req models.VerifyEsewaRequest) (*models.Ticket, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "ticket, amount and reference are required")
	}

	var ticket models.Ticket
	if err := s.client.Post(ctx, "tickets_verify_esewa", "/tickets/verify-esewa-payment", req, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// Receipt renders a printable PDF receipt for a paid ticket.
func (s *TicketService) Receipt(ticket models.Ticket, event models.Event, buyer models.User) ([]byte, error) {
	return s.receipts.Render(export.Receipt{
		TicketID:    ticket.ID,
		EventTitle:  event.Title,
		EventDate:   event.Date,
		Venue:       event.Venue,
		Quantity:    ticket.Quantity,
		UnitPrice:   event.Price,
		TotalAmount: ticket.TotalAmount,
		Method:      string(ticket.Method),
		Reference:   ticket.Reference,
		PurchasedAt: ticket.CreatedAt,
		BuyerName:   buyer.Name,
		BuyerEmail:  buyer.Email,
	})
}
