package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inkridge/studio-client/internal/models"
	apperrors "github.com/inkridge/studio-client/pkg/errors"
)

func newTicketService(t *testing.T, register func(r *gin.Engine)) (*TicketService, *int) {
	t.Helper()
	calls := 0
	client, _ := newBackend(t, func(r *gin.Engine) {
		r.Use(func(c *gin.Context) {
			calls++
			c.Next()
		})
		if register != nil {
			register(r)
		}
	})
	return NewTicketService(client, validator.New(), zap.NewNop()), &calls
}

func inkFest() models.Event {
	return models.Event{ID: 3, Title: "Ink Fest", Date: "2024-09-01", Venue: "Main Hall", Price: 450, AvailableTickets: 4}
}

func TestPurchaseRejectsQuantityAboveAvailability(t *testing.T) {
	svc, calls := newTicketService(t, nil)

	req := models.PurchaseTicketRequest{EventID: 3, Quantity: 5, Method: models.MethodEsewa}
	_, err := svc.Purchase(context.Background(), req, inkFest())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Zero(t, *calls)
}

func TestPurchaseRejectsEventMismatch(t *testing.T) {
	svc, calls := newTicketService(t, nil)

	req := models.PurchaseTicketRequest{EventID: 99, Quantity: 1, Method: models.MethodEsewa}
	_, err := svc.Purchase(context.Background(), req, inkFest())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Zero(t, *calls)
}

func TestPurchaseAcceptsQuantityAtAvailability(t *testing.T) {
	svc, _ := newTicketService(t, func(r *gin.Engine) {
		r.POST("/tickets/purchase", func(c *gin.Context) {
			var req models.PurchaseTicketRequest
			require.NoError(t, c.BindJSON(&req))
			c.JSON(http.StatusCreated, gin.H{
				"id": 71, "event_id": req.EventID, "quantity": req.Quantity,
				"total_amount": 450.0 * float64(req.Quantity), "payment_method": req.Method, "payment_status": "pending",
			})
		})
	})

	req := models.PurchaseTicketRequest{EventID: 3, Quantity: 4, Method: models.MethodEsewa}
	ticket, err := svc.Purchase(context.Background(), req, inkFest())
	require.NoError(t, err)
	assert.Equal(t, int64(71), ticket.ID)
	assert.Equal(t, 1800.0, ticket.TotalAmount)
}

func TestVerifyEsewaRequiresReference(t *testing.T) {
	svc, calls := newTicketService(t, nil)

	_, err := svc.VerifyEsewa(context.Background(), models.VerifyEsewaRequest{TicketID: 71, Amount: "1800"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Zero(t, *calls)
}

func TestReceiptRendersPDF(t *testing.T) {
	svc, _ := newTicketService(t, nil)

	ticket := models.Ticket{ID: 71, EventID: 3, Quantity: 2, TotalAmount: 900, Method: models.MethodEsewa, Status: "paid", Reference: "REF-1"}
	buyer := models.User{Name: "Sam", Email: "sam@studio.test"}
	pdf, err := svc.Receipt(ticket, inkFest(), buyer)
	require.NoError(t, err)
	assert.True(t, len(pdf) > 0)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}
