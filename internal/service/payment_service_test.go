package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inkridge/studio-client/internal/models"
)

func paymentsService(t *testing.T, payments []models.Payment) *PaymentService {
	t.Helper()
	client, _ := newBackend(t, func(r *gin.Engine) {
		r.GET("/payments/all", func(c *gin.Context) { c.JSON(http.StatusOK, payments) })
	})
	svc := NewPaymentService(client, zap.NewNop())
	require.NoError(t, svc.LoadAll(context.Background()))
	return svc
}

func amounts(payments []models.Payment) []float64 {
	out := make([]float64, len(payments))
	for i, p := range payments {
		out[i] = p.TotalAmount
	}
	return out
}

func TestSortedByAmountAndDate(t *testing.T) {
	svc := paymentsService(t, []models.Payment{
		{ID: 1, TotalAmount: 100, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, TotalAmount: 500, CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	})

	assert.Equal(t, []float64{500, 100}, amounts(svc.Sorted(models.SortHighest)))
	assert.Equal(t, []float64{100, 500}, amounts(svc.Sorted(models.SortLowest)))
	assert.Equal(t, []float64{100, 500}, amounts(svc.Sorted(models.SortOldest)))
	assert.Equal(t, []float64{500, 100}, amounts(svc.Sorted(models.SortNewest)))
}

func TestSortedIsStableOnEqualKeys(t *testing.T) {
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	svc := paymentsService(t, []models.Payment{
		{ID: 1, TotalAmount: 250, CreatedAt: day},
		{ID: 2, TotalAmount: 250, CreatedAt: day},
		{ID: 3, TotalAmount: 250, CreatedAt: day},
	})

	sorted := svc.Sorted(models.SortHighest)
	require.Len(t, sorted, 3)
	assert.Equal(t, int64(1), sorted[0].ID)
	assert.Equal(t, int64(2), sorted[1].ID)
	assert.Equal(t, int64(3), sorted[2].ID)
}

func TestSortedDoesNotReorderHeldCollection(t *testing.T) {
	svc := paymentsService(t, []models.Payment{
		{ID: 1, TotalAmount: 100, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, TotalAmount: 500, CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	})

	_ = svc.Sorted(models.SortHighest)
	held := svc.Payments()
	require.Len(t, held, 2)
	assert.Equal(t, int64(1), held[0].ID, "held order stays the server's order")
}

func TestUnknownSortFallsBackToNewest(t *testing.T) {
	svc := paymentsService(t, []models.Payment{
		{ID: 1, TotalAmount: 100, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, TotalAmount: 500, CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	})

	sorted := svc.Sorted(models.PaymentSort("by-vibes"))
	assert.Equal(t, []float64{500, 100}, amounts(sorted))
}

func TestLoadForUserFailureEmptiesCollection(t *testing.T) {
	client, _ := newBackend(t, func(r *gin.Engine) {
		r.GET("/payments/user/:id", func(c *gin.Context) {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "down"})
		})
	})
	svc := NewPaymentService(client, zap.NewNop())

	err := svc.LoadForUser(context.Background(), 7)
	require.Error(t, err)
	assert.Empty(t, svc.Payments())
}
