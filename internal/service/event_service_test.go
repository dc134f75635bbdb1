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

func newEventService(t *testing.T, register func(r *gin.Engine)) *EventService {
	t.Helper()
	client, _ := newBackend(t, register)
	return NewEventService(client, validator.New(), zap.NewNop())
}

func eventFixtures() []gin.H {
	return []gin.H{
		{"id": 1, "title": "Flash Day", "date": "2024-08-01", "venue": "Front Room", "price": 120.0, "available_tickets": 20, "revision": 2},
		{"id": 2, "title": "Ink Fest", "date": "2024-09-01", "venue": "Main Hall", "price": 450.0, "available_tickets": 4, "revision": 1},
	}
}

func TestEventGetServesFromHeldCollection(t *testing.T) {
	gets := 0
	svc := newEventService(t, func(r *gin.Engine) {
		r.GET("/events", func(c *gin.Context) {
			gets++
			c.JSON(http.StatusOK, eventFixtures())
		})
	})
	require.NoError(t, svc.Load(context.Background()))

	event, ok := svc.Get(2)
	require.True(t, ok)
	assert.Equal(t, "Ink Fest", event.Title)
	assert.Equal(t, 1, gets, "Get must not refetch")

	_, ok = svc.Get(99)
	assert.False(t, ok)
}

func TestEventUpdateCarriesHeldRevision(t *testing.T) {
	var sent models.UpdateEventRequest
	svc := newEventService(t, func(r *gin.Engine) {
		r.GET("/events", func(c *gin.Context) { c.JSON(http.StatusOK, eventFixtures()) })
		r.PUT("/events/:id", func(c *gin.Context) {
			require.NoError(t, c.BindJSON(&sent))
			c.JSON(http.StatusOK, gin.H{"id": 1, "title": sent.Title, "date": sent.Date, "venue": sent.Venue, "available_tickets": sent.AvailableTickets, "revision": sent.Revision + 1})
		})
	})
	ctx := context.Background()
	require.NoError(t, svc.Load(ctx))

	held, _ := svc.Get(1)
	updated, err := svc.Update(ctx, 1, models.UpdateEventRequest{
		Title:            "Flash Day II",
		Description:      "walk-ins welcome",
		Date:             held.Date,
		Venue:            held.Venue,
		AvailableTickets: held.AvailableTickets,
		Revision:         held.Revision,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), sent.Revision, "held revision travels with the edit")
	assert.Equal(t, int64(3), updated.Revision)

	refetched, _ := svc.Get(1)
	assert.Equal(t, "Flash Day II", refetched.Title)
}

func TestEventUpdateRejectsRegressingRevision(t *testing.T) {
	svc := newEventService(t, func(r *gin.Engine) {
		r.GET("/events", func(c *gin.Context) { c.JSON(http.StatusOK, eventFixtures()) })
		r.PUT("/events/:id", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"id": 1, "title": "Flash Day", "date": "2024-08-01", "venue": "Front Room", "revision": 1})
		})
	})
	ctx := context.Background()
	require.NoError(t, svc.Load(ctx))

	_, err := svc.Update(ctx, 1, models.UpdateEventRequest{
		Title: "Flash Day", Description: "d", Date: "2024-08-01", Venue: "Front Room", Revision: 2,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrStaleRecord)

	held, _ := svc.Get(1)
	assert.Equal(t, int64(2), held.Revision)
}

func TestEventConcurrentMutationRejected(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	svc := newEventService(t, func(r *gin.Engine) {
		r.GET("/events", func(c *gin.Context) { c.JSON(http.StatusOK, eventFixtures()) })
		r.DELETE("/events/:id", func(c *gin.Context) {
			close(started)
			<-release
			c.Status(http.StatusNoContent)
		})
	})
	ctx := context.Background()
	require.NoError(t, svc.Load(ctx))

	firstDone := make(chan error, 1)
	go func() { firstDone <- svc.Remove(ctx, 1) }()
	<-started

	_, err := svc.Update(ctx, 1, models.UpdateEventRequest{
		Title: "Flash Day", Description: "d", Date: "2024-08-01", Venue: "Front Room",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMutationBusy)

	close(release)
	require.NoError(t, <-firstDone)
}
