package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inkridge/studio-client/internal/forms"
	"github.com/inkridge/studio-client/internal/models"
	apperrors "github.com/inkridge/studio-client/pkg/errors"
)

var testWindow = BookingWindow{
	OpenHour:  9,
	CloseHour: 19,
	Now:       func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) },
}

var testAttachmentRule = forms.FileRule{
	MaxBytes:     5 * 1024 * 1024,
	AllowedMIMEs: []string{"image/jpeg", "image/png", "image/gif"},
}

func newAppointmentService(t *testing.T, register func(r *gin.Engine)) (*AppointmentService, *int) {
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
	return NewAppointmentService(client, validator.New(), zap.NewNop(), testWindow, testAttachmentRule), &calls
}

func validBooking() models.BookAppointmentRequest {
	return models.BookAppointmentRequest{
		ArtistID:    2,
		Date:        "2024-07-01",
		Time:        "10:00",
		Description: "sleeve touch-up",
	}
}

func TestBookRejectsPastDateWithoutNetwork(t *testing.T) {
	svc, calls := newAppointmentService(t, nil)

	req := validBooking()
	req.Date = "2024-06-14"
	_, err := svc.Book(context.Background(), req, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Zero(t, *calls)
}

func TestBookTimeWindowBoundaries(t *testing.T) {
	svc, calls := newAppointmentService(t, func(r *gin.Engine) {
		r.POST("/appointments", func(c *gin.Context) {
			var body models.BookAppointmentRequest
			require.NoError(t, c.BindJSON(&body))
			c.JSON(http.StatusCreated, gin.H{"id": 10, "appointment_date": body.Date, "appointment_time": body.Time, "status": "pending"})
		})
	})
	ctx := context.Background()

	for _, slot := range []string{"08:59", "19:01"} {
		req := validBooking()
		req.Time = slot
		_, err := svc.Book(ctx, req, "")
		require.Error(t, err, "slot %s must be rejected", slot)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	}
	assert.Zero(t, *calls, "rejected slots must not reach the network")

	for _, slot := range []string{"09:00", "19:00"} {
		req := validBooking()
		req.Time = slot
		_, err := svc.Book(ctx, req, "")
		require.NoError(t, err, "slot %s must be accepted", slot)
	}
}

func TestBookAcceptsTodayInZoneBehindUTC(t *testing.T) {
	client, _ := newBackend(t, func(r *gin.Engine) {
		r.POST("/appointments", func(c *gin.Context) {
			c.JSON(http.StatusCreated, gin.H{"id": 11, "status": "pending"})
		})
	})
	window := BookingWindow{
		OpenHour:  9,
		CloseHour: 19,
		Now: func() time.Time {
			return time.Date(2024, 6, 15, 10, 0, 0, 0, time.FixedZone("UTC-5", -5*3600))
		},
	}
	svc := NewAppointmentService(client, validator.New(), zap.NewNop(), window, testAttachmentRule)
	ctx := context.Background()

	req := validBooking()
	req.Date = "2024-06-15"
	_, err := svc.Book(ctx, req, "")
	require.NoError(t, err, "a booking for the current date is not in the past")

	req.Date = "2024-06-14"
	_, err = svc.Book(ctx, req, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestBookRejectsDisallowedAttachmentType(t *testing.T) {
	svc, calls := newAppointmentService(t, nil)

	req := validBooking()
	req.AttachmentName = "ref.bmp"
	req.AttachmentMIME = "image/bmp"
	req.AttachmentSize = 1024
	_, err := svc.Book(context.Background(), req, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFileType)
	assert.Zero(t, *calls)
}

func TestBookRejectsOversizedAttachment(t *testing.T) {
	svc, calls := newAppointmentService(t, nil)

	req := validBooking()
	req.AttachmentName = "ref.png"
	req.AttachmentMIME = "image/png"
	req.AttachmentSize = 6 * 1024 * 1024
	_, err := svc.Book(context.Background(), req, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFileTooLarge)
	assert.Zero(t, *calls)
}

func TestBookAppendsCanonicalServerRecord(t *testing.T) {
	svc, _ := newAppointmentService(t, func(r *gin.Engine) {
		r.GET("/appointments", func(c *gin.Context) {
			c.JSON(http.StatusOK, []gin.H{{"id": 1, "status": "confirmed"}})
		})
		r.POST("/appointments", func(c *gin.Context) {
			// The server assigns the id and the initial status.
			c.JSON(http.StatusCreated, gin.H{"id": 42, "status": "pending", "appointment_date": "2024-07-01", "appointment_time": "10:00"})
		})
	})
	ctx := context.Background()
	require.NoError(t, svc.Load(ctx))

	created, err := svc.Book(ctx, validBooking(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)

	held := svc.Appointments()
	require.Len(t, held, 2)
	assert.Equal(t, int64(42), held[1].ID, "creation appends at the tail")
}

func TestUpdateStatusReplacesInPlace(t *testing.T) {
	svc, _ := newAppointmentService(t, func(r *gin.Engine) {
		r.GET("/appointments", func(c *gin.Context) {
			c.JSON(http.StatusOK, []gin.H{{"id": 1, "status": "pending"}, {"id": 2, "status": "pending"}})
		})
		r.PUT("/appointments/:id/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"id": 1, "status": "confirmed"})
		})
	})
	ctx := context.Background()
	require.NoError(t, svc.Load(ctx))

	updated, err := svc.UpdateStatus(ctx, 1, models.AppointmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentConfirmed, updated.Status)

	held := svc.Appointments()
	require.Len(t, held, 2)
	assert.Equal(t, models.AppointmentConfirmed, held[0].Status)
	assert.Equal(t, models.AppointmentPending, held[1].Status, "other records untouched")
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc, calls := newAppointmentService(t, nil)

	_, err := svc.UpdateStatus(context.Background(), 1, "postponed")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Zero(t, *calls)
}

func TestRemoveFailureLeavesCollectionUntouched(t *testing.T) {
	svc, _ := newAppointmentService(t, func(r *gin.Engine) {
		r.GET("/appointments", func(c *gin.Context) {
			c.JSON(http.StatusOK, []gin.H{{"id": 1, "status": "pending"}})
		})
		r.DELETE("/appointments/:id", func(c *gin.Context) {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "boom"})
		})
	})
	ctx := context.Background()
	require.NoError(t, svc.Load(ctx))

	err := svc.Remove(ctx, 1)
	require.Error(t, err)
	assert.Len(t, svc.Appointments(), 1)
}

func TestLoadFailureLeavesEmptyCollection(t *testing.T) {
	svc, _ := newAppointmentService(t, func(r *gin.Engine) {
		r.GET("/appointments", func(c *gin.Context) {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "down"})
		})
	})

	err := svc.Load(context.Background())
	require.Error(t, err)
	assert.Empty(t, svc.Appointments())
}
