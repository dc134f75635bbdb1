package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/inkridge/studio-client/internal/api"
	"github.com/inkridge/studio-client/internal/forms"
	"github.com/inkridge/studio-client/internal/models"
	colsync "github.com/inkridge/studio-client/internal/sync"
	apperrors "github.com/inkridge/studio-client/pkg/errors"
)

// BookingWindow bounds the accepted appointment slots. Both edges are
// inclusive: a 09:00 or a 19:00 booking is accepted, 08:59 and 19:01 are not.
type BookingWindow struct {
	OpenHour  int
	CloseHour int
	Now       func() time.Time
}

// AppointmentService backs the booking form and the admin appointment list.
type AppointmentService struct {
	client     *api.Client
	col        *colsync.Collection[models.Appointment]
	validator  *validator.Validate
	logger     *zap.Logger
	window     BookingWindow
	attachment forms.FileRule
}

// NewAppointmentService constructs an AppointmentService instance.
func NewAppointmentService(client *api.Client, validate *validator.Validate, logger *zap.Logger, window BookingWindow, attachment forms.FileRule) *AppointmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if window.Now == nil {
		window.Now = time.Now
	}
	return &AppointmentService{
		client:     client,
		col:        colsync.NewCollection[models.Appointment](),
		validator:  validate,
		logger:     logger,
		window:     window,
		attachment: attachment,
	}
}

// Appointments returns the current in-memory collection in server order.
func (s *AppointmentService) Appointments() []models.Appointment { return s.col.Items() }

// Load fetches the full collection once at view mount.
func (s *AppointmentService) Load(ctx context.Context) error {
	var appointments []models.Appointment
	if err := s.client.Get(ctx, "appointments_list", "/appointments", &appointments); err != nil {
		s.col.Reset(nil)
		return err
	}
	s.col.Reset(appointments)
	return nil
}

// Book validates the whole form locally, then submits. The attachment path
// is optional; when present its size and type are checked before any bytes
// move.
func (s *AppointmentService) Book(ctx context.Context, req models.BookAppointmentRequest, attachmentPath string) (*models.Appointment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "artist, date, time and description are required")
	}
	if err := s.validateSlot(req.Date, req.Time); err != nil {
		return nil, err
	}
	if req.AttachmentName != "" {
		if err := s.attachment.Validate(req.AttachmentName, req.AttachmentMIME, req.AttachmentSize); err != nil {
			return nil, err
		}
	}

	var created models.Appointment
	if attachmentPath != "" {
		fields := map[string]string{
			"artist_id":        strconv.FormatInt(req.ArtistID, 10),
			"appointment_date": req.Date,
			"appointment_time": req.Time,
			"description":      req.Description,
		}
		if err := s.client.PostMultipart(ctx, "appointments_book", "/appointments", fields, "image", attachmentPath, &created); err != nil {
			return nil, err
		}
	} else {
		if err := s.client.Post(ctx, "appointments_book", "/appointments", req, &created); err != nil {
			return nil, err
		}
	}

	s.col.Append(created)
	return &created, nil
}

// UpdateStatus confirms, cancels or completes an appointment.
func (s *AppointmentService) UpdateStatus(ctx context.Context, id int64, status models.AppointmentStatus) (*models.Appointment, error) {
	switch status {
	case models.AppointmentPending, models.AppointmentConfirmed, models.AppointmentCanceled, models.AppointmentCompleted:
	default:
		return nil, apperrors.Clone(apperrors.ErrValidation, fmt.Sprintf("unknown appointment status %q", status))
	}
	if err := s.col.Begin(id); err != nil {
		return nil, err
	}
	defer s.col.End(id)

	var updated models.Appointment
	payload := map[string]models.AppointmentStatus{"status": status}
	if err := s.client.Put(ctx, "appointments_status", fmt.Sprintf("/appointments/%d/status", id), payload, &updated); err != nil {
		return nil, err
	}
	if s.col.Replace(updated) == colsync.StaleConflict {
		return nil, apperrors.ErrStaleRecord
	}
	return &updated, nil
}

// Remove deletes an appointment.
func (s *AppointmentService) Remove(ctx context.Context, id int64) error {
	if err := s.col.Begin(id); err != nil {
		return err
	}
	defer s.col.End(id)

	if err := s.client.Delete(ctx, "appointments_delete", fmt.Sprintf("/appointments/%d", id), nil); err != nil {
		return err
	}
	s.col.Remove(id)
	return nil
}

// validateSlot rejects past dates and times outside the studio's hours
// before any network call is made.
func (s *AppointmentService) validateSlot(date, slot string) error {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return apperrors.Clone(apperrors.ErrValidation, "date must look like 2006-01-02")
	}
	// Calendar dates, not instants: the parsed day is UTC midnight, so
	// today's floor must be UTC too or a zone behind UTC rejects a booking
	// for the current date.
	today := s.window.Now()
	todayMidnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(todayMidnight) {
		return apperrors.Clone(apperrors.ErrValidation, "appointment date cannot be in the past")
	}

	t, err := time.Parse("15:04", slot)
	if err != nil {
		return apperrors.Clone(apperrors.ErrValidation, "time must look like 15:04")
	}
	minutes := t.Hour()*60 + t.Minute()
	open := s.window.OpenHour * 60
	closeAt := s.window.CloseHour * 60
	if minutes < open || minutes > closeAt {
		return apperrors.Clone(apperrors.ErrValidation,
			fmt.Sprintf("appointments run from %02d:00 to %02d:00", s.window.OpenHour, s.window.CloseHour))
	}
	return nil
}
