package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/inkridge/studio-client/internal/api"
	"github.com/inkridge/studio-client/internal/models"
	colsync "github.com/inkridge/studio-client/internal/sync"
	apperrors "github.com/inkridge/studio-client/pkg/errors"
)

// EventService backs the events listing and the admin event editor.
type EventService struct {
	client    *api.Client
	col       *colsync.Collection[models.Event]
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService constructs an EventService instance.
func NewEventService(client *api.Client, validate *validator.Validate, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EventService{
		client:    client,
		col:       colsync.NewCollection[models.Event](),
		validator: validate,
		logger:    logger,
	}
}

// Events returns the current in-memory collection in server order.
func (s *EventService) Events() []models.Event { return s.col.Items() }

// Get returns one held event without a network call.
func (s *EventService) Get(id int64) (models.Event, bool) { return s.col.Get(id) }

// Load fetches the events once at view mount.
func (s *EventService) Load(ctx context.Context) error {
	var events []models.Event
	if err := s.client.Get(ctx, "events_list", "/events", &events); err != nil {
		s.col.Reset(nil)
		return err
	}
	s.col.Reset(events)
	return nil
}

// Create validates the event form locally, then appends the server record.
func (s *EventService) Create(ctx context.Context, req models.CreateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "title, description, date and venue are required")
	}

	var created models.Event
	if err := s.client.Post(ctx, "events_create", "/events", req, &created); err != nil {
		return nil, err
	}
	s.col.Append(created)
	return &created, nil
}

// Update replaces the matching event in place. The revision held by the
// editing view travels with the request so a stale edit is rejected rather
// than silently winning.
func (s *EventService) Update(ctx context.Context, id int64, req models.UpdateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "title, description, date and venue are required")
	}
	if err := s.col.Begin(id); err != nil {
		return nil, err
	}
	defer s.col.End(id)

	var updated models.Event
	if err := s.client.Put(ctx, "events_update", fmt.Sprintf("/events/%d", id), req, &updated); err != nil {
		return nil, err
	}
	if s.col.Replace(updated) == colsync.StaleConflict {
		return nil, apperrors.ErrStaleRecord
	}
	return &updated, nil
}

// Remove deletes an event.
func (s *EventService) Remove(ctx context.Context, id int64) error {
	if err := s.col.Begin(id); err != nil {
		return err
	}
	defer s.col.End(id)

	if err := s.client.Delete(ctx, "events_delete", fmt.Sprintf("/events/%d", id), nil); err != nil {
		return err
	}
	s.col.Remove(id)
	return nil
}
