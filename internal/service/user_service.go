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

// UserService backs the admin user-management view. The collection is
// patched in place after each confirmed mutation instead of refetching.
type UserService struct {
	client    *api.Client
	col       *colsync.Collection[models.User]
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(client *api.Client, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{
		client:    client,
		col:       colsync.NewCollection[models.User](),
		validator: validate,
		logger:    logger,
	}
}

// Users returns the current in-memory collection in server order.
func (s *UserService) Users() []models.User { return s.col.Items() }

// Load fetches the full collection once at view mount. On failure the
// collection is left empty and the error is surfaced; there is no retry.
func (s *UserService) Load(ctx context.Context) error {
	var users []models.User
	if err := s.client.Get(ctx, "users_list", "/users", &users); err != nil {
		s.col.Reset(nil)
		return err
	}
	s.col.Reset(users)
	return nil
}

// Create validates the form locally, then appends the server's canonical
// record on success.
func (s *UserService) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "name, email, password and role are required")
	}

	var created models.User
	if err := s.client.Post(ctx, "users_create", "/users", req, &created); err != nil {
		return nil, err
	}
	s.col.Append(created)
	return &created, nil
}

// Update replaces the matching record in place after the server confirms.
// A revision conflict reported by the collection surfaces as ErrStaleRecord.
func (s *UserService) Update(ctx context.Context, id int64, req models.UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "name, email and role are required")
	}
	if err := s.col.Begin(id); err != nil {
		return nil, err
	}
	defer s.col.End(id)

	var updated models.User
	if err := s.client.Put(ctx, "users_update", fmt.Sprintf("/users/%d", id), req, &updated); err != nil {
		return nil, err
	}
	if s.col.Replace(updated) == colsync.StaleConflict {
		return nil, apperrors.ErrStaleRecord
	}
	return &updated, nil
}

// Remove deletes the record and filters it out of the collection. On failure
// the collection is untouched.
func (s *UserService) Remove(ctx context.Context, id int64) error {
	if err := s.col.Begin(id); err != nil {
		return err
	}
	defer s.col.End(id)

	if err := s.client.Delete(ctx, "users_delete", fmt.Sprintf("/users/%d", id), nil); err != nil {
		return err
	}
	s.col.Remove(id)
	return nil
}
