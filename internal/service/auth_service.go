package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/inkridge/studio-client/internal/api"
	"github.com/inkridge/studio-client/internal/guard"
	"github.com/inkridge/studio-client/internal/models"
	"github.com/inkridge/studio-client/internal/session"
	apperrors "github.com/inkridge/studio-client/pkg/errors"
)

// AuthService drives the session lifecycle: login, registration, logout and
// password recovery.
type AuthService struct {
	client    *api.Client
	store     *session.Store
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(client *api.Client, store *session.Store, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{client: client, store: store, validator: validate, logger: logger}
}

// LoginResult carries the established session and the role-appropriate
// destination for the post-login redirect.
type LoginResult struct {
	Session  session.Session
	User     models.User
	Redirect guard.Route
}

// Login authenticates against the backend and persists the returned token
// and role. Failure leaves the stored session absent.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*LoginResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "email and password are required")
	}

	if err := s.client.PrimeCSRF(ctx); err != nil {
		return nil, err
	}

	var resp models.AuthResponse
	if err := s.client.Post(ctx, "login", "/login", req, &resp); err != nil {
		if apperr := apperrors.FromError(err); apperr.Status == 401 || apperr.Status == 422 {
			return nil, apperrors.Clone(apperrors.ErrInvalidCredentials, apperr.Message)
		}
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, apperrors.Clone(apperrors.ErrInternal, "login response did not include a token")
	}

	sess := session.Session{Token: resp.AccessToken, Role: resp.User.Role, UserID: resp.User.ID}
	if err := s.store.Set(sess); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "persist session")
	}

	s.logger.Info("signed in", zap.Int64("user_id", resp.User.ID), zap.String("role", string(resp.User.Role)))
	return &LoginResult{Session: sess, User: resp.User, Redirect: guard.Destination(resp.User.Role)}, nil
}

// Register creates an account and signs the new user in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*LoginResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "registration form is incomplete or passwords do not match")
	}

	if err := s.client.PrimeCSRF(ctx); err != nil {
		return nil, err
	}

	var resp models.AuthResponse
	if err := s.client.Post(ctx, "register", "/register", req, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, apperrors.Clone(apperrors.ErrInternal, "registration response did not include a token")
	}

	sess := session.Session{Token: resp.AccessToken, Role: resp.User.Role, UserID: resp.User.ID}
	if err := s.store.Set(sess); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "persist session")
	}

	return &LoginResult{Session: sess, User: resp.User, Redirect: guard.Destination(resp.User.Role)}, nil
}

// Logout clears the local session, then tells the server. Local clearing is
// authoritative for the client: a failed server-side invalidation is logged,
// never surfaced as a failed logout. The token is frozen before the clear so
// the invalidation call still carries the credential the server must revoke.
func (s *AuthService) Logout(ctx context.Context) error {
	invalidate := s.client.WithToken(s.store.Get().Token)

	if err := s.store.Clear(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "clear session")
	}

	if err := invalidate.PrimeCSRF(ctx); err != nil {
		s.logger.Warn("csrf priming failed during logout", zap.Error(err))
		return nil
	}
	if err := invalidate.Post(ctx, "logout", "/logout", nil, nil); err != nil {
		s.logger.Warn("server-side logout failed, local session already cleared", zap.Error(err))
	}
	return nil
}

// ForgotPassword asks the backend to email a reset token.
func (s *AuthService) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "a valid email is required")
	}
	return s.client.Post(ctx, "forgot_password", "/forgot/password", req, nil)
}

// ResetPassword completes a reset with the emailed token.
func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "reset form is incomplete or passwords do not match")
	}
	return s.client.Post(ctx, "reset_password", "/password/reset", req, nil)
}
