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

	"github.com/inkridge/studio-client/internal/guard"
	"github.com/inkridge/studio-client/internal/models"
	apperrors "github.com/inkridge/studio-client/pkg/errors"
)

func TestLoginStoresSessionAndPicksAdminDestination(t *testing.T) {
	client, store := newBackend(t, func(r *gin.Engine) {
		r.POST("/login", func(c *gin.Context) {
			var body models.LoginRequest
			require.NoError(t, c.BindJSON(&body))
			if body.Email != "admin@studio.test" || body.Password != "correct" {
				c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid email or password"})
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"access_token": "T",
				"user":         gin.H{"id": 1, "name": "Admin", "email": body.Email, "role": "admin"},
			})
		})
	})
	svc := NewAuthService(client, store, validator.New(), zap.NewNop())

	result, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@studio.test", Password: "correct"})
	require.NoError(t, err)

	sess := store.Get()
	assert.Equal(t, "T", sess.Token)
	assert.Equal(t, models.RoleAdmin, sess.Role)
	assert.Equal(t, guard.RouteUserAdmin, result.Redirect)
}

func TestLoginFailureLeavesSessionAbsent(t *testing.T) {
	client, store := newBackend(t, func(r *gin.Engine) {
		r.POST("/login", func(c *gin.Context) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid email or password"})
		})
	})
	svc := NewAuthService(client, store, validator.New(), zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "who@studio.test", Password: "wrong"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.False(t, store.Get().Present())
}

func TestLoginValidatesBeforeNetwork(t *testing.T) {
	calls := 0
	client, store := newBackend(t, func(r *gin.Engine) {
		r.POST("/login", func(c *gin.Context) {
			calls++
			c.Status(http.StatusOK)
		})
	})
	svc := NewAuthService(client, store, validator.New(), zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: ""})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Zero(t, calls)
}

func TestLogoutClearsSessionDespiteServerError(t *testing.T) {
	client, store := newBackend(t, func(r *gin.Engine) {
		r.POST("/logout", func(c *gin.Context) {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "boom"})
		})
	})
	svc := NewAuthService(client, store, validator.New(), zap.NewNop())
	require.NoError(t, store.Set(storeSession("T", models.RoleUser)))

	require.NoError(t, svc.Logout(context.Background()))
	assert.False(t, store.Get().Present())
}

func TestLogoutSendsTokenClearedLocally(t *testing.T) {
	var authHeader string
	client, store := newBackend(t, func(r *gin.Engine) {
		r.POST("/logout", func(c *gin.Context) {
			authHeader = c.GetHeader("Authorization")
			c.JSON(http.StatusOK, gin.H{"message": "logged out"})
		})
	})
	svc := NewAuthService(client, store, validator.New(), zap.NewNop())
	require.NoError(t, store.Set(storeSession("T", models.RoleUser)))

	require.NoError(t, svc.Logout(context.Background()))

	// The store was cleared before the call went out, yet the server must
	// still receive the credential it is being asked to revoke.
	assert.Equal(t, "Bearer T", authHeader)
	assert.False(t, store.Get().Present())
}

func TestRegisterRejectsMismatchedConfirmation(t *testing.T) {
	calls := 0
	client, store := newBackend(t, func(r *gin.Engine) {
		r.POST("/register", func(c *gin.Context) {
			calls++
			c.Status(http.StatusOK)
		})
	})
	svc := NewAuthService(client, store, validator.New(), zap.NewNop())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Name: "N", Email: "n@studio.test", Password: "secret1", PasswordConfirmation: "secret2",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Zero(t, calls)
}

func TestResetPasswordHappyPath(t *testing.T) {
	client, store := newBackend(t, func(r *gin.Engine) {
		r.POST("/password/reset", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "password reset"})
		})
	})
	svc := NewAuthService(client, store, validator.New(), zap.NewNop())

	err := svc.ResetPassword(context.Background(), models.ResetPasswordRequest{
		Email: "n@studio.test", Token: "tok", Password: "secret1", PasswordConfirmation: "secret1",
	})
	assert.NoError(t, err)
}
