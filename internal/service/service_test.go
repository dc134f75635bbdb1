package service

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inkridge/studio-client/internal/api"
	"github.com/inkridge/studio-client/internal/models"
	"github.com/inkridge/studio-client/internal/session"
)

func storeSession(token string, role models.Role) session.Session {
	return session.Session{Token: token, Role: role, UserID: 1}
}

// newBackend stands up a gin mock of the remote REST API and returns a
// client wired to it together with a fresh session store.
func newBackend(t *testing.T, register func(r *gin.Engine)) (*api.Client, *session.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/sanctum/csrf-cookie", func(c *gin.Context) {
		c.SetCookie("XSRF-TOKEN", "test-csrf", 3600, "/", "", false, false)
		c.Status(http.StatusNoContent)
	})
	if register != nil {
		register(r)
	}

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	store, err := session.NewStore(filepath.Join(t.TempDir(), "session.json"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	client, err := api.New(api.Options{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
		Tokens:  store,
	})
	require.NoError(t, err)
	return client, store
}
