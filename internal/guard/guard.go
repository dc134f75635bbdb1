// Package guard centralizes the per-view authorization check that the
// original application repeated ad hoc on every page: one gate, invoked
// before any protected view runs, so no protected fetch is ever issued
// without a token check first.
package guard

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/inkridge/studio-client/internal/models"
	"github.com/inkridge/studio-client/internal/session"
	apperrors "github.com/inkridge/studio-client/pkg/errors"
)

// Route names the destinations a gate decision can redirect to.
type Route string

const (
	RouteLogin     Route = "login"
	RouteLanding   Route = "landing"
	RouteUserAdmin Route = "admin/users"
)

// Gate decides whether the viewer may proceed and where to send them.
type Gate struct {
	store *session.Store
}

// New constructs a Gate over the session store.
func New(store *session.Store) *Gate {
	return &Gate{store: store}
}

// Require returns the current session when a token is present. Otherwise it
// returns ErrUnauthorized and the caller must redirect to the login view
// without rendering protected content. The store is read at check time, so a
// session wiped elsewhere is detected lazily here.
func (g *Gate) Require() (session.Session, error) {
	sess := g.store.Get()
	if !sess.Present() {
		return session.Session{}, apperrors.ErrUnauthorized
	}
	if sess.Role == "" {
		sess.Role = roleFromToken(sess.Token)
	}
	return sess, nil
}

// RequireRole additionally checks the client-trusted role string. This picks
// views only; the server still enforces authorization on every call.
func (g *Gate) RequireRole(roles ...models.Role) (session.Session, error) {
	sess, err := g.Require()
	if err != nil {
		return session.Session{}, err
	}
	for _, r := range roles {
		if sess.Role == r {
			return sess, nil
		}
	}
	return session.Session{}, apperrors.ErrForbidden
}

// Destination returns the post-login redirect for a role: admins land on
// user management, everyone else on the landing view.
func Destination(role models.Role) Route {
	if role == models.RoleAdmin {
		return RouteUserAdmin
	}
	return RouteLanding
}

// roleFromToken reads the role claim without verifying the signature. The
// client cannot verify server-issued tokens and does not try to; a forged
// role only changes which views render, never what the server permits.
func roleFromToken(token string) models.Role {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return ""
	}
	if raw, ok := claims["role"].(string); ok {
		return models.Role(raw)
	}
	return ""
}
