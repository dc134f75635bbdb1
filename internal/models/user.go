package models

import "time"

// Role represents the client-trusted role string attached to a session.
// The server remains the authority; the client only uses it to pick views.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleArtist Role = "tattoo_artist"
)

// Valid reports whether the role is one the client knows how to route.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleArtist:
		return true
	}
	return false
}

// User is an account record as returned by the backend.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Revision  int64     `json:"revision,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u User) RecordID() int64       { return u.ID }
func (u User) RecordRevision() int64 { return u.Revision }

// CreateUserRequest is the admin user-management create payload.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     Role   `json:"role" validate:"required,oneof=admin user tattoo_artist"`
}

// UpdateUserRequest is the admin user-management update payload.
type UpdateUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Role  Role   `json:"role" validate:"required,oneof=admin user tattoo_artist"`
}
