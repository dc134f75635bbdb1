package models

import "time"

// AppointmentStatus enumerates the lifecycle states of a booking.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCanceled  AppointmentStatus = "canceled"
	AppointmentCompleted AppointmentStatus = "completed"
)

// Appointment is a tattoo booking as returned by the backend.
type Appointment struct {
	ID          int64             `json:"id"`
	UserID      int64             `json:"user_id"`
	ArtistID    int64             `json:"artist_id"`
	UserName    string            `json:"user_name,omitempty"`
	ArtistName  string            `json:"artist_name,omitempty"`
	Date        string            `json:"appointment_date"` // YYYY-MM-DD
	Time        string            `json:"appointment_time"` // HH:MM
	Description string            `json:"description"`
	ImageURL    string            `json:"image_url,omitempty"`
	Status      AppointmentStatus `json:"status"`
	Revision    int64             `json:"revision,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

func (a Appointment) RecordID() int64       { return a.ID }
func (a Appointment) RecordRevision() int64 { return a.Revision }

// BookAppointmentRequest is the booking form payload. The attachment is
// validated client-side before any network call.
type BookAppointmentRequest struct {
	ArtistID    int64  `json:"artist_id" validate:"required"`
	Date        string `json:"appointment_date" validate:"required"`
	Time        string `json:"appointment_time" validate:"required"`
	Description string `json:"description" validate:"required"`

	AttachmentName string `json:"-"`
	AttachmentMIME string `json:"-"`
	AttachmentSize int64  `json:"-"`
}
