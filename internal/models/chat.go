package models

import "time"

// ChatRoom is a conversation between a customer and the studio.
type ChatRoom struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	UserName    string    `json:"user_name,omitempty"`
	LastMessage string    `json:"last_message,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r ChatRoom) RecordID() int64       { return r.ID }
func (r ChatRoom) RecordRevision() int64 { return 0 }

// ChatMessage is a single message within a room.
type ChatMessage struct {
	ID        int64     `json:"id"`
	RoomID    int64     `json:"chat_id"`
	SenderID  int64     `json:"sender_id"`
	Body      string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (m ChatMessage) RecordID() int64       { return m.ID }
func (m ChatMessage) RecordRevision() int64 { return 0 }

// SendMessageRequest posts a message to a room.
type SendMessageRequest struct {
	Body string `json:"message" validate:"required"`
}
