package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/inkridge/studio-client/internal/api"
	"github.com/inkridge/studio-client/internal/chat"
	"github.com/inkridge/studio-client/internal/models"
	apperrors "github.com/inkridge/studio-client/pkg/errors"
)

// ChatService lists rooms and history over REST and defers live delivery to
// the configured transport.
type ChatService struct {
	client    *api.Client
	transport chat.Transport
	validator *validator.Validate
	logger    *zap.Logger
}

// NewChatService constructs a ChatService instance.
func NewChatService(client *api.Client, transport chat.Transport, validate *validator.Validate, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ChatService{client: client, transport: transport, validator: validate, logger: logger}
}

// Rooms fetches the viewer's conversations.
func (s *ChatService) Rooms(ctx context.Context) ([]models.ChatRoom, error) {
	var rooms []models.ChatRoom
	if err := s.client.Get(ctx, "chat_rooms", "/chats", &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// Messages fetches a room's history.
func (s *ChatService) Messages(ctx context.Context, roomID int64) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	if err := s.client.Get(ctx, "chat_messages", fmt.Sprintf("/chat/%d/messages", roomID), &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// Send posts a message to a room.
func (s *ChatService) Send(ctx context.Context, roomID int64, req models.SendMessageRequest) (*models.ChatMessage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "message body is required")
	}

	var sent models.ChatMessage
	if err := s.client.Post(ctx, "chat_send", fmt.Sprintf("/chat/%d/message", roomID), req, &sent); err != nil {
		return nil, err
	}
	return &sent, nil
}

// Listen surfaces live message events for a room until ctx is canceled.
func (s *ChatService) Listen(ctx context.Context, roomID int64) (<-chan models.ChatMessage, error) {
	return s.transport.Listen(ctx, roomID)
}
