// Package chat isolates the realtime message transport behind a narrow
// interface: deliver outbound messages, surface inbound message events. The
// broker's own protocol is not this client's concern.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/inkridge/studio-client/internal/api"
	"github.com/inkridge/studio-client/internal/models"
	"github.com/inkridge/studio-client/pkg/config"
)

// Transport surfaces inbound message events for one room.
type Transport interface {
	Listen(ctx context.Context, roomID int64) (<-chan models.ChatMessage, error)
	Close() error
}

// PollingTransport emulates a realtime feed over plain REST by polling the
// room's message history and emitting records not seen before.
type PollingTransport struct {
	client   *api.Client
	interval time.Duration
	logger   *zap.Logger
}

// NewPollingTransport constructs a PollingTransport.
func NewPollingTransport(client *api.Client, interval time.Duration, logger *zap.Logger) *PollingTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &PollingTransport{client: client, interval: interval, logger: logger}
}

// Listen polls until ctx is canceled. The channel closes on cancellation.
func (t *PollingTransport) Listen(ctx context.Context, roomID int64) (<-chan models.ChatMessage, error) {
	out := make(chan models.ChatMessage)
	go func() {
		defer close(out)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		var lastSeen int64
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			var history []models.ChatMessage
			if err := t.client.Get(ctx, "chat_poll", fmt.Sprintf("/chat/%d/messages", roomID), &history); err != nil {
				if ctx.Err() != nil {
					return
				}
				t.logger.Warn("chat poll failed", zap.Int64("room_id", roomID), zap.Error(err))
				continue
			}
			for _, msg := range history {
				if msg.ID <= lastSeen {
					continue
				}
				lastSeen = msg.ID
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close is a no-op; poll loops stop with their contexts.
func (t *PollingTransport) Close() error { return nil }

// RedisTransport receives message events over a pub/sub channel per room.
type RedisTransport struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewRedisTransport connects to the broker and verifies it is reachable.
func NewRedisTransport(cfg config.RedisConfig, logger *zap.Logger) (*RedisTransport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("chat broker unreachable: %w", err)
	}

	return &RedisTransport{rdb: rdb, logger: logger}, nil
}

// Listen subscribes to the room's channel until ctx is canceled.
func (t *RedisTransport) Listen(ctx context.Context, roomID int64) (<-chan models.ChatMessage, error) {
	sub := t.rdb.Subscribe(ctx, roomChannel(roomID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe room %d: %w", roomID, err)
	}

	out := make(chan models.ChatMessage)
	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case payload, ok := <-sub.Channel():
				if !ok {
					return
				}
				var msg models.ChatMessage
				if err := json.Unmarshal([]byte(payload.Payload), &msg); err != nil {
					t.logger.Warn("unreadable chat event", zap.Int64("room_id", roomID), zap.Error(err))
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close disconnects from the broker.
func (t *RedisTransport) Close() error { return t.rdb.Close() }

func roomChannel(roomID int64) string {
	return fmt.Sprintf("chat:%d", roomID)
}
