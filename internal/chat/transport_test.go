package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inkridge/studio-client/internal/api"
	"github.com/inkridge/studio-client/internal/models"
)

type staticTokens string

func (s staticTokens) Token() string { return string(s) }

func pollBackend(t *testing.T) (*api.Client, *historyFeed) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	feed := &historyFeed{}
	r := gin.New()
	r.GET("/chat/:id/messages", func(c *gin.Context) {
		c.JSON(http.StatusOK, feed.snapshot())
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	client, err := api.New(api.Options{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
		Tokens:  staticTokens("tok"),
	})
	require.NoError(t, err)
	return client, feed
}

type historyFeed struct {
	mu       sync.Mutex
	messages []models.ChatMessage
}

func (f *historyFeed) push(msg models.ChatMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
}

func (f *historyFeed) snapshot() []models.ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.ChatMessage, len(f.messages))
	copy(out, f.messages)
	return out
}

func TestPollingTransportEmitsOnlyUnseenMessages(t *testing.T) {
	client, feed := pollBackend(t)
	feed.push(models.ChatMessage{ID: 1, RoomID: 4, Body: "hello"})
	feed.push(models.ChatMessage{ID: 2, RoomID: 4, Body: "anyone free friday?"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr := NewPollingTransport(client, 10*time.Millisecond, zap.NewNop())
	events, err := tr.Listen(ctx, 4)
	require.NoError(t, err)

	recv := func() models.ChatMessage {
		select {
		case msg := <-events:
			return msg
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for message event")
			return models.ChatMessage{}
		}
	}

	assert.Equal(t, int64(1), recv().ID)
	assert.Equal(t, int64(2), recv().ID)

	// The full history keeps being returned; only new records are emitted.
	feed.push(models.ChatMessage{ID: 3, RoomID: 4, Body: "friday works"})
	assert.Equal(t, "friday works", recv().Body)

	select {
	case msg, ok := <-events:
		require.True(t, ok)
		t.Fatalf("unexpected repeat event %d", msg.ID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPollingTransportClosesOnCancel(t *testing.T) {
	client, _ := pollBackend(t)
	ctx, cancel := context.WithCancel(context.Background())

	tr := NewPollingTransport(client, 10*time.Millisecond, zap.NewNop())
	events, err := tr.Listen(ctx, 4)
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-events:
		assert.False(t, ok, "channel must close after cancellation")
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not close after cancellation")
	}
}
