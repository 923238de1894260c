package nats

import (
	"context"
	"os"
	"testing"
	"time"

	"queridoc-web/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "queridoc.events.SESSION_STARTED", Subject(events.TypeSessionStarted))
}

func TestMessage(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	msg, err := Message(events.NewSessionEnded("ada@example.com", false, at))
	require.NoError(t, err)

	assert.Equal(t, "queridoc.events.SESSION_ENDED", msg.Subject)
	assert.Equal(t, events.TypeSessionEnded, msg.Header.Get(HeaderEventType))
	assert.JSONEq(t, `{"email":"ada@example.com","provider_signed_out":false,"occurred_at":"2026-03-01T12:00:00Z"}`, string(msg.Data))
}

func TestMessageUnencodablePayload(t *testing.T) {
	_, err := Message(events.BaseEvent{Type: "BROKEN", Data: map[string]interface{}{"ch": make(chan int)}})
	assert.Error(t, err)
}

// Needs a JetStream-enabled server; set NATS_TEST_URL to run.
func TestPublishSessionEvent(t *testing.T) {
	url := os.Getenv("NATS_TEST_URL")
	if url == "" {
		t.Skip("NATS_TEST_URL not set")
	}

	pub, err := NewPublisher(url)
	require.NoError(t, err)
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, pub.Publish(ctx, events.NewSessionStarted("ada@example.com", time.Now())))
}
