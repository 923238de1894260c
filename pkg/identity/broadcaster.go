package identity

import (
	"context"
	"encoding/json"
	"fmt"

	"queridoc-web/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const authStateTopic = "auth_state"

// Broadcaster fans auth state changes out to every current observer.
type Broadcaster struct {
	pubSub *gochannel.GoChannel
	logger logger.ILogger
}

func NewBroadcaster(log logger.ILogger) *Broadcaster {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 16},
		watermill.NewStdLogger(false, false),
	)
	return &Broadcaster{pubSub: pubSub, logger: log}
}

func (b *Broadcaster) Publish(state AuthState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal auth state: %w", err)
	}
	return b.pubSub.Publish(authStateTopic, message.NewMessage(watermill.NewUUID(), payload))
}

// Subscribe calls fn for every state published after it returns, until the
// subscription is cancelled.
func (b *Broadcaster) Subscribe(fn func(AuthState)) (Subscription, error) {
	ctx, cancel := context.WithCancel(context.Background())
	messages, err := b.pubSub.Subscribe(ctx, authStateTopic)
	if err != nil {
		cancel()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range messages {
			var state AuthState
			if err := json.Unmarshal(msg.Payload, &state); err != nil {
				b.logger.Warn("Broadcaster", "Dropping malformed auth state", map[string]interface{}{
					"message_id": msg.UUID,
					"error":      err.Error(),
				})
				msg.Ack()
				continue
			}
			if ctx.Err() == nil {
				fn(state)
			}
			msg.Ack()
		}
	}()

	return &subscription{cancel: cancel, done: done}, nil
}

func (b *Broadcaster) Close() error {
	return b.pubSub.Close()
}

type subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Unsubscribe blocks until no further callback can run.
func (s *subscription) Unsubscribe() {
	s.cancel()
	<-s.done
}
