package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"queridoc-web/pkg/events"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	streamName    = "QUERIDOC_EVENTS"
	subjectPrefix = "queridoc.events."

	// HeaderEventType lets consumers filter without decoding the payload.
	HeaderEventType = "Queridoc-Event-Type"
)

// Publisher sends session audit events to JetStream. Every message carries a
// fresh Nats-Msg-Id so a retried publish is stored once.
type Publisher struct {
	conn   *nats.Conn
	stream jetstream.JetStream
	newID  func() string
}

func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("queridoc-web"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open JetStream: %w", err)
	}

	p := &Publisher{conn: conn, stream: js, newID: uuid.NewString}
	if err := p.ensureStream(); err != nil {
		// NATS may still be starting; Publish reports its own errors later.
		log.Printf("[WARN] %v", err)
	}
	return p, nil
}

func (p *Publisher) ensureStream() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := p.stream.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       streamName,
		Subjects:   []string{subjectPrefix + ">"},
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     30 * 24 * time.Hour,
		Duplicates: 2 * time.Minute,
	})
	if err != nil {
		return fmt.Errorf("ensure stream %s: %w", streamName, err)
	}
	return nil
}

// Subject maps an event type to its subject.
func Subject(eventType string) string {
	return subjectPrefix + eventType
}

// Message builds the JetStream message for an event.
func Message(event events.Event) (*nats.Msg, error) {
	data, err := json.Marshal(event.Payload())
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event.EventType(), err)
	}

	msg := nats.NewMsg(Subject(event.EventType()))
	msg.Data = data
	msg.Header.Set(HeaderEventType, event.EventType())
	return msg, nil
}

func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	msg, err := Message(event)
	if err != nil {
		return err
	}

	if _, err := p.stream.PublishMsg(ctx, msg, jetstream.WithMsgID(p.newID())); err != nil {
		return fmt.Errorf("publish to %s: %w", msg.Subject, err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
