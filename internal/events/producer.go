package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	skafka "github.com/segmentio/kafka-go"
)

// Auth lifecycle event names.
const (
	UserRegistered        = "user.registered"
	UserLogin             = "user.login"
	UserLogout            = "user.logout"
	PasswordChanged       = "user.password_changed"
	AccountDeactivated    = "account.deactivated"
	TokenRevoked          = "token.revoked"
	ServiceAccountCreated = "service_account.created"
	ServiceAccountRotated = "service_account.rotated"
)

type Event struct {
	ID      string            `json:"id"`
	Name    string            `json:"event"`
	Subject string            `json:"subject"`
	At      time.Time         `json:"at"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// Publisher is the interface the services publish through.
type Publisher interface {
	Publish(ctx context.Context, name, subject string, meta map[string]string) error
	Close() error
}

// Writer is the subset of the segmentio kafka writer the producer needs,
// kept small so tests can inject a fake.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer Writer

	// Now is overridable in tests; zero value means time.Now.
	Now func() time.Time
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &skafka.Writer{
		Addr:     skafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &skafka.LeastBytes{},
	}
	return &KafkaPublisher{writer: w}
}

// NewKafkaPublisherWithWriter injects a writer, used by tests.
func NewKafkaPublisherWithWriter(w Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now().UTC()
}

func (p *KafkaPublisher) Publish(ctx context.Context, name, subject string, meta map[string]string) error {
	ev := Event{
		ID:      uuid.NewString(),
		Name:    name,
		Subject: subject,
		At:      p.now(),
		Meta:    meta,
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, skafka.Message{
		Key:   []byte(subject),
		Value: b,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Nop discards events; used when no broker is configured and in tests.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, map[string]string) error { return nil }
func (Nop) Close() error                                                     { return nil }
