// Package events publishes domain events so downstream consumers (dashboards,
// notification workers) can react without coupling to the request path.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Topics for published domain events.
const (
	TopicPasswordResetRequested = "secretaria.password_reset.requested"
	TopicPasswordResetCompleted = "secretaria.password_reset.completed"
	TopicAccountProvisioned     = "secretaria.account.provisioned"
	TopicStudentUpdated         = "secretaria.student.updated"
	TopicReservationCreated     = "secretaria.reservation.created"
	TopicLoanReturned           = "secretaria.loan.returned"
)

// Envelope wraps every published payload with its type and emission time.
type Envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Publisher emits domain events. Implementations must be safe for concurrent
// use.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
	Close() error
}

type watermillPublisher struct {
	publisher message.Publisher
}

// NewPublisher wraps any watermill publisher (GoChannel in-process, Kafka in
// production) behind the domain Publisher interface.
func NewPublisher(publisher message.Publisher) Publisher {
	return &watermillPublisher{publisher: publisher}
}

func (p *watermillPublisher) Publish(ctx context.Context, topic string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	env := Envelope{
		Type:       topic,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (p *watermillPublisher) Close() error {
	return p.publisher.Close()
}
