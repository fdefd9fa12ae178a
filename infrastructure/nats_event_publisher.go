package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"teto/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// MessagePublisher sends raw bytes to a subject
type MessagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// EventEnvelope wraps every event published to NATS
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// NATSEventPublisher fans events out to the in-process bus and, when a
// NATS connection is configured, to JetStream
type NATSEventPublisher struct {
	client        MessagePublisher
	subjectMapper *EventSubjectMapper
	bus           *events.Bus
	publishWait   time.Duration
}

// NewNATSEventPublisher creates a new event publisher. client may be nil to publish locally only.
func NewNATSEventPublisher(client MessagePublisher, subjectMapper *EventSubjectMapper, bus *events.Bus) *NATSEventPublisher {
	return &NATSEventPublisher{
		client:        client,
		subjectMapper: subjectMapper,
		bus:           bus,
		publishWait:   5 * time.Second,
	}
}

// Publish emits the event locally and then to NATS
func (p *NATSEventPublisher) Publish(event events.Event) error {
	if p.bus != nil {
		p.bus.Emit(context.Background(), event)
	}

	if p.client == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: "teto",
		Payload:       payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := p.subjectMapper.MapEventToSubject(event)

	ctx, cancel := context.WithTimeout(context.Background(), p.publishWait)
	defer cancel()

	if err := p.client.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Published event to NATS")

	return nil
}
