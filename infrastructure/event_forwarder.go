package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lotto/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// StreamName is the JetStream stream holding ledger events
const StreamName = "lotto_events"

// MessagePublisher sends raw payloads to a subject
type MessagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// EventEnvelope wraps every forwarded event
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// EventForwarder copies committed ledger events from the in-process bus to NATS
type EventForwarder struct {
	publisher     MessagePublisher
	subjectMapper *EventSubjectMapper
	source        string
	now           func() time.Time
}

// NewEventForwarder creates a forwarder publishing through publisher
func NewEventForwarder(publisher MessagePublisher, subjectMapper *EventSubjectMapper, source string) *EventForwarder {
	return &EventForwarder{
		publisher:     publisher,
		subjectMapper: subjectMapper,
		source:        source,
		now:           time.Now,
	}
}

// Attach subscribes the forwarder to every ledger event on the bus
func (f *EventForwarder) Attach(bus *events.Bus) {
	bus.SubscribeAll(events.AllEventTypes(), func(ctx context.Context, event events.Event) {
		if err := f.Forward(ctx, event); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Failed to forward event to NATS")
		}
	})
}

// Forward publishes one event inside an envelope on its subject
func (f *EventForwarder) Forward(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     f.now().UTC(),
		SourceService: f.source,
		Payload:       payload,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := f.subjectMapper.MapEventToSubject(event)
	if err := f.publisher.Publish(ctx, subject, data); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Forwarded event to NATS")
	return nil
}
