package infrastructure

import (
	"fmt"

	"lotto/events"
)

// SubjectPrefix is the root of every subject the ledger publishes to
const SubjectPrefix = "lotto"

// EventSubjectMapper handles mapping between ledger events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts an event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	return m.subjectFor(event.Type())
}

func (m *EventSubjectMapper) subjectFor(eventType events.EventType) string {
	switch eventType {
	case events.EventTypeAccountOpened:
		return SubjectPrefix + ".accounts.opened"
	case events.EventTypeBalanceChange:
		return SubjectPrefix + ".accounts.balance_changed"
	case events.EventTypePlayPlaced:
		return SubjectPrefix + ".plays.placed"
	case events.EventTypePlayDeleted:
		return SubjectPrefix + ".plays.deleted"
	case events.EventTypePlayEdited:
		return SubjectPrefix + ".plays.edited"
	case events.EventTypePlayRefunded:
		return SubjectPrefix + ".plays.refunded"
	default:
		return fmt.Sprintf("%s.unknown.%s", SubjectPrefix, eventType)
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	for _, eventType := range events.AllEventTypes() {
		if m.subjectFor(eventType) == subject {
			return eventType
		}
	}
	return events.EventType(subject)
}

// GetAllSubjects returns all subjects that the ledger publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	types := events.AllEventTypes()
	subjects := make([]string, 0, len(types))
	for _, eventType := range types {
		subjects = append(subjects, m.subjectFor(eventType))
	}
	return subjects
}
