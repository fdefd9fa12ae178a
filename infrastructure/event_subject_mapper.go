package infrastructure

import (
	"fmt"

	"teto/events"
)

// DomainEventStream is the JetStream stream carrying every published domain event
const DomainEventStream = "teto_events"

// EventSubjectMapper maps domain events to NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeUserCreated:
		return "users.created"
	case events.EventTypeCreditsDeducted:
		return "credits.deducted"
	case events.EventTypeCreditsAwarded:
		return "credits.awarded"
	case events.EventTypeMessageRecorded:
		return "engagement.message_recorded"
	case events.EventTypeDailyResetCompleted:
		return "daily_reset.completed"
	default:
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// GetAllSubjects returns all subjects this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"users.created",
		"credits.deducted",
		"credits.awarded",
		"engagement.message_recorded",
		"daily_reset.completed",
	}
}
