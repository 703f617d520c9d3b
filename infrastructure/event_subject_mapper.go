package infrastructure

import (
	"fmt"

	"lotteryledger/domain/events"
)

// LotteryEventsStream is the JetStream stream carrying every subject this service publishes
const LotteryEventsStream = "lottery_events"

var subjectsByEventType = map[events.EventType]string{
	events.EventTypeLotteryCreated:      "lottery.created",
	events.EventTypeLotteryStarted:      "lottery.started",
	events.EventTypeLotteryTicketBought: "lottery.ticket_bought",
	events.EventTypeLotteryEnded:        "lottery.ended",
	events.EventTypeLotteryReset:        "lottery.reset",
	events.EventTypeBalanceChange:       "users.balance_changed",
	events.EventTypeUserCreated:         "users.created",
}

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	return m.MapEventTypeToSubject(event.Type())
}

// MapEventTypeToSubject converts an event type to its NATS subject
func (m *EventSubjectMapper) MapEventTypeToSubject(eventType events.EventType) string {
	if subject, ok := subjectsByEventType[eventType]; ok {
		return subject
	}
	return fmt.Sprintf("unknown.%s", eventType)
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	for eventType, s := range subjectsByEventType {
		if s == subject {
			return eventType
		}
	}
	return events.EventType(subject)
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"lottery.created",
		"lottery.started",
		"lottery.ticket_bought",
		"lottery.ended",
		"lottery.reset",
		"users.balance_changed",
		"users.created",
	}
}
