package infrastructure

import (
	"testing"

	"lotteryledger/domain/events"

	"github.com/stretchr/testify/assert"
)

func TestEventSubjectMapper(t *testing.T) {
	t.Parallel()

	mapper := NewEventSubjectMapper()

	tests := []struct {
		event   events.Event
		subject string
	}{
		{events.LotteryCreatedEvent{}, "lottery.created"},
		{events.LotteryStartedEvent{}, "lottery.started"},
		{events.LotteryTicketBoughtEvent{}, "lottery.ticket_bought"},
		{events.LotteryEndedEvent{}, "lottery.ended"},
		{events.LotteryResetEvent{}, "lottery.reset"},
		{events.BalanceChangeEvent{}, "users.balance_changed"},
		{events.UserCreatedEvent{}, "users.created"},
	}

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			assert.Equal(t, tt.subject, mapper.MapEventToSubject(tt.event))
			assert.Equal(t, tt.event.Type(), mapper.MapSubjectToEventType(tt.subject))
			assert.Contains(t, mapper.GetAllSubjects(), tt.subject)
		})
	}

	assert.Equal(t, "unknown.mystery", mapper.MapEventTypeToSubject("mystery"))
	assert.Equal(t, events.EventType("no.such.subject"), mapper.MapSubjectToEventType("no.such.subject"))
}
