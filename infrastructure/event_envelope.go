package infrastructure

import (
	"encoding/json"
	"fmt"
	"time"

	"lotteryledger/domain/events"

	"github.com/google/uuid"
)

// SourceService identifies this process in published envelopes
const SourceService = "lotteryledger"

// EventEnvelope wraps every event published to NATS
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEventEnvelope serializes an event into a fresh envelope
func NewEventEnvelope(event events.Event) (*EventEnvelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: SourceService,
		Payload:       payload,
	}, nil
}

// DecodeEvent deserializes the envelope payload into its concrete event type
func (e *EventEnvelope) DecodeEvent() (events.Event, error) {
	switch events.EventType(e.EventType) {
	case events.EventTypeLotteryCreated:
		return decodePayload[events.LotteryCreatedEvent](e.Payload)
	case events.EventTypeLotteryStarted:
		return decodePayload[events.LotteryStartedEvent](e.Payload)
	case events.EventTypeLotteryTicketBought:
		return decodePayload[events.LotteryTicketBoughtEvent](e.Payload)
	case events.EventTypeLotteryEnded:
		return decodePayload[events.LotteryEndedEvent](e.Payload)
	case events.EventTypeLotteryReset:
		return decodePayload[events.LotteryResetEvent](e.Payload)
	case events.EventTypeBalanceChange:
		return decodePayload[events.BalanceChangeEvent](e.Payload)
	case events.EventTypeUserCreated:
		return decodePayload[events.UserCreatedEvent](e.Payload)
	default:
		return nil, fmt.Errorf("unknown event type: %s", e.EventType)
	}
}

func decodePayload[T events.Event](payload []byte) (events.Event, error) {
	var event T
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	return event, nil
}
