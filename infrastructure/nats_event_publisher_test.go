package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"lotteryledger/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedMessage struct {
	subject string
	data    []byte
}

type fakeMessageBus struct {
	published  []publishedMessage
	publishErr error
	handlers   map[string]func([]byte) error
}

func newFakeMessageBus() *fakeMessageBus {
	return &fakeMessageBus{handlers: make(map[string]func([]byte) error)}
}

func (b *fakeMessageBus) Publish(ctx context.Context, subject string, data []byte) error {
	if b.publishErr != nil {
		return b.publishErr
	}
	b.published = append(b.published, publishedMessage{subject: subject, data: data})
	return nil
}

func (b *fakeMessageBus) Subscribe(subject string, handler func([]byte) error) error {
	b.handlers[subject] = handler
	return nil
}

func TestNATSEventPublisher_Publish(t *testing.T) {
	bus := newFakeMessageBus()
	publisher := NewNATSEventPublisher(bus, NewEventSubjectMapper())

	ended := events.LotteryEndedEvent{LotteryID: 7, GuildID: 9, Round: 2, PayeeDiscordID: 300, Amount: 50, TicketCount: 5}
	require.NoError(t, publisher.Publish(ended))

	require.Len(t, bus.published, 1)
	assert.Equal(t, "lottery.ended", bus.published[0].subject)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(bus.published[0].data, &envelope))
	assert.Equal(t, string(events.EventTypeLotteryEnded), envelope.EventType)
	assert.Equal(t, SourceService, envelope.SourceService)
	assert.NotEmpty(t, envelope.EventID)

	decoded, err := envelope.DecodeEvent()
	require.NoError(t, err)
	assert.Equal(t, ended, decoded)
}

func TestNATSEventPublisher_PublishError(t *testing.T) {
	bus := newFakeMessageBus()
	bus.publishErr = errors.New("no responders")
	publisher := NewNATSEventPublisher(bus, NewEventSubjectMapper())

	err := publisher.Publish(events.LotteryStartedEvent{LotteryID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish event to NATS")
}

func TestNATSEventSubscriber_RoutesPublishedEvents(t *testing.T) {
	bus := newFakeMessageBus()
	mapper := NewEventSubjectMapper()
	publisher := NewNATSEventPublisher(bus, mapper)
	subscriber := NewNATSEventSubscriber(bus, mapper)

	var received events.Event
	require.NoError(t, subscriber.Subscribe(events.EventTypeLotteryTicketBought, func(ctx context.Context, event events.Event) error {
		received = event
		return nil
	}))
	require.Contains(t, bus.handlers, "lottery.ticket_bought")

	bought := events.LotteryTicketBoughtEvent{LotteryID: 1, GuildID: 2, Round: 1, BuyerDiscordID: 200, Price: 10, TicketCount: 1, MaxTicketCount: 5}
	require.NoError(t, publisher.Publish(bought))

	require.NoError(t, bus.handlers["lottery.ticket_bought"](bus.published[0].data))
	assert.Equal(t, bought, received)
}

func TestNATSEventSubscriber_BadMessages(t *testing.T) {
	bus := newFakeMessageBus()
	subscriber := NewNATSEventSubscriber(bus, NewEventSubjectMapper())
	require.NoError(t, subscriber.Subscribe(events.EventTypeLotteryEnded, func(ctx context.Context, event events.Event) error {
		return errors.New("should not be called")
	}))
	handler := bus.handlers["lottery.ended"]

	assert.Error(t, handler([]byte("not json")))

	unknown, err := json.Marshal(EventEnvelope{EventType: "mystery", Payload: json.RawMessage(`{}`)})
	require.NoError(t, err)
	assert.Error(t, handler(unknown))
}

func TestNATSEventSubscriber_HandlerErrorPropagates(t *testing.T) {
	bus := newFakeMessageBus()
	mapper := NewEventSubjectMapper()
	subscriber := NewNATSEventSubscriber(bus, mapper)
	require.NoError(t, subscriber.Subscribe(events.EventTypeLotteryReset, func(ctx context.Context, event events.Event) error {
		return errors.New("discord unavailable")
	}))

	require.NoError(t, NewNATSEventPublisher(bus, mapper).Publish(events.LotteryResetEvent{LotteryID: 1, Round: 2}))
	assert.EqualError(t, bus.handlers["lottery.reset"](bus.published[0].data), "discord unavailable")
}
