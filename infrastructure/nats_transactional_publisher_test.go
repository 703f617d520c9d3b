package infrastructure

import (
	"context"
	"errors"
	"sync"
	"testing"

	"lotteryledger/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu              sync.Mutex
	PublishedEvents []events.Event
	PublishError    error
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishError != nil {
		return m.PublishError
	}
	m.PublishedEvents = append(m.PublishedEvents, event)
	return nil
}

func TestNATSTransactionalPublisher_HoldsUntilFlush(t *testing.T) {
	mockPublisher := &MockEventPublisher{}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	bought := events.LotteryTicketBoughtEvent{LotteryID: 1, GuildID: 2, Round: 1, BuyerDiscordID: 200, Price: 10, TicketCount: 1, MaxTicketCount: 3}
	ended := events.LotteryEndedEvent{LotteryID: 1, GuildID: 2, Round: 1, PayeeDiscordID: 300, Amount: 30, TicketCount: 3}

	require.NoError(t, transPublisher.Publish(bought))
	require.NoError(t, transPublisher.Publish(ended))
	assert.Empty(t, mockPublisher.PublishedEvents)

	require.NoError(t, transPublisher.Flush(context.Background()))
	assert.Equal(t, []events.Event{bought, ended}, mockPublisher.PublishedEvents)

	// A second flush has nothing left to send
	require.NoError(t, transPublisher.Flush(context.Background()))
	assert.Len(t, mockPublisher.PublishedEvents, 2)
}

func TestNATSTransactionalPublisher_Discard(t *testing.T) {
	mockPublisher := &MockEventPublisher{}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	require.NoError(t, transPublisher.Publish(events.LotteryStartedEvent{LotteryID: 1}))
	transPublisher.Discard()
	require.NoError(t, transPublisher.Flush(context.Background()))

	assert.Empty(t, mockPublisher.PublishedEvents)
}

func TestNATSTransactionalPublisher_LocalHandlers(t *testing.T) {
	mockPublisher := &MockEventPublisher{}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	var received []events.Event
	transPublisher.RegisterLocalHandler(events.EventTypeLotteryEnded, func(ctx context.Context, event events.Event) error {
		received = append(received, event)
		return nil
	})
	transPublisher.RegisterLocalHandler(events.EventTypeLotteryEnded, func(ctx context.Context, event events.Event) error {
		return errors.New("handler failed")
	})

	ended := events.LotteryEndedEvent{LotteryID: 1, PayeeDiscordID: 300, Amount: 20}
	require.NoError(t, transPublisher.Publish(events.LotteryResetEvent{LotteryID: 1}))
	require.NoError(t, transPublisher.Publish(ended))

	assert.Empty(t, received)
	require.NoError(t, transPublisher.Flush(context.Background()))

	assert.Equal(t, []events.Event{ended}, received)
	assert.Len(t, mockPublisher.PublishedEvents, 2, "failing handler must not block publishing")
}

func TestNATSTransactionalPublisher_PublishErrorsContinue(t *testing.T) {
	mockPublisher := &MockEventPublisher{PublishError: errors.New("nats down")}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	require.NoError(t, transPublisher.Publish(events.LotteryStartedEvent{LotteryID: 1}))
	assert.NoError(t, transPublisher.Flush(context.Background()))
}

func TestNATSTransactionalPublisher_NilPublisherRunsLocalOnly(t *testing.T) {
	transPublisher := NewNATSTransactionalPublisher(nil)

	calls := 0
	transPublisher.RegisterLocalHandler(events.EventTypeLotteryStarted, func(ctx context.Context, event events.Event) error {
		calls++
		return nil
	})

	require.NoError(t, transPublisher.Publish(events.LotteryStartedEvent{LotteryID: 1}))
	require.NoError(t, transPublisher.Flush(context.Background()))
	assert.Equal(t, 1, calls)
}
