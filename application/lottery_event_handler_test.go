package application

import (
	"context"
	"errors"
	"testing"

	"lotteryledger/domain/entities"
	"lotteryledger/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testGuildID   int64 = 555
	testLotteryID int64 = 7
)

func newTrackedLottery(state entities.LotteryState) *entities.Lottery {
	channelID, messageID := int64(11), int64(22)
	return &entities.Lottery{
		ID:             testLotteryID,
		GuildID:        testGuildID,
		OwnerDiscordID: 100,
		State:          state,
		TicketPrice:    10,
		MaxTicketCount: 3,
		Round:          1,
		ChannelID:      &channelID,
		MessageID:      &messageID,
	}
}

func expectLoad(uow *mockUnitOfWork, lottery *entities.Lottery, participants []int64) {
	uow.lotteryRepo.On("GetCurrent", mock.Anything).Return(lottery, nil)
	if lottery != nil {
		uow.ticketRepo.On("GetParticipants", mock.Anything, lottery.ID, lottery.Round).Return(participants, nil)
	}
}

func TestLotteryEventHandler_TicketBoughtRefreshesMessage(t *testing.T) {
	uow := newMockUnitOfWork()
	factory := &mockUnitOfWorkFactory{uow: uow}
	poster := &MockLotteryPoster{}
	handler := NewLotteryEventHandler(factory, poster)

	lottery := newTrackedLottery(entities.LotteryStateStarted)
	expectLoad(uow, lottery, []int64{200})

	err := handler.HandleLotteryEvent(context.Background(), events.LotteryTicketBoughtEvent{
		LotteryID: testLotteryID, GuildID: testGuildID, Round: 1, BuyerDiscordID: 200, Price: 10, TicketCount: 1, MaxTicketCount: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{testGuildID}, factory.guilds)
	require.Len(t, poster.Updated, 1)
	assert.Equal(t, []int64{200}, poster.Updated[0].Participants)
	assert.Empty(t, poster.Announcements)
	assert.Equal(t, 1, uow.rolledBack)
}

func TestLotteryEventHandler_EndedAnnounces(t *testing.T) {
	uow := newMockUnitOfWork()
	poster := &MockLotteryPoster{}
	handler := NewLotteryEventHandler(&mockUnitOfWorkFactory{uow: uow}, poster)

	lottery := newTrackedLottery(entities.LotteryStateEnded)
	expectLoad(uow, lottery, []int64{200, 300, 300})

	ended := events.LotteryEndedEvent{LotteryID: testLotteryID, GuildID: testGuildID, Round: 1, PayeeDiscordID: 300, Amount: 30, TicketCount: 3}
	require.NoError(t, handler.HandleLotteryEvent(context.Background(), ended))

	assert.Len(t, poster.Updated, 1)
	assert.Equal(t, []events.LotteryEndedEvent{ended}, poster.Announcements)
}

func TestLotteryEventHandler_UntrackedLotteryIsSkipped(t *testing.T) {
	uow := newMockUnitOfWork()
	poster := &MockLotteryPoster{}
	handler := NewLotteryEventHandler(&mockUnitOfWorkFactory{uow: uow}, poster)

	lottery := newTrackedLottery(entities.LotteryStateCreated)
	lottery.ChannelID, lottery.MessageID = nil, nil
	expectLoad(uow, lottery, nil)

	require.NoError(t, handler.HandleLotteryEvent(context.Background(), events.LotteryCreatedEvent{LotteryID: testLotteryID, GuildID: testGuildID}))
	assert.Empty(t, poster.Updated)
}

func TestLotteryEventHandler_MissingLotteryIsSkipped(t *testing.T) {
	uow := newMockUnitOfWork()
	poster := &MockLotteryPoster{}
	handler := NewLotteryEventHandler(&mockUnitOfWorkFactory{uow: uow}, poster)

	expectLoad(uow, nil, nil)

	require.NoError(t, handler.HandleLotteryEvent(context.Background(), events.LotteryResetEvent{LotteryID: testLotteryID, GuildID: testGuildID, Round: 2}))
	assert.Empty(t, poster.Updated)
}

func TestLotteryEventHandler_PosterFailure(t *testing.T) {
	uow := newMockUnitOfWork()
	poster := &MockLotteryPoster{Error: errors.New("discord unavailable")}
	handler := NewLotteryEventHandler(&mockUnitOfWorkFactory{uow: uow}, poster)

	expectLoad(uow, newTrackedLottery(entities.LotteryStateStarted), []int64{})

	err := handler.HandleLotteryEvent(context.Background(), events.LotteryStartedEvent{LotteryID: testLotteryID, GuildID: testGuildID, Round: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discord unavailable")
}

func TestLotteryEventHandler_UnexpectedEvent(t *testing.T) {
	handler := NewLotteryEventHandler(&mockUnitOfWorkFactory{uow: newMockUnitOfWork()}, &MockLotteryPoster{})

	err := handler.HandleLotteryEvent(context.Background(), events.BalanceChangeEvent{UserID: 1})
	assert.Error(t, err)
}

func TestRegisterLotterySubscriptions(t *testing.T) {
	subscriber := &recordingSubscriber{}
	handler := NewLotteryEventHandler(&mockUnitOfWorkFactory{uow: newMockUnitOfWork()}, &MockLotteryPoster{})

	require.NoError(t, RegisterLotterySubscriptions(subscriber, handler))

	for _, eventType := range []events.EventType{
		events.EventTypeLotteryCreated,
		events.EventTypeLotteryStarted,
		events.EventTypeLotteryTicketBought,
		events.EventTypeLotteryEnded,
		events.EventTypeLotteryReset,
	} {
		assert.Contains(t, subscriber.handlers, eventType)
	}
	assert.NotContains(t, subscriber.handlers, events.EventTypeBalanceChange)
}

func TestAssertEventType(t *testing.T) {
	started := events.LotteryStartedEvent{LotteryID: 1}

	got, err := AssertEventType[events.LotteryStartedEvent](started)
	require.NoError(t, err)
	assert.Equal(t, started, got)

	got, err = AssertEventType[events.LotteryStartedEvent](&started)
	require.NoError(t, err)
	assert.Equal(t, started, got)

	_, err = AssertEventType[events.LotteryStartedEvent](events.LotteryResetEvent{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lottery_reset")
}
