package admin

import (
	"context"
	"testing"

	"lotteryledger/application"
	"lotteryledger/domain/entities"
	"lotteryledger/domain/interfaces"
	"lotteryledger/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestConsole_RequiresGuild(t *testing.T) {
	console := NewConsole(nil)
	ctx := context.Background()

	for _, cmd := range []string{"status", "participants", "history", "balance 1", "start", "reset"} {
		assert.ErrorIs(t, console.Execute(ctx, cmd), errNoGuild, cmd)
	}
}

func TestConsole_SelectGuild(t *testing.T) {
	console := NewConsole(nil)
	ctx := context.Background()

	require.NoError(t, console.Execute(ctx, "guild 12345"))
	assert.Equal(t, int64(12345), console.guildID)

	assert.Error(t, console.Execute(ctx, "guild"))
	assert.Error(t, console.Execute(ctx, "guild abc"))
	assert.Error(t, console.Execute(ctx, "guild -4"))
	assert.Equal(t, int64(12345), console.guildID)
}

func TestConsole_ArgumentErrors(t *testing.T) {
	console := NewConsole(nil)
	console.guildID = 1
	ctx := context.Background()

	assert.ErrorContains(t, console.Execute(ctx, "balance"), "usage")
	assert.ErrorContains(t, console.Execute(ctx, "balance nope"), "invalid discord id")
	assert.ErrorContains(t, console.Execute(ctx, "history 0"), "limit must be between")
	assert.ErrorContains(t, console.Execute(ctx, "history x"), "invalid number")
	assert.ErrorContains(t, console.Execute(ctx, "frobnicate"), "unknown command")
}

func TestConsole_QuitAndBlank(t *testing.T) {
	console := NewConsole(nil)
	ctx := context.Background()

	assert.NoError(t, console.Execute(ctx, "   "))
	assert.ErrorIs(t, console.Execute(ctx, "exit"), errQuit)
	assert.ErrorIs(t, console.Execute(ctx, "QUIT"), errQuit)
}

func TestDescribeLottery(t *testing.T) {
	channelID, messageID := int64(10), int64(20)
	lottery := &entities.Lottery{
		OwnerDiscordID: 7,
		State:          entities.LotteryStateStarted,
		TicketPrice:    1000,
		MaxTicketCount: 4,
		Participants:   []int64{1, 2},
		ChannelID:      &channelID,
		MessageID:      &messageID,
	}

	out := describeLottery(lottery)
	assert.Contains(t, out, "Selling tickets")
	assert.Contains(t, out, "Tickets: 2 / 4")
	assert.Contains(t, out, "Pool:    2,000 bits")
	assert.Contains(t, out, "Message: 20 in channel 10")
}

// stubUnitOfWork serves mock repositories to the console
type stubUnitOfWork struct {
	lotteryRepo *testhelpers.MockLotteryRepository
	ticketRepo  *testhelpers.MockLotteryTicketRepository
	committed   bool
}

func (u *stubUnitOfWork) Begin(ctx context.Context) error { return nil }

func (u *stubUnitOfWork) Commit() error {
	u.committed = true
	return nil
}

func (u *stubUnitOfWork) Rollback() error { return nil }

func (u *stubUnitOfWork) UserRepository() interfaces.UserRepository { return nil }
func (u *stubUnitOfWork) BalanceHistoryRepository() interfaces.BalanceHistoryRepository {
	return nil
}
func (u *stubUnitOfWork) LotteryRepository() interfaces.LotteryRepository { return u.lotteryRepo }
func (u *stubUnitOfWork) LotteryTicketRepository() interfaces.LotteryTicketRepository {
	return u.ticketRepo
}
func (u *stubUnitOfWork) LotterySettlementRepository() interfaces.LotterySettlementRepository {
	return nil
}
func (u *stubUnitOfWork) EventBus() interfaces.EventPublisher { return nil }

type stubUnitOfWorkFactory struct {
	uow *stubUnitOfWork
}

func (f *stubUnitOfWorkFactory) CreateForGuild(guildID int64) application.UnitOfWork { return f.uow }

func TestConsole_ParticipantsUsesTicketSummary(t *testing.T) {
	lotteryRepo := &testhelpers.MockLotteryRepository{}
	ticketRepo := &testhelpers.MockLotteryTicketRepository{}
	uow := &stubUnitOfWork{lotteryRepo: lotteryRepo, ticketRepo: ticketRepo}
	console := NewConsole(&stubUnitOfWorkFactory{uow: uow})
	console.guildID = 77
	ctx := context.Background()

	lottery := &entities.Lottery{ID: 9, GuildID: 77, State: entities.LotteryStateStarted, TicketPrice: 10, MaxTicketCount: 5, Round: 3}
	lotteryRepo.On("GetCurrent", mock.Anything).Return(lottery, nil)
	ticketRepo.On("GetParticipants", mock.Anything, int64(9), int64(3)).Return([]int64{200, 300, 200}, nil)
	ticketRepo.On("GetParticipantSummary", mock.Anything, int64(9), int64(3)).Return([]*entities.LotteryParticipantInfo{
		{DiscordID: 200, TicketCount: 2},
		{DiscordID: 300, TicketCount: 1},
	}, nil)

	require.NoError(t, console.Execute(ctx, "participants"))
	ticketRepo.AssertExpectations(t)
	assert.False(t, uow.committed)
}

func TestConsole_ParticipantsWithoutLottery(t *testing.T) {
	lotteryRepo := &testhelpers.MockLotteryRepository{}
	ticketRepo := &testhelpers.MockLotteryTicketRepository{}
	console := NewConsole(&stubUnitOfWorkFactory{uow: &stubUnitOfWork{lotteryRepo: lotteryRepo, ticketRepo: ticketRepo}})
	console.guildID = 77

	lotteryRepo.On("GetCurrent", mock.Anything).Return(nil, nil)

	assert.ErrorIs(t, console.Execute(context.Background(), "participants"), errNoLottery)
	ticketRepo.AssertNotCalled(t, "GetParticipantSummary", mock.Anything, mock.Anything, mock.Anything)
}

func TestParticipantTable(t *testing.T) {
	data := participantTable([]*entities.LotteryParticipantInfo{
		{DiscordID: 200, TicketCount: 2},
		{DiscordID: 300, TicketCount: 1},
	}, 1000)

	require.Len(t, data, 3)
	assert.Equal(t, []string{"200", "2", "2,000"}, data[1])
	assert.Equal(t, []string{"300", "1", "1,000"}, data[2])
}
