package services

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

func TestLotteryService_CreateLottery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		price      int64
		max        int64
		setupMocks func(m *TestMocks)
		wantErr    error
	}{
		{
			name:  "creates lottery owned by caller",
			price: 10,
			max:   2,
			setupMocks: func(m *TestMocks) {
				m.LotteryRepo.On("GetCurrent", mock.Anything).Return(nil, nil)
				m.LotteryRepo.On("Create", mock.Anything, mock.MatchedBy(func(l *entities.Lottery) bool {
					return l.OwnerDiscordID == TestOwnerID && l.State == entities.LotteryStateCreated && l.GuildID == TestGuildID
				})).Run(func(args mock.Arguments) {
					args.Get(1).(*entities.Lottery).ID = TestLotteryID
				}).Return(nil)
				m.EventPublisher.On("Publish", events.LotteryCreatedEvent{
					LotteryID:      TestLotteryID,
					GuildID:        TestGuildID,
					OwnerDiscordID: TestOwnerID,
					TicketPrice:    10,
					MaxTicketCount: 2,
				}).Return(nil)
			},
		},
		{
			name:  "lottery already exists",
			price: 10,
			max:   2,
			setupMocks: func(m *TestMocks) {
				m.LotteryRepo.On("GetCurrent", mock.Anything).Return(newTestLottery(entities.LotteryStateCreated, 10, 2), nil)
			},
			wantErr: entities.ErrLotteryExists,
		},
		{
			name:  "invalid config",
			price: 0,
			max:   2,
			setupMocks: func(m *TestMocks) {
				m.LotteryRepo.On("GetCurrent", mock.Anything).Return(nil, nil)
			},
			wantErr: entities.ErrInvalidLotteryConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewTestMocks()
			tt.setupMocks(m)

			lottery, err := m.LotteryService().CreateLottery(context.Background(), TestOwnerID, tt.price, tt.max)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, lottery)
			} else {
				require.NoError(t, err)
				assert.Equal(t, TestLotteryID, lottery.ID)
				assert.Zero(t, lottery.Stakes())
			}
			m.AssertAllExpectations(t)
		})
	}
}

func TestLotteryService_StartLottery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		state   entities.LotteryState
		caller  int64
		wantErr error
	}{
		{name: "owner starts", state: entities.LotteryStateCreated, caller: TestOwnerID},
		{name: "non-owner", state: entities.LotteryStateCreated, caller: TestUser1ID, wantErr: entities.ErrNotOwner},
		{name: "already started", state: entities.LotteryStateStarted, caller: TestOwnerID, wantErr: entities.ErrAlreadyStartedOrEnded},
		{name: "ended", state: entities.LotteryStateEnded, caller: TestOwnerID, wantErr: entities.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewTestMocks()
			lottery := newTestLottery(tt.state, 10, 2)
			m.LotteryRepo.On("GetCurrentForUpdate", mock.Anything).Return(lottery, nil)
			m.TicketRepo.On("GetParticipants", mock.Anything, TestLotteryID, int64(1)).Return([]int64{}, nil)
			if tt.wantErr == nil {
				m.LotteryRepo.On("Update", mock.Anything, lottery).Return(nil)
				m.EventPublisher.On("Publish", events.LotteryStartedEvent{
					LotteryID:      TestLotteryID,
					GuildID:        TestGuildID,
					Round:          1,
					TicketPrice:    10,
					MaxTicketCount: 2,
				}).Return(nil)
			}

			started, err := m.LotteryService().StartLottery(context.Background(), tt.caller)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, started)
				m.LotteryRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				m.EventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, entities.LotteryStateStarted, started.State)
			}
			m.AssertAllExpectations(t)
		})
	}
}

func TestLotteryService_StartLottery_NotFound(t *testing.T) {
	t.Parallel()

	m := NewTestMocks()
	m.LotteryRepo.On("GetCurrentForUpdate", mock.Anything).Return(nil, nil)

	_, err := m.LotteryService().StartLottery(context.Background(), TestOwnerID)
	assert.ErrorIs(t, err, entities.ErrLotteryNotFound)
	m.AssertAllExpectations(t)
}

func TestLotteryService_BuyTicket_PartialRound(t *testing.T) {
	t.Parallel()

	m := NewTestMocks()
	lottery := newTestLottery(entities.LotteryStateStarted, 10, 2)
	m.LotteryRepo.On("GetCurrentForUpdate", mock.Anything).Return(lottery, nil)
	m.TicketRepo.On("GetParticipants", mock.Anything, TestLotteryID, int64(1)).Return([]int64{}, nil)
	m.UserRepo.On("GetByDiscordID", mock.Anything, TestUser2ID).Return(newTestUser(TestUser2ID, 100), nil)
	m.UserRepo.On("UpdateBalance", mock.Anything, TestUser2ID, int64(90)).Return(nil)
	m.BalanceHistoryRepo.On("Record", mock.Anything, mock.MatchedBy(func(h *entities.BalanceHistory) bool {
		return h.TransactionType == entities.TransactionTypeLottoTicket && h.ChangeAmount == -10
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.BalanceHistory).ID = 42
	}).Return(nil)
	m.EventPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)
	m.TicketRepo.On("Create", mock.Anything, mock.MatchedBy(func(ticket *entities.LotteryTicket) bool {
		return ticket.Position == 1 && ticket.DiscordID == TestUser2ID && ticket.BalanceHistoryID == 42
	})).Return(nil)
	m.EventPublisher.On("Publish", events.LotteryTicketBoughtEvent{
		LotteryID:      TestLotteryID,
		GuildID:        TestGuildID,
		Round:          1,
		BuyerDiscordID: TestUser2ID,
		Price:          10,
		TicketCount:    1,
		MaxTicketCount: 2,
	}).Return(nil)
	m.LotteryRepo.On("Update", mock.Anything, lottery).Return(nil)

	result, err := m.LotteryService().BuyTicket(context.Background(), TestUser2ID, 10)
	require.NoError(t, err)

	assert.Nil(t, result.Settlement)
	assert.Equal(t, int64(90), result.NewBalance)
	assert.Equal(t, entities.LotteryStateStarted, result.Lottery.State)
	assert.Equal(t, int64(10), result.Lottery.Stakes())
	assert.Equal(t, []int64{TestUser2ID}, result.Lottery.ParticipantsSnapshot())
	m.SettlementRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.AssertAllExpectations(t)
}

func TestLotteryService_BuyTicket_FinalTicketSettles(t *testing.T) {
	t.Parallel()

	m := NewTestMocks()
	lottery := newTestLottery(entities.LotteryStateStarted, 10, 2)
	m.LotteryRepo.On("GetCurrentForUpdate", mock.Anything).Return(lottery, nil)
	m.TicketRepo.On("GetParticipants", mock.Anything, TestLotteryID, int64(1)).Return([]int64{TestUser1ID}, nil)
	m.UserRepo.On("GetByDiscordID", mock.Anything, TestUser2ID).Return(newTestUser(TestUser2ID, 100), nil)
	m.UserRepo.On("UpdateBalance", mock.Anything, TestUser2ID, int64(90)).Return(nil).Once()
	m.UserRepo.On("UpdateBalance", mock.Anything, TestUser2ID, int64(110)).Return(nil).Once()
	m.BalanceHistoryRepo.On("Record", mock.Anything, mock.MatchedBy(func(h *entities.BalanceHistory) bool {
		return h.TransactionType == entities.TransactionTypeLottoTicket
	})).Return(nil).Once()
	m.BalanceHistoryRepo.On("Record", mock.Anything, mock.MatchedBy(func(h *entities.BalanceHistory) bool {
		return h.TransactionType == entities.TransactionTypeLottoPayout && h.BalanceBefore == 90 && h.BalanceAfter == 110
	})).Return(nil).Once()
	m.EventPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil).Twice()
	m.TicketRepo.On("Create", mock.Anything, mock.MatchedBy(func(ticket *entities.LotteryTicket) bool {
		return ticket.Position == 2
	})).Return(nil)
	m.SettlementRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *entities.LotterySettlement) bool {
		return s.PayeeDiscordID == TestUser2ID && s.Amount == 20 && s.TicketCount == 2 && s.Round == 1
	})).Return(nil)
	m.EventPublisher.On("Publish", events.LotteryEndedEvent{
		LotteryID:      TestLotteryID,
		GuildID:        TestGuildID,
		Round:          1,
		PayeeDiscordID: TestUser2ID,
		Amount:         20,
		TicketCount:    2,
	}).Return(nil)
	m.LotteryRepo.On("Update", mock.Anything, mock.MatchedBy(func(l *entities.Lottery) bool {
		return l.State == entities.LotteryStateEnded
	})).Return(nil)

	result, err := m.LotteryService().BuyTicket(context.Background(), TestUser2ID, 10)
	require.NoError(t, err)

	require.NotNil(t, result.Settlement)
	assert.Equal(t, TestUser2ID, result.Settlement.PayeeDiscordID)
	assert.Equal(t, int64(110), result.NewBalance)
	assert.Equal(t, entities.LotteryStateEnded, result.Lottery.State)
	assert.Zero(t, result.Lottery.Stakes())
	m.AssertAllExpectations(t)
}

func TestLotteryService_BuyTicket_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		state     entities.LotteryState
		payment   int64
		balance   int64
		setupUser bool
		wantErr   error
	}{
		{name: "lottery not started", state: entities.LotteryStateCreated, payment: 10, wantErr: entities.ErrNotStartedOrEnded},
		{name: "lottery ended", state: entities.LotteryStateEnded, payment: 10, wantErr: entities.ErrNotStartedOrEnded},
		{name: "wrong payment", state: entities.LotteryStateStarted, payment: 5, wantErr: entities.ErrInvalidPayment},
		{name: "insufficient balance", state: entities.LotteryStateStarted, payment: 10, balance: 9, setupUser: true, wantErr: entities.ErrInsufficientBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewTestMocks()
			lottery := newTestLottery(tt.state, 10, 2)
			m.LotteryRepo.On("GetCurrentForUpdate", mock.Anything).Return(lottery, nil)
			m.TicketRepo.On("GetParticipants", mock.Anything, TestLotteryID, int64(1)).Return([]int64{}, nil)
			if tt.setupUser {
				m.UserRepo.On("GetByDiscordID", mock.Anything, TestUser1ID).Return(newTestUser(TestUser1ID, tt.balance), nil)
			}

			result, err := m.LotteryService().BuyTicket(context.Background(), TestUser1ID, tt.payment)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, result)

			m.UserRepo.AssertNotCalled(t, "UpdateBalance", mock.Anything, mock.Anything, mock.Anything)
			m.TicketRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			m.LotteryRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			m.EventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
			m.AssertAllExpectations(t)
		})
	}
}

func TestLotteryService_BuyTicket_UnknownUser(t *testing.T) {
	t.Parallel()

	m := NewTestMocks()
	m.LotteryRepo.On("GetCurrentForUpdate", mock.Anything).Return(newTestLottery(entities.LotteryStateStarted, 10, 2), nil)
	m.TicketRepo.On("GetParticipants", mock.Anything, TestLotteryID, int64(1)).Return([]int64{}, nil)
	m.UserRepo.On("GetByDiscordID", mock.Anything, TestUser1ID).Return(nil, nil)

	_, err := m.LotteryService().BuyTicket(context.Background(), TestUser1ID, 10)
	assert.ErrorIs(t, err, entities.ErrUserNotFound)
	m.AssertAllExpectations(t)
}

func TestLotteryService_BuyTicket_RepositoryFailure(t *testing.T) {
	t.Parallel()

	m := NewTestMocks()
	m.LotteryRepo.On("GetCurrentForUpdate", mock.Anything).Return(newTestLottery(entities.LotteryStateStarted, 10, 2), nil)
	m.TicketRepo.On("GetParticipants", mock.Anything, TestLotteryID, int64(1)).Return([]int64{}, nil)
	m.UserRepo.On("GetByDiscordID", mock.Anything, TestUser1ID).Return(newTestUser(TestUser1ID, 100), nil)
	m.UserRepo.On("UpdateBalance", mock.Anything, TestUser1ID, int64(90)).Return(errors.New("connection reset"))

	_, err := m.LotteryService().BuyTicket(context.Background(), TestUser1ID, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to update user balance")
	m.EventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
	m.AssertAllExpectations(t)
}

func TestLotteryService_ResetLottery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		state   entities.LotteryState
		caller  int64
		price   int64
		max     int64
		wantErr error
	}{
		{name: "owner resets ended lottery", state: entities.LotteryStateEnded, caller: TestOwnerID, price: 2, max: 5},
		{name: "non-owner", state: entities.LotteryStateEnded, caller: TestUser1ID, price: 2, max: 5, wantErr: entities.ErrNotOwner},
		{name: "still running", state: entities.LotteryStateStarted, caller: TestOwnerID, price: 2, max: 5, wantErr: entities.ErrNotEnded},
		{name: "invalid config", state: entities.LotteryStateEnded, caller: TestOwnerID, price: 2, max: 0, wantErr: entities.ErrInvalidLotteryConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewTestMocks()
			lottery := newTestLottery(tt.state, 10, 1)
			m.LotteryRepo.On("GetCurrentForUpdate", mock.Anything).Return(lottery, nil)
			m.TicketRepo.On("GetParticipants", mock.Anything, TestLotteryID, int64(1)).Return([]int64{TestUser2ID}, nil)
			if tt.wantErr == nil {
				m.LotteryRepo.On("Update", mock.Anything, lottery).Return(nil)
				m.EventPublisher.On("Publish", events.LotteryResetEvent{
					LotteryID:      TestLotteryID,
					GuildID:        TestGuildID,
					Round:          2,
					TicketPrice:    tt.price,
					MaxTicketCount: tt.max,
				}).Return(nil)
			}

			reset, err := m.LotteryService().ResetLottery(context.Background(), tt.caller, tt.price, tt.max)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				m.EventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, entities.LotteryStateCreated, reset.State)
				assert.Empty(t, reset.ParticipantsSnapshot())
				assert.Zero(t, reset.Stakes())
			}
			m.AssertAllExpectations(t)
		})
	}
}

func TestLotteryService_GetLottery(t *testing.T) {
	t.Parallel()

	m := NewTestMocks()
	m.LotteryRepo.On("GetCurrent", mock.Anything).Return(newTestLottery(entities.LotteryStateStarted, 10, 3), nil)
	m.TicketRepo.On("GetParticipants", mock.Anything, TestLotteryID, int64(1)).Return([]int64{TestUser1ID, TestUser1ID}, nil)

	lottery, err := m.LotteryService().GetLottery(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(20), lottery.Stakes())
	assert.Equal(t, int64(1), lottery.TicketsRemaining())
	m.AssertAllExpectations(t)
}

func TestLotteryService_GetSettlements(t *testing.T) {
	t.Parallel()

	m := NewTestMocks()
	settlements := []*entities.LotterySettlement{{ID: 1, LotteryID: TestLotteryID, Round: 1, PayeeDiscordID: TestUser2ID, Amount: 10, TicketCount: 1}}
	m.LotteryRepo.On("GetCurrent", mock.Anything).Return(newTestLottery(entities.LotteryStateEnded, 10, 1), nil)
	m.SettlementRepo.On("GetByLottery", mock.Anything, TestLotteryID, 5).Return(settlements, nil)

	got, err := m.LotteryService().GetSettlements(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, settlements, got)
	m.AssertAllExpectations(t)
}

func TestLotteryService_SetLotteryMessage(t *testing.T) {
	t.Parallel()

	m := NewTestMocks()
	m.LotteryRepo.On("GetCurrentForUpdate", mock.Anything).Return(newTestLottery(entities.LotteryStateCreated, 10, 1), nil)
	m.LotteryRepo.On("Update", mock.Anything, mock.MatchedBy(func(l *entities.Lottery) bool {
		return l.HasMessage() && *l.ChannelID == TestChannelID && *l.MessageID == TestMessageID
	})).Return(nil)

	require.NoError(t, m.LotteryService().SetLotteryMessage(context.Background(), TestChannelID, TestMessageID))
	m.AssertAllExpectations(t)
}
