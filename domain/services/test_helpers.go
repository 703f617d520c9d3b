package services

import (
	"time"

	"lotteryledger/domain/entities"
	"lotteryledger/domain/testhelpers"

	"github.com/stretchr/testify/mock"
)

// Test constants for consistent test data
const (
	TestGuildID        = int64(555555555)
	TestLotteryID      = int64(1)
	TestOwnerID        = int64(100)
	TestUser1ID        = int64(200)
	TestUser2ID        = int64(300)
	TestInitialBalance = int64(100000)
	TestChannelID      = int64(987654321)
	TestMessageID      = int64(123456789)
)

// TestMocks aggregates all repository mocks for testing
type TestMocks struct {
	LotteryRepo        *testhelpers.MockLotteryRepository
	TicketRepo         *testhelpers.MockLotteryTicketRepository
	SettlementRepo     *testhelpers.MockLotterySettlementRepository
	UserRepo           *testhelpers.MockUserRepository
	BalanceHistoryRepo *testhelpers.MockBalanceHistoryRepository
	EventPublisher     *testhelpers.MockEventPublisher
}

// NewTestMocks creates a new set of mocks
func NewTestMocks() *TestMocks {
	return &TestMocks{
		LotteryRepo:        &testhelpers.MockLotteryRepository{},
		TicketRepo:         &testhelpers.MockLotteryTicketRepository{},
		SettlementRepo:     &testhelpers.MockLotterySettlementRepository{},
		UserRepo:           &testhelpers.MockUserRepository{},
		BalanceHistoryRepo: &testhelpers.MockBalanceHistoryRepository{},
		EventPublisher:     &testhelpers.MockEventPublisher{},
	}
}

// LotteryService builds a lottery service wired to the mocks
func (m *TestMocks) LotteryService() *lotteryService {
	return NewLotteryService(
		TestGuildID,
		m.LotteryRepo,
		m.TicketRepo,
		m.SettlementRepo,
		m.UserRepo,
		m.BalanceHistoryRepo,
		m.EventPublisher,
	).(*lotteryService)
}

// AssertAllExpectations verifies all mock expectations were met
func (m *TestMocks) AssertAllExpectations(t mock.TestingT) {
	m.LotteryRepo.AssertExpectations(t)
	m.TicketRepo.AssertExpectations(t)
	m.SettlementRepo.AssertExpectations(t)
	m.UserRepo.AssertExpectations(t)
	m.BalanceHistoryRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
}

// newTestLottery returns a lottery row as the repository would load it
func newTestLottery(state entities.LotteryState, price, max int64) *entities.Lottery {
	return &entities.Lottery{
		ID:             TestLotteryID,
		GuildID:        TestGuildID,
		OwnerDiscordID: TestOwnerID,
		State:          state,
		TicketPrice:    price,
		MaxTicketCount: max,
		Round:          1,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
}

// newTestUser returns a user with the given balance fully available
func newTestUser(discordID, balance int64) *entities.User {
	return &entities.User{
		DiscordID:        discordID,
		GuildID:          TestGuildID,
		Username:         "testuser",
		Balance:          balance,
		AvailableBalance: balance,
		CreatedAt:        time.Now(),
	}
}
