package application

import (
	"context"
	"sync"

	"lotteryledger/domain/entities"
	"lotteryledger/domain/events"
	"lotteryledger/domain/interfaces"
	"lotteryledger/domain/testhelpers"
)

// MockLotteryPoster implements LotteryPoster for testing
type MockLotteryPoster struct {
	mu            sync.Mutex
	Updated       []*entities.Lottery
	Announcements []events.LotteryEndedEvent
	Error         error
}

func (m *MockLotteryPoster) UpdateLotteryMessage(ctx context.Context, lottery *entities.Lottery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Error != nil {
		return m.Error
	}
	m.Updated = append(m.Updated, lottery)
	return nil
}

func (m *MockLotteryPoster) AnnounceSettlement(ctx context.Context, lottery *entities.Lottery, ended events.LotteryEndedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Error != nil {
		return m.Error
	}
	m.Announcements = append(m.Announcements, ended)
	return nil
}

// mockUnitOfWork serves testify mock repositories
type mockUnitOfWork struct {
	lotteryRepo    *testhelpers.MockLotteryRepository
	ticketRepo     *testhelpers.MockLotteryTicketRepository
	settlementRepo *testhelpers.MockLotterySettlementRepository
	userRepo       *testhelpers.MockUserRepository
	historyRepo    *testhelpers.MockBalanceHistoryRepository
	publisher      *testhelpers.MockEventPublisher
	began          int
	rolledBack     int
}

func newMockUnitOfWork() *mockUnitOfWork {
	return &mockUnitOfWork{
		lotteryRepo:    new(testhelpers.MockLotteryRepository),
		ticketRepo:     new(testhelpers.MockLotteryTicketRepository),
		settlementRepo: new(testhelpers.MockLotterySettlementRepository),
		userRepo:       new(testhelpers.MockUserRepository),
		historyRepo:    new(testhelpers.MockBalanceHistoryRepository),
		publisher:      new(testhelpers.MockEventPublisher),
	}
}

func (u *mockUnitOfWork) Begin(ctx context.Context) error { u.began++; return nil }
func (u *mockUnitOfWork) Commit() error                   { return nil }
func (u *mockUnitOfWork) Rollback() error                 { u.rolledBack++; return nil }

func (u *mockUnitOfWork) UserRepository() interfaces.UserRepository { return u.userRepo }
func (u *mockUnitOfWork) BalanceHistoryRepository() interfaces.BalanceHistoryRepository {
	return u.historyRepo
}
func (u *mockUnitOfWork) LotteryRepository() interfaces.LotteryRepository { return u.lotteryRepo }
func (u *mockUnitOfWork) LotteryTicketRepository() interfaces.LotteryTicketRepository {
	return u.ticketRepo
}
func (u *mockUnitOfWork) LotterySettlementRepository() interfaces.LotterySettlementRepository {
	return u.settlementRepo
}
func (u *mockUnitOfWork) EventBus() interfaces.EventPublisher { return u.publisher }

// mockUnitOfWorkFactory hands out the same mock unit of work for every guild
type mockUnitOfWorkFactory struct {
	uow    *mockUnitOfWork
	guilds []int64
}

func (f *mockUnitOfWorkFactory) CreateForGuild(guildID int64) UnitOfWork {
	f.guilds = append(f.guilds, guildID)
	return f.uow
}

// recordingSubscriber captures subscriptions
type recordingSubscriber struct {
	handlers map[events.EventType]func(context.Context, events.Event) error
}

func (s *recordingSubscriber) Subscribe(eventType events.EventType, handler func(context.Context, events.Event) error) error {
	if s.handlers == nil {
		s.handlers = make(map[events.EventType]func(context.Context, events.Event) error)
	}
	s.handlers[eventType] = handler
	return nil
}
