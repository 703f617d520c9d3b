package interfaces

import (
	"context"

	"lotteryledger/domain/entities"
	"lotteryledger/domain/events"
)

// UserRepository defines the interface for guild-scoped account data access
type UserRepository interface {
	// GetByDiscordID retrieves a user by their Discord ID in the current guild
	GetByDiscordID(ctx context.Context, discordID int64) (*entities.User, error)

	// Create creates a new user with the initial balance
	Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*entities.User, error)

	// UpdateBalance updates a user's balance atomically
	UpdateBalance(ctx context.Context, discordID int64, newBalance int64) error
}

// BalanceHistoryRepository defines the interface for balance history data access
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry and sets its ID
	Record(ctx context.Context, history *entities.BalanceHistory) error

	// GetByUser returns the most recent balance changes for a user
	GetByUser(ctx context.Context, discordID int64, limit int) ([]*entities.BalanceHistory, error)
}

// LotteryRepository defines the interface for the guild's lottery row
type LotteryRepository interface {
	// Create inserts a new lottery and sets its ID and timestamps
	Create(ctx context.Context, lottery *entities.Lottery) error

	// GetCurrent returns the guild's lottery, or nil if none exists
	GetCurrent(ctx context.Context) (*entities.Lottery, error)

	// GetCurrentForUpdate returns the guild's lottery with a row lock held until the transaction ends
	GetCurrentForUpdate(ctx context.Context) (*entities.Lottery, error)

	// Update persists state, price, capacity, round and message tracking
	Update(ctx context.Context, lottery *entities.Lottery) error

	// ListAll returns every lottery across guilds, ordered by guild
	ListAll(ctx context.Context) ([]*entities.Lottery, error)
}

// LotteryTicketRepository defines the interface for ticket data access
type LotteryTicketRepository interface {
	// Create inserts a ticket and sets its ID
	Create(ctx context.Context, ticket *entities.LotteryTicket) error

	// GetParticipants returns the buyers of a round in purchase order
	GetParticipants(ctx context.Context, lotteryID, round int64) ([]int64, error)

	// GetParticipantSummary returns ticket counts per participant for a round
	GetParticipantSummary(ctx context.Context, lotteryID, round int64) ([]*entities.LotteryParticipantInfo, error)
}

// LotterySettlementRepository defines the interface for settlement records
type LotterySettlementRepository interface {
	// Create inserts a settlement and sets its ID
	Create(ctx context.Context, settlement *entities.LotterySettlement) error

	// GetByLottery returns the most recent settlements of a lottery, newest first
	GetByLottery(ctx context.Context, lotteryID int64, limit int) ([]*entities.LotterySettlement, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events until the surrounding transaction ends
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes all pending events; called after commit
	Flush(ctx context.Context) error

	// Discard drops all pending events; called on rollback
	Discard()
}
