package interfaces

import (
	"context"

	"lotteryledger/domain/entities"
)

// UserService defines the interface for user operations
type UserService interface {
	// GetOrCreateUser retrieves an existing user or creates a new one with initial balance
	GetOrCreateUser(ctx context.Context, discordID int64, username string) (*entities.User, error)
}

// LotteryService defines the interface for the guild lottery.
// Caller identity and payment are explicit on every mutating operation.
type LotteryService interface {
	// CreateLottery constructs the guild's lottery with the caller as owner
	CreateLottery(ctx context.Context, ownerDiscordID, ticketPrice, maxTicketCount int64) (*entities.Lottery, error)

	// StartLottery opens ticket sales (owner only, created state only)
	StartLottery(ctx context.Context, callerDiscordID int64) (*entities.Lottery, error)

	// BuyTicket pays exactly the ticket price and takes one slot; the final slot settles the pool to the buyer
	BuyTicket(ctx context.Context, buyerDiscordID, payment int64) (*TicketPurchaseResult, error)

	// ResetLottery reinitializes an ended lottery (owner only)
	ResetLottery(ctx context.Context, callerDiscordID, newTicketPrice, newMaxTicketCount int64) (*entities.Lottery, error)

	// GetLottery returns the guild's lottery with the current round's participants loaded
	GetLottery(ctx context.Context) (*entities.Lottery, error)

	// GetSettlements returns recent settlements of the guild's lottery, newest first
	GetSettlements(ctx context.Context, limit int) ([]*entities.LotterySettlement, error)

	// SetLotteryMessage records the Discord message that displays the lottery
	SetLotteryMessage(ctx context.Context, channelID, messageID int64) error
}

// TicketPurchaseResult contains the outcome of an accepted ticket purchase
type TicketPurchaseResult struct {
	Lottery    *entities.Lottery
	Ticket     *entities.LotteryTicket
	Settlement *entities.LotterySettlement // nil unless the purchase ended the round
	NewBalance int64                       // buyer balance after purchase and any payout
}
