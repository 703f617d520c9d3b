package entities

import (
	"time"
)

// LotteryState represents where a lottery is in its lifecycle
type LotteryState string

const (
	LotteryStateCreated LotteryState = "created"
	LotteryStateStarted LotteryState = "started"
	LotteryStateEnded   LotteryState = "ended"
)

// IsValid returns true if the state is one of the known lifecycle states
func (s LotteryState) IsValid() bool {
	switch s {
	case LotteryStateCreated, LotteryStateStarted, LotteryStateEnded:
		return true
	default:
		return false
	}
}

// Lottery is a guild's fixed-price lottery. Each round moves
// created -> started -> ended and back to created on reset.
type Lottery struct {
	ID             int64        `db:"id"`
	GuildID        int64        `db:"guild_id"`
	OwnerDiscordID int64        `db:"owner_discord_id"`
	State          LotteryState `db:"state"`
	TicketPrice    int64        `db:"ticket_price"`
	MaxTicketCount int64        `db:"max_ticket_count"`
	Round          int64        `db:"round"`
	MessageID      *int64       `db:"message_id"`
	ChannelID      *int64       `db:"channel_id"`
	CreatedAt      time.Time    `db:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at"`

	// Participants holds the buyer of every ticket in the current round, in purchase order.
	// Loaded from lottery_tickets; not a column.
	Participants []int64 `db:"-"`
}

// LotterySettlement is produced when the final ticket of a round is bought
type LotterySettlement struct {
	ID             int64     `db:"id"`
	LotteryID      int64     `db:"lottery_id"`
	Round          int64     `db:"round"`
	PayeeDiscordID int64     `db:"payee_discord_id"`
	Amount         int64     `db:"amount"`
	TicketCount    int64     `db:"ticket_count"`
	SettledAt      time.Time `db:"settled_at"`
}

// LotteryPurchase is the in-memory outcome of an accepted ticket purchase
type LotteryPurchase struct {
	BuyerDiscordID int64
	Price          int64
	Position       int64 // 1-based slot within the round
	Settlement     *LotterySettlement
}

// Ended returns true if the purchase filled the lottery and triggered settlement
func (p *LotteryPurchase) Ended() bool {
	return p.Settlement != nil
}

// ValidateLotteryConfig checks the price and capacity of a round
func ValidateLotteryConfig(ticketPrice, maxTicketCount int64) error {
	if ticketPrice <= 0 || maxTicketCount < 1 {
		return ErrInvalidLotteryConfig
	}
	return nil
}

// NewLottery constructs a lottery owned by ownerDiscordID in the created state
func NewLottery(guildID, ownerDiscordID, ticketPrice, maxTicketCount int64) (*Lottery, error) {
	if err := ValidateLotteryConfig(ticketPrice, maxTicketCount); err != nil {
		return nil, err
	}

	return &Lottery{
		GuildID:        guildID,
		OwnerDiscordID: ownerDiscordID,
		State:          LotteryStateCreated,
		TicketPrice:    ticketPrice,
		MaxTicketCount: maxTicketCount,
		Round:          1,
		Participants:   []int64{},
	}, nil
}

// IsOwner returns true if discordID owns the lottery
func (l *Lottery) IsOwner(discordID int64) bool {
	return l.OwnerDiscordID == discordID
}

// Start opens ticket sales
func (l *Lottery) Start(callerDiscordID int64) error {
	if !l.IsOwner(callerDiscordID) {
		return ErrNotOwner
	}
	if l.State != LotteryStateCreated {
		return ErrAlreadyStartedOrEnded
	}

	l.State = LotteryStateStarted
	return nil
}

// BuyTicket appends the buyer to the round. The payment must equal the ticket price.
// When the purchase fills the lottery, the state moves to ended and the returned
// purchase carries the settlement of the whole pool to the buyer.
// On error the lottery is left untouched.
func (l *Lottery) BuyTicket(buyerDiscordID, payment int64) (*LotteryPurchase, error) {
	if l.State != LotteryStateStarted {
		return nil, ErrNotStartedOrEnded
	}
	if payment != l.TicketPrice {
		return nil, ErrInvalidPayment
	}

	l.Participants = append(l.Participants, buyerDiscordID)
	purchase := &LotteryPurchase{
		BuyerDiscordID: buyerDiscordID,
		Price:          payment,
		Position:       int64(len(l.Participants)),
	}

	if int64(len(l.Participants)) == l.MaxTicketCount {
		purchase.Settlement = &LotterySettlement{
			LotteryID:      l.ID,
			Round:          l.Round,
			PayeeDiscordID: buyerDiscordID,
			Amount:         l.TicketPrice * int64(len(l.Participants)),
			TicketCount:    int64(len(l.Participants)),
		}
		l.State = LotteryStateEnded
	}

	return purchase, nil
}

// Reset reinitializes an ended lottery for a new round with a new price and capacity
func (l *Lottery) Reset(callerDiscordID, newTicketPrice, newMaxTicketCount int64) error {
	if !l.IsOwner(callerDiscordID) {
		return ErrNotOwner
	}
	if l.State != LotteryStateEnded {
		return ErrNotEnded
	}
	if err := ValidateLotteryConfig(newTicketPrice, newMaxTicketCount); err != nil {
		return err
	}

	l.TicketPrice = newTicketPrice
	l.MaxTicketCount = newMaxTicketCount
	l.Participants = []int64{}
	l.Round++
	l.State = LotteryStateCreated
	return nil
}

// Stakes returns the pool currently held for the round. The pool is paid out
// as soon as the round ends, so only a started lottery holds stakes.
func (l *Lottery) Stakes() int64 {
	if l.State != LotteryStateStarted {
		return 0
	}
	return l.TicketPrice * int64(len(l.Participants))
}

// TicketCount returns the number of tickets sold in the current round
func (l *Lottery) TicketCount() int64 {
	return int64(len(l.Participants))
}

// TicketsRemaining returns how many tickets are left before settlement
func (l *Lottery) TicketsRemaining() int64 {
	if l.State == LotteryStateEnded {
		return 0
	}
	return l.MaxTicketCount - l.TicketCount()
}

// ParticipantsSnapshot returns a copy of the round's participants in purchase order
func (l *Lottery) ParticipantsSnapshot() []int64 {
	snapshot := make([]int64, len(l.Participants))
	copy(snapshot, l.Participants)
	return snapshot
}

// CanPurchaseTickets returns true if the lottery is accepting tickets
func (l *Lottery) CanPurchaseTickets() bool {
	return l.State == LotteryStateStarted
}

// SetMessage sets the Discord message tracking info
func (l *Lottery) SetMessage(channelID, messageID int64) {
	l.ChannelID = &channelID
	l.MessageID = &messageID
}

// HasMessage returns true if the lottery has a tracked Discord message
func (l *Lottery) HasMessage() bool {
	return l.MessageID != nil && l.ChannelID != nil
}
