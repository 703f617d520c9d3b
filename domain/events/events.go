package events

import "lotteryledger/domain/entities"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange       EventType = "balance_change"
	EventTypeUserCreated         EventType = "user_created"
	EventTypeLotteryCreated      EventType = "lottery_created"
	EventTypeLotteryStarted      EventType = "lottery_started"
	EventTypeLotteryTicketBought EventType = "lottery_ticket_bought"
	EventTypeLotteryEnded        EventType = "lottery_ended"
	EventTypeLotteryReset        EventType = "lottery_reset"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID          int64
	GuildID         int64
	OldBalance      int64
	NewBalance      int64
	TransactionType entities.TransactionType
	ChangeAmount    int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// UserCreatedEvent represents a new user creation
type UserCreatedEvent struct {
	UserID         int64
	DiscordID      int64
	GuildID        int64
	Username       string
	InitialBalance int64
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// LotteryCreatedEvent is published when a guild's lottery is constructed
type LotteryCreatedEvent struct {
	LotteryID      int64
	GuildID        int64
	OwnerDiscordID int64
	TicketPrice    int64
	MaxTicketCount int64
}

func (e LotteryCreatedEvent) Type() EventType {
	return EventTypeLotteryCreated
}

// LotteryStartedEvent is published when the owner opens ticket sales
type LotteryStartedEvent struct {
	LotteryID      int64
	GuildID        int64
	Round          int64
	TicketPrice    int64
	MaxTicketCount int64
}

func (e LotteryStartedEvent) Type() EventType {
	return EventTypeLotteryStarted
}

// LotteryTicketBoughtEvent is published for every purchase that does not end the round
type LotteryTicketBoughtEvent struct {
	LotteryID      int64
	GuildID        int64
	Round          int64
	BuyerDiscordID int64
	Price          int64
	TicketCount    int64
	MaxTicketCount int64
}

func (e LotteryTicketBoughtEvent) Type() EventType {
	return EventTypeLotteryTicketBought
}

// LotteryEndedEvent is published when the final ticket settles the pool to its buyer
type LotteryEndedEvent struct {
	LotteryID      int64
	GuildID        int64
	Round          int64
	PayeeDiscordID int64
	Amount         int64
	TicketCount    int64
}

func (e LotteryEndedEvent) Type() EventType {
	return EventTypeLotteryEnded
}

// LotteryResetEvent is published when the owner reinitializes an ended lottery
type LotteryResetEvent struct {
	LotteryID      int64
	GuildID        int64
	Round          int64
	TicketPrice    int64
	MaxTicketCount int64
}

func (e LotteryResetEvent) Type() EventType {
	return EventTypeLotteryReset
}
