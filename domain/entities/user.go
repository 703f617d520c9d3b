package entities

import (
	"errors"
	"time"
)

// User represents a Discord member's account within a guild
type User struct {
	DiscordID        int64     `db:"discord_id"`
	GuildID          int64     `db:"guild_id"`
	Username         string    `db:"username"`
	Balance          int64     `db:"balance"`
	AvailableBalance int64     `db:"-"` // Balance minus amounts locked elsewhere
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// CanAfford checks if the user has sufficient available balance for an amount
func (u *User) CanAfford(amount int64) bool {
	return u.AvailableBalance >= amount
}

// ValidateAmount checks if an amount is valid (positive and affordable)
func (u *User) ValidateAmount(amount int64) error {
	if amount <= 0 {
		return errors.New("amount must be positive")
	}
	if !u.CanAfford(amount) {
		return ErrInsufficientBalance
	}
	return nil
}

// CalculateNewBalance calculates what the balance would be after a change
func (u *User) CalculateNewBalance(changeAmount int64) int64 {
	return u.Balance + changeAmount
}
