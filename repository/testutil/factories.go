package testutil

import (
	"context"
	"testing"

	"lotteryledger/database"
	"lotteryledger/domain/entities"

	"github.com/stretchr/testify/require"
)

// CreateTestLottery returns an unsaved lottery in the created state
func CreateTestLottery(guildID, ownerID, ticketPrice, maxTicketCount int64) *entities.Lottery {
	return &entities.Lottery{
		GuildID:        guildID,
		OwnerDiscordID: ownerID,
		State:          entities.LotteryStateCreated,
		TicketPrice:    ticketPrice,
		MaxTicketCount: maxTicketCount,
		Round:          1,
		Participants:   []int64{},
	}
}

// CreateTestBalanceHistory creates a test balance history entry
func CreateTestBalanceHistory(discordID int64, transactionType entities.TransactionType) *entities.BalanceHistory {
	return &entities.BalanceHistory{
		DiscordID:       discordID,
		BalanceBefore:   100000,
		BalanceAfter:    90000,
		ChangeAmount:    -10000,
		TransactionType: transactionType,
		TransactionMetadata: map[string]interface{}{
			"test": true,
		},
	}
}

// SeedUser inserts a user account with the given balance directly
func SeedUser(t *testing.T, db *database.DB, guildID, discordID int64, username string, balance int64) {
	t.Helper()
	ctx := context.Background()

	_, err := db.Exec(ctx, `INSERT INTO users (discord_id, username) VALUES ($1, $2) ON CONFLICT (discord_id) DO NOTHING`, discordID, username)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `INSERT INTO user_guild_accounts (discord_id, guild_id, balance) VALUES ($1, $2, $3)`, discordID, guildID, balance)
	require.NoError(t, err)
}

// GetBalance reads a user's balance directly
func GetBalance(t *testing.T, db *database.DB, guildID, discordID int64) int64 {
	t.Helper()

	var balance int64
	err := db.QueryRow(context.Background(),
		`SELECT balance FROM user_guild_accounts WHERE discord_id = $1 AND guild_id = $2`,
		discordID, guildID,
	).Scan(&balance)
	require.NoError(t, err)
	return balance
}
