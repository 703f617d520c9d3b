package entities

import (
	"time"
)

// LotteryTicket is one accepted purchase, occupying one slot of a round
type LotteryTicket struct {
	ID               int64     `db:"id"`
	LotteryID        int64     `db:"lottery_id"`
	GuildID          int64     `db:"guild_id"`
	Round            int64     `db:"round"`
	Position         int64     `db:"position"`
	DiscordID        int64     `db:"discord_id"`
	PurchasePrice    int64     `db:"purchase_price"`
	BalanceHistoryID int64     `db:"balance_history_id"`
	PurchasedAt      time.Time `db:"purchased_at"`
}

// LotteryParticipantInfo summarizes the tickets one member holds in a round
type LotteryParticipantInfo struct {
	DiscordID   int64 `db:"discord_id"`
	TicketCount int64 `db:"ticket_count"`
}

// SummarizeParticipants groups an ordered participant list by member,
// keeping the order of each member's first purchase
func SummarizeParticipants(participants []int64) []*LotteryParticipantInfo {
	index := make(map[int64]*LotteryParticipantInfo)
	summary := make([]*LotteryParticipantInfo, 0)
	for _, discordID := range participants {
		info, ok := index[discordID]
		if !ok {
			info = &LotteryParticipantInfo{DiscordID: discordID}
			index[discordID] = info
			summary = append(summary, info)
		}
		info.TicketCount++
	}
	return summary
}
