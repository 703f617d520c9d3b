package repository

import (
	"context"
	"fmt"

	"lotteryledger/domain/entities"
)

// LotteryTicketRepository implements lottery ticket data access
type LotteryTicketRepository struct {
	q       Queryable
	guildID int64
}

// NewLotteryTicketRepositoryScoped creates a new lottery ticket repository with guild scope
func NewLotteryTicketRepositoryScoped(tx Queryable, guildID int64) *LotteryTicketRepository {
	return &LotteryTicketRepository{
		q:       tx,
		guildID: guildID,
	}
}

// Create inserts a ticket. The (lottery, round, position) slot is unique.
func (r *LotteryTicketRepository) Create(ctx context.Context, ticket *entities.LotteryTicket) error {
	query := `
		INSERT INTO lottery_tickets (lottery_id, guild_id, round, position, discord_id, purchase_price, balance_history_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, purchased_at
	`

	err := r.q.QueryRow(ctx, query,
		ticket.LotteryID,
		r.guildID,
		ticket.Round,
		ticket.Position,
		ticket.DiscordID,
		ticket.PurchasePrice,
		ticket.BalanceHistoryID,
	).Scan(&ticket.ID, &ticket.PurchasedAt)
	if err != nil {
		return fmt.Errorf("failed to create ticket %d for lottery %d round %d: %w", ticket.Position, ticket.LotteryID, ticket.Round, err)
	}

	ticket.GuildID = r.guildID
	return nil
}

// GetParticipants returns the buyers of a round in purchase order
func (r *LotteryTicketRepository) GetParticipants(ctx context.Context, lotteryID, round int64) ([]int64, error) {
	query := `
		SELECT discord_id
		FROM lottery_tickets
		WHERE lottery_id = $1 AND round = $2 AND guild_id = $3
		ORDER BY position ASC
	`

	rows, err := r.q.Query(ctx, query, lotteryID, round, r.guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants for lottery %d round %d: %w", lotteryID, round, err)
	}
	defer rows.Close()

	participants := make([]int64, 0)
	for rows.Next() {
		var discordID int64
		if err := rows.Scan(&discordID); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, discordID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return participants, nil
}

// GetParticipantSummary returns ticket counts per participant, in order of first purchase
func (r *LotteryTicketRepository) GetParticipantSummary(ctx context.Context, lotteryID, round int64) ([]*entities.LotteryParticipantInfo, error) {
	query := `
		SELECT discord_id, COUNT(*) AS ticket_count
		FROM lottery_tickets
		WHERE lottery_id = $1 AND round = $2 AND guild_id = $3
		GROUP BY discord_id
		ORDER BY MIN(position) ASC
	`

	rows, err := r.q.Query(ctx, query, lotteryID, round, r.guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant summary for lottery %d round %d: %w", lotteryID, round, err)
	}
	defer rows.Close()

	var summary []*entities.LotteryParticipantInfo
	for rows.Next() {
		var info entities.LotteryParticipantInfo
		if err := rows.Scan(&info.DiscordID, &info.TicketCount); err != nil {
			return nil, fmt.Errorf("failed to scan participant summary: %w", err)
		}
		summary = append(summary, &info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participant summary: %w", err)
	}

	return summary, nil
}
