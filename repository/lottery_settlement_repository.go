package repository

import (
	"context"
	"fmt"

	"lotteryledger/domain/entities"
)

// LotterySettlementRepository implements settlement data access
type LotterySettlementRepository struct {
	q       Queryable
	guildID int64
}

// NewLotterySettlementRepositoryScoped creates a new settlement repository with guild scope
func NewLotterySettlementRepositoryScoped(tx Queryable, guildID int64) *LotterySettlementRepository {
	return &LotterySettlementRepository{
		q:       tx,
		guildID: guildID,
	}
}

// Create inserts a settlement. Each round settles once.
func (r *LotterySettlementRepository) Create(ctx context.Context, settlement *entities.LotterySettlement) error {
	query := `
		INSERT INTO lottery_settlements (lottery_id, round, payee_discord_id, amount, ticket_count)
		SELECT $1, $2, $3, $4, $5
		FROM lotteries
		WHERE id = $1 AND guild_id = $6
		RETURNING id, settled_at
	`

	err := r.q.QueryRow(ctx, query,
		settlement.LotteryID,
		settlement.Round,
		settlement.PayeeDiscordID,
		settlement.Amount,
		settlement.TicketCount,
		r.guildID,
	).Scan(&settlement.ID, &settlement.SettledAt)
	if err != nil {
		return fmt.Errorf("failed to create settlement for lottery %d round %d: %w", settlement.LotteryID, settlement.Round, err)
	}

	return nil
}

// GetByLottery returns the most recent settlements of a lottery, newest first
func (r *LotterySettlementRepository) GetByLottery(ctx context.Context, lotteryID int64, limit int) ([]*entities.LotterySettlement, error) {
	query := `
		SELECT s.id, s.lottery_id, s.round, s.payee_discord_id, s.amount, s.ticket_count, s.settled_at
		FROM lottery_settlements s
		JOIN lotteries l ON l.id = s.lottery_id
		WHERE s.lottery_id = $1 AND l.guild_id = $2
		ORDER BY s.round DESC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, lotteryID, r.guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get settlements for lottery %d: %w", lotteryID, err)
	}
	defer rows.Close()

	var settlements []*entities.LotterySettlement
	for rows.Next() {
		var s entities.LotterySettlement
		err := rows.Scan(
			&s.ID,
			&s.LotteryID,
			&s.Round,
			&s.PayeeDiscordID,
			&s.Amount,
			&s.TicketCount,
			&s.SettledAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}
