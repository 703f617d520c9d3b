package repository

import (
	"context"
	"errors"
	"fmt"

	"lotteryledger/database"
	"lotteryledger/domain/entities"

	"github.com/jackc/pgx/v5"
)

const lotteryColumns = `id, guild_id, owner_discord_id, state, ticket_price, max_ticket_count,
		       round, message_id, channel_id, created_at, updated_at`

// LotteryRepository implements data access for the guild's lottery row
type LotteryRepository struct {
	q       Queryable
	guildID int64
}

// NewLotteryRepository creates a lottery repository on the pool.
// A zero guildID is only valid for ListAll.
func NewLotteryRepository(db *database.DB, guildID int64) *LotteryRepository {
	return &LotteryRepository{q: db.Pool, guildID: guildID}
}

// NewLotteryRepositoryScoped creates a new lottery repository with guild scope
func NewLotteryRepositoryScoped(tx Queryable, guildID int64) *LotteryRepository {
	return &LotteryRepository{
		q:       tx,
		guildID: guildID,
	}
}

// Create inserts the guild's lottery. A guild holds at most one lottery.
func (r *LotteryRepository) Create(ctx context.Context, lottery *entities.Lottery) error {
	query := `
		INSERT INTO lotteries (guild_id, owner_discord_id, state, ticket_price, max_ticket_count, round)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		r.guildID,
		lottery.OwnerDiscordID,
		lottery.State,
		lottery.TicketPrice,
		lottery.MaxTicketCount,
		lottery.Round,
	).Scan(&lottery.ID, &lottery.CreatedAt, &lottery.UpdatedAt)
	if isUniqueViolation(err) {
		return entities.ErrLotteryExists
	}
	if err != nil {
		return fmt.Errorf("failed to create lottery in guild %d: %w", r.guildID, err)
	}

	lottery.GuildID = r.guildID
	return nil
}

// GetCurrent returns the guild's lottery or nil if none exists
func (r *LotteryRepository) GetCurrent(ctx context.Context) (*entities.Lottery, error) {
	query := `SELECT ` + lotteryColumns + `
		FROM lotteries
		WHERE guild_id = $1
	`

	lottery, err := scanLottery(r.q.QueryRow(ctx, query, r.guildID))
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery for guild %d: %w", r.guildID, err)
	}
	return lottery, nil
}

// GetCurrentForUpdate returns the guild's lottery with a row lock held until the transaction ends
func (r *LotteryRepository) GetCurrentForUpdate(ctx context.Context) (*entities.Lottery, error) {
	query := `SELECT ` + lotteryColumns + `
		FROM lotteries
		WHERE guild_id = $1
		FOR UPDATE
	`

	lottery, err := scanLottery(r.q.QueryRow(ctx, query, r.guildID))
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery for update in guild %d: %w", r.guildID, err)
	}
	return lottery, nil
}

// Update persists state, price, capacity, round and message tracking
func (r *LotteryRepository) Update(ctx context.Context, lottery *entities.Lottery) error {
	query := `
		UPDATE lotteries
		SET state = $2,
		    ticket_price = $3,
		    max_ticket_count = $4,
		    round = $5,
		    message_id = $6,
		    channel_id = $7,
		    updated_at = NOW()
		WHERE id = $1 AND guild_id = $8
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query,
		lottery.ID,
		lottery.State,
		lottery.TicketPrice,
		lottery.MaxTicketCount,
		lottery.Round,
		lottery.MessageID,
		lottery.ChannelID,
		r.guildID,
	).Scan(&lottery.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("lottery %d not found in guild %d: %w", lottery.ID, r.guildID, entities.ErrLotteryNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update lottery %d: %w", lottery.ID, err)
	}

	return nil
}

// ListAll returns every lottery across guilds, ordered by guild
func (r *LotteryRepository) ListAll(ctx context.Context) ([]*entities.Lottery, error) {
	query := `SELECT ` + lotteryColumns + `
		FROM lotteries
		ORDER BY guild_id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list lotteries: %w", err)
	}
	defer rows.Close()

	var lotteries []*entities.Lottery
	for rows.Next() {
		lottery, err := scanLottery(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lottery: %w", err)
		}
		lotteries = append(lotteries, lottery)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lotteries: %w", err)
	}

	return lotteries, nil
}

// scanLottery scans one lottery row; a missing row yields nil, nil
func scanLottery(row pgx.Row) (*entities.Lottery, error) {
	var lottery entities.Lottery
	err := row.Scan(
		&lottery.ID,
		&lottery.GuildID,
		&lottery.OwnerDiscordID,
		&lottery.State,
		&lottery.TicketPrice,
		&lottery.MaxTicketCount,
		&lottery.Round,
		&lottery.MessageID,
		&lottery.ChannelID,
		&lottery.CreatedAt,
		&lottery.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !lottery.State.IsValid() {
		return nil, fmt.Errorf("lottery %d has unknown state %q", lottery.ID, lottery.State)
	}

	lottery.Participants = []int64{}
	return &lottery, nil
}
