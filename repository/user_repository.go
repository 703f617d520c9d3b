package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lotteryledger/database"
	"lotteryledger/domain/entities"

	"github.com/jackc/pgx/v5"
)

// UserRepository implements the UserRepository interface
type UserRepository struct {
	q       Queryable
	guildID int64
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB, guildID int64) *UserRepository {
	return &UserRepository{q: db.Pool, guildID: guildID}
}

// NewUserRepositoryScoped creates a new user repository with a transaction and guild scope
func NewUserRepositoryScoped(tx Queryable, guildID int64) *UserRepository {
	return &UserRepository{
		q:       tx,
		guildID: guildID,
	}
}

// GetByDiscordID retrieves a user by their Discord ID in the current guild
func (r *UserRepository) GetByDiscordID(ctx context.Context, discordID int64) (*entities.User, error) {
	query := `
		SELECT
			uga.discord_id,
			uga.guild_id,
			u.username,
			uga.balance,
			uga.created_at,
			uga.updated_at
		FROM user_guild_accounts uga
		JOIN users u ON uga.discord_id = u.discord_id
		WHERE uga.discord_id = $1 AND uga.guild_id = $2
	`

	var user entities.User
	err := r.q.QueryRow(ctx, query, discordID, r.guildID).Scan(
		&user.DiscordID,
		&user.GuildID,
		&user.Username,
		&user.Balance,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by discord ID %d in guild %d: %w", discordID, r.guildID, err)
	}

	// Nothing else locks funds, so the whole balance is spendable
	user.AvailableBalance = user.Balance

	return &user, nil
}

// Create creates a new user with the initial balance in the current guild
func (r *UserRepository) Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*entities.User, error) {
	userQuery := `
		INSERT INTO users (discord_id, username)
		VALUES ($1, $2)
		ON CONFLICT (discord_id) DO UPDATE SET username = EXCLUDED.username, updated_at = NOW()
	`
	if _, err := r.q.Exec(ctx, userQuery, discordID, username); err != nil {
		return nil, fmt.Errorf("failed to create/update user %d: %w", discordID, err)
	}

	accountQuery := `
		INSERT INTO user_guild_accounts (discord_id, guild_id, balance)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`

	var createdAt, updatedAt time.Time
	err := r.q.QueryRow(ctx, accountQuery, discordID, r.guildID, initialBalance).Scan(&createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user guild account for discord ID %d in guild %d: %w", discordID, r.guildID, err)
	}

	return &entities.User{
		DiscordID:        discordID,
		GuildID:          r.guildID,
		Username:         username,
		Balance:          initialBalance,
		AvailableBalance: initialBalance,
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
	}, nil
}

// UpdateBalance updates a user's balance atomically
func (r *UserRepository) UpdateBalance(ctx context.Context, discordID int64, newBalance int64) error {
	query := `
		UPDATE user_guild_accounts
		SET balance = $1, updated_at = NOW()
		WHERE discord_id = $2 AND guild_id = $3
	`
	result, err := r.q.Exec(ctx, query, newBalance, discordID, r.guildID)
	if err != nil {
		return fmt.Errorf("failed to update balance for user %d in guild %d: %w", discordID, r.guildID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user with discord ID %d not found in guild %d: %w", discordID, r.guildID, entities.ErrUserNotFound)
	}

	return nil
}
