package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teto/database"
	"teto/domain/entities"

	"github.com/jackc/pgx/v5"
)

const userColumns = `user_id, role, message_credits, last_voted_at, inserted_at, updated_at`

// UserRepository implements the UserRepository interface
type UserRepository struct {
	q Queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// NewUserRepositoryWithTx creates a user repository bound to a transaction
func NewUserRepositoryWithTx(tx Queryable) *UserRepository {
	return &UserRepository{q: tx}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var user entities.User
	var role string
	err := row.Scan(
		&user.UserID,
		&role,
		&user.MessageCredits,
		&user.LastVotedAt,
		&user.InsertedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = entities.Role(role)
	return &user, nil
}

func collectUsers(rows pgx.Rows) ([]*entities.User, error) {
	defer rows.Close()

	var users []*entities.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// GetByID retrieves a user by their Discord user ID
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	return user, nil
}

// Create creates a new user with the given role and balance
func (r *UserRepository) Create(ctx context.Context, userID int64, role entities.Role, initialCredits int64) (*entities.User, error) {
	query := `
		INSERT INTO users (user_id, role, message_credits)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, userID, string(role), initialCredits))
	if err != nil {
		return nil, mapPgError(err, "failed to create user %d", userID)
	}

	return user, nil
}

// GetAll returns all users
func (r *UserRepository) GetAll(ctx context.Context) ([]*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY inserted_at DESC`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}

	return collectUsers(rows)
}

// Delete removes a user; user_guilds rows cascade
func (r *UserRepository) Delete(ctx context.Context, userID int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", userID, entities.ErrUserNotFound)
	}

	return nil
}

// UpdateRole changes a user's role
func (r *UserRepository) UpdateRole(ctx context.Context, userID int64, role entities.Role) (*entities.User, error) {
	query := `
		UPDATE users
		SET role = $1, updated_at = NOW()
		WHERE user_id = $2
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, string(role), userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", userID, entities.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update role for user %d: %w", userID, err)
	}

	return user, nil
}

// DeductCredits deducts from a user's balance atomically, failing if the balance is insufficient
func (r *UserRepository) DeductCredits(ctx context.Context, userID int64, cost int64) (*entities.User, error) {
	if cost <= 0 {
		return nil, entities.ErrInvalidAmount
	}

	// The balance check and the write happen in one statement so concurrent
	// deductions on the same row cannot both pass the check
	query := `
		UPDATE users
		SET message_credits = message_credits - $1, updated_at = NOW()
		WHERE user_id = $2 AND message_credits >= $1
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, cost, userID))
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to deduct credits for user %d: %w", userID, err)
	}

	// Nothing updated: either the user is missing or the balance is too low
	current, err := r.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if current == nil {
		return nil, fmt.Errorf("user %d: %w", userID, entities.ErrUserNotFound)
	}

	return nil, &entities.InsufficientCreditsError{
		UserID:   userID,
		Balance:  current.MessageCredits,
		Required: cost,
	}
}

// AddCredits adds to a user's balance atomically, stamping last_voted_at when votedAt is set
func (r *UserRepository) AddCredits(ctx context.Context, userID int64, amount int64, votedAt *time.Time) (*entities.User, error) {
	if amount <= 0 {
		return nil, entities.ErrInvalidAmount
	}

	query := `
		UPDATE users
		SET message_credits = message_credits + $1,
		    last_voted_at = COALESCE($2::timestamptz, last_voted_at),
		    updated_at = NOW()
		WHERE user_id = $3
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, amount, votedAt, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", userID, entities.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add credits for user %d: %w", userID, err)
	}

	return user, nil
}

// RefillCredits raises the balance to refillCap only when it is currently below it
func (r *UserRepository) RefillCredits(ctx context.Context, userID int64, refillCap int64) (bool, error) {
	query := `
		UPDATE users
		SET message_credits = $1, updated_at = NOW()
		WHERE user_id = $2 AND message_credits < $1
	`

	result, err := r.q.Exec(ctx, query, refillCap, userID)
	if err != nil {
		return false, fmt.Errorf("failed to refill credits for user %d: %w", userID, err)
	}

	return result.RowsAffected() > 0, nil
}

// FindBelowCredits returns users whose balance is below the threshold
func (r *UserRepository) FindBelowCredits(ctx context.Context, threshold int64) ([]*entities.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE message_credits < $1
		ORDER BY user_id
	`

	rows, err := r.q.Query(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to find users below %d credits: %w", threshold, err)
	}

	return collectUsers(rows)
}
