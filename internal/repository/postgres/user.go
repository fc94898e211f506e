package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"notable/internal/domain"
	"notable/internal/domain/models"
	"notable/internal/domain/repositories"
)

// PostgresUserRepository implements the UserRepository interface
type PostgresUserRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewUserRepository creates a new user repository
func NewUserRepository(config *RepositoryConfig) repositories.UserRepository {
	return &PostgresUserRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new user row
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, email, tokens, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, r.tables.Users)

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Tokens,
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, name, email, tokens, created_at FROM %s WHERE id = $1
	`, r.tables.Users)

	var user models.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Tokens,
		&user.CreatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("user %s not found", id)}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// UpdateName renames the user and returns the updated row
func (r *PostgresUserRepository) UpdateName(ctx context.Context, id, name string) (*models.User, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET name = $1 WHERE id = $2
		RETURNING id, name, email, tokens, created_at
	`, r.tables.Users)

	var user models.User
	err := r.pool.QueryRow(ctx, query, name, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Tokens,
		&user.CreatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("user %s not found", id)}
		}
		return nil, fmt.Errorf("update user name: %w", err)
	}

	return &user, nil
}

// Credit unconditionally increments the token balance
func (r *PostgresUserRepository) Credit(ctx context.Context, id string, amount int) error {
	query := fmt.Sprintf(`
		UPDATE %s SET tokens = tokens + $1 WHERE id = $2
	`, r.tables.Users)

	result, err := r.pool.Exec(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("credit tokens: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("user %s not found", id)}
	}

	return nil
}

// Debit decrements the balance in a single conditional UPDATE. The WHERE
// clause makes the check-and-decrement atomic, so two concurrent composers
// cannot drive the balance negative.
func (r *PostgresUserRepository) Debit(ctx context.Context, id string, amount int) error {
	query := fmt.Sprintf(`
		UPDATE %s SET tokens = tokens - $1
		WHERE id = $2 AND tokens >= $1
	`, r.tables.Users)

	result, err := r.pool.Exec(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("debit tokens: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either the user is missing or the balance is short; check which
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return &domain.InsufficientTokensError{
			Message: fmt.Sprintf("insufficient tokens: need %d", amount),
		}
	}

	return nil
}
