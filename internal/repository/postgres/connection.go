package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryConfig holds shared configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Users    string
	Folders  string
	Notes    string
	Media    string
	Chats    string
	Messages string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Users:    fmt.Sprintf("%susers", prefix),
		Folders:  fmt.Sprintf("%sfolders", prefix),
		Notes:    fmt.Sprintf("%snotes", prefix),
		Media:    fmt.Sprintf("%smedia", prefix),
		Chats:    fmt.Sprintf("%schats", prefix),
		Messages: fmt.Sprintf("%smessages", prefix),
	}
}

// CreateConnectionPool creates a new pgx connection pool.
//
// Dynamic table names via fmt.Sprintf are safe with prepared statements
// because the SQL string is interpolated before being sent to the database;
// each environment prefix gets its own statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
