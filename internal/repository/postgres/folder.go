package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"notable/internal/domain"
	"notable/internal/domain/models"
	"notable/internal/domain/repositories"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const folderColumns = "id, user_id, parent_id, name, is_default, opened, created_at, updated_at"

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, parent_id, name, is_default, opened, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, r.tables.Folders)

	err := r.pool.QueryRow(ctx, query,
		folder.UserID,
		folder.ParentID,
		folder.Name,
		folder.IsDefault,
		folder.Opened,
		folder.CreatedAt,
		folder.UpdatedAt,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			// the partial unique index on is_default: another request won
			// the lazy-create race
			return fmt.Errorf("default folder for user %s already exists: %w", folder.UserID, err)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, folderColumns, r.tables.Folders)

	var folder models.Folder
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&folder.ID,
		&folder.UserID,
		&folder.ParentID,
		&folder.Name,
		&folder.IsDefault,
		&folder.Opened,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", id)}
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return &folder, nil
}

// FindDefault retrieves the user's default folder
func (r *PostgresFolderRepository) FindDefault(ctx context.Context, userID string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE user_id = $1 AND is_default
	`, folderColumns, r.tables.Folders)

	var folder models.Folder
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&folder.ID,
		&folder.UserID,
		&folder.ParentID,
		&folder.Name,
		&folder.IsDefault,
		&folder.Opened,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: "default folder not found"}
		}
		return nil, fmt.Errorf("find default folder: %w", err)
	}

	return &folder, nil
}

// ListByUser lists all folders for a user, default first, then by name
func (r *PostgresFolderRepository) ListByUser(ctx context.Context, userID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_id = $1
		ORDER BY is_default DESC, name ASC
	`, folderColumns, r.tables.Folders)

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.UserID,
			&folder.ParentID,
			&folder.Name,
			&folder.IsDefault,
			&folder.Opened,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	return folders, rows.Err()
}

// Update updates a folder
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, opened = $2, updated_at = $3
		WHERE id = $4
	`, r.tables.Folders)

	result, err := r.pool.Exec(ctx, query,
		folder.Name,
		folder.Opened,
		folder.UpdatedAt,
		folder.ID,
	)

	if err != nil {
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", folder.ID)}
	}

	return nil
}

// Delete deletes a folder. Child folders, their notes, and media go with it
// via ON DELETE CASCADE.
func (r *PostgresFolderRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Folders)

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", id)}
	}

	return nil
}
