package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"notable/internal/domain"
	"notable/internal/domain/models"
	"notable/internal/domain/repositories"
)

// PostgresNoteRepository implements the NoteRepository interface
type PostgresNoteRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(config *RepositoryConfig) repositories.NoteRepository {
	return &PostgresNoteRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const noteColumns = "id, user_id, folder_id, title, content, flashcard_set_id, created_at, updated_at"

// Create creates a new note. A caller-provided id is honored so that
// PATCH-upsert can create a note under the client's id.
func (r *PostgresNoteRepository) Create(ctx context.Context, note *models.Note) error {
	var query string
	if note.ID != "" {
		query = fmt.Sprintf(`
			INSERT INTO %s (id, user_id, folder_id, title, content, flashcard_set_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at, updated_at
		`, r.tables.Notes)

		return r.scanInsert(r.pool.QueryRow(ctx, query,
			note.ID, note.UserID, note.FolderID, note.Title, note.Content,
			note.FlashcardSetID, note.CreatedAt, note.UpdatedAt), note)
	}

	query = fmt.Sprintf(`
		INSERT INTO %s (user_id, folder_id, title, content, flashcard_set_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, r.tables.Notes)

	return r.scanInsert(r.pool.QueryRow(ctx, query,
		note.UserID, note.FolderID, note.Title, note.Content,
		note.FlashcardSetID, note.CreatedAt, note.UpdatedAt), note)
}

func (r *PostgresNoteRepository) scanInsert(row interface {
	Scan(dest ...any) error
}, note *models.Note) error {
	if err := row.Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt); err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

// GetByID retrieves a note by ID
func (r *PostgresNoteRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, noteColumns, r.tables.Notes)

	var note models.Note
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&note.ID,
		&note.UserID,
		&note.FolderID,
		&note.Title,
		&note.Content,
		&note.FlashcardSetID,
		&note.CreatedAt,
		&note.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("note %s not found", id)}
		}
		return nil, fmt.Errorf("get note: %w", err)
	}

	return &note, nil
}

// ListByUser lists the user's notes, most recently updated first
func (r *PostgresNoteRepository) ListByUser(ctx context.Context, userID string) ([]models.Note, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, noteColumns, r.tables.Notes)

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var note models.Note
		err := rows.Scan(
			&note.ID,
			&note.UserID,
			&note.FolderID,
			&note.Title,
			&note.Content,
			&note.FlashcardSetID,
			&note.CreatedAt,
			&note.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, note)
	}

	return notes, rows.Err()
}

// Update updates a note
func (r *PostgresNoteRepository) Update(ctx context.Context, note *models.Note) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, title = $2, content = $3, flashcard_set_id = $4, updated_at = $5
		WHERE id = $6
	`, r.tables.Notes)

	result, err := r.pool.Exec(ctx, query,
		note.FolderID,
		note.Title,
		note.Content,
		note.FlashcardSetID,
		note.UpdatedAt,
		note.ID,
	)

	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("note %s not found", note.ID)}
	}

	return nil
}

// Delete deletes a note; media rows cascade
func (r *PostgresNoteRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Notes)

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("note %s not found", id)}
	}

	return nil
}
