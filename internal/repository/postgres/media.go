package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"notable/internal/domain"
	"notable/internal/domain/models"
	"notable/internal/domain/repositories"
)

// PostgresMediaRepository implements the MediaRepository interface
type PostgresMediaRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewMediaRepository creates a new media repository
func NewMediaRepository(config *RepositoryConfig) repositories.MediaRepository {
	return &PostgresMediaRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const mediaColumns = "id, note_id, name, type, url, transcript, summary, processing, failed_at, error, created_at"

// transcriptParam marshals the transcript for the JSONB column, keeping
// NULL for media that has not finished extraction.
func transcriptParam(t *models.Transcript) (any, error) {
	if t == nil {
		return nil, nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal transcript: %w", err)
	}
	return b, nil
}

func scanTranscript(raw []byte, dest **models.Transcript) error {
	if len(raw) == 0 {
		*dest = nil
		return nil
	}
	var t models.Transcript
	if err := json.Unmarshal(raw, &t); err != nil {
		return fmt.Errorf("unmarshal transcript: %w", err)
	}
	*dest = &t
	return nil
}

// Create creates a new media record
func (r *PostgresMediaRepository) Create(ctx context.Context, media *models.Media) error {
	transcript, err := transcriptParam(media.Transcript)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (note_id, name, type, url, transcript, summary, processing, failed_at, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`, r.tables.Media)

	err = r.pool.QueryRow(ctx, query,
		media.NoteID,
		media.Name,
		media.Type,
		media.URL,
		transcript,
		media.Summary,
		media.Processing,
		media.FailedAt,
		media.Error,
		media.CreatedAt,
	).Scan(&media.ID, &media.CreatedAt)

	if err != nil {
		return fmt.Errorf("create media: %w", err)
	}

	return nil
}

// GetByID retrieves a media record by ID
func (r *PostgresMediaRepository) GetByID(ctx context.Context, id string) (*models.Media, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, mediaColumns, r.tables.Media)

	media, err := r.scanOne(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("media %s not found", id)}
		}
		return nil, fmt.Errorf("get media: %w", err)
	}

	return media, nil
}

// ListByNote lists a note's media in creation order
func (r *PostgresMediaRepository) ListByNote(ctx context.Context, noteID string) ([]models.Media, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE note_id = $1
		ORDER BY created_at ASC
	`, mediaColumns, r.tables.Media)

	rows, err := r.pool.Query(ctx, query, noteID)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	var items []models.Media
	for rows.Next() {
		media, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		items = append(items, *media)
	}

	return items, rows.Err()
}

// Update persists transcript, summary, and processing state
func (r *PostgresMediaRepository) Update(ctx context.Context, media *models.Media) error {
	transcript, err := transcriptParam(media.Transcript)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET transcript = $1, summary = $2, processing = $3, failed_at = $4, error = $5
		WHERE id = $6
	`, r.tables.Media)

	result, err := r.pool.Exec(ctx, query,
		transcript,
		media.Summary,
		media.Processing,
		media.FailedAt,
		media.Error,
		media.ID,
	)

	if err != nil {
		return fmt.Errorf("update media: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("media %s not found", media.ID)}
	}

	return nil
}

// Delete deletes a media record
func (r *PostgresMediaRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Media)

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("media %s not found", id)}
	}

	return nil
}

func (r *PostgresMediaRepository) scanOne(row interface {
	Scan(dest ...any) error
}) (*models.Media, error) {
	var media models.Media
	var raw []byte
	err := row.Scan(
		&media.ID,
		&media.NoteID,
		&media.Name,
		&media.Type,
		&media.URL,
		&raw,
		&media.Summary,
		&media.Processing,
		&media.FailedAt,
		&media.Error,
		&media.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := scanTranscript(raw, &media.Transcript); err != nil {
		return nil, err
	}
	return &media, nil
}
