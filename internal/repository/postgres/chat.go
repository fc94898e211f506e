package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"notable/internal/domain"
	"notable/internal/domain/models"
	"notable/internal/domain/repositories"
)

// PostgresChatRepository implements the ChatRepository interface
type PostgresChatRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewChatRepository creates a new chat repository
func NewChatRepository(config *RepositoryConfig) repositories.ChatRepository {
	return &PostgresChatRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// FindByNote retrieves the note's chat
func (r *PostgresChatRepository) FindByNote(ctx context.Context, noteID string) (*models.Chat, error) {
	query := fmt.Sprintf(`
		SELECT id, note_id, created_at FROM %s WHERE note_id = $1
	`, r.tables.Chats)

	var chat models.Chat
	err := r.pool.QueryRow(ctx, query, noteID).Scan(&chat.ID, &chat.NoteID, &chat.CreatedAt)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("chat for note %s not found", noteID)}
		}
		return nil, fmt.Errorf("find chat: %w", err)
	}

	return &chat, nil
}

// Create creates a chat for a note
func (r *PostgresChatRepository) Create(ctx context.Context, chat *models.Chat) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (note_id, created_at)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, r.tables.Chats)

	err := r.pool.QueryRow(ctx, query, chat.NoteID, chat.CreatedAt).
		Scan(&chat.ID, &chat.CreatedAt)
	if err != nil {
		if isPgDuplicateError(err) {
			// lost the lazy-create race; return the existing chat
			existing, findErr := r.FindByNote(ctx, chat.NoteID)
			if findErr != nil {
				return findErr
			}
			*chat = *existing
			return nil
		}
		return fmt.Errorf("create chat: %w", err)
	}

	return nil
}

// AddMessage appends a message to a chat
func (r *PostgresChatRepository) AddMessage(ctx context.Context, msg *models.Message) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (chat_id, note_id, user_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, r.tables.Messages)

	err := r.pool.QueryRow(ctx, query,
		msg.ChatID,
		msg.NoteID,
		msg.UserID,
		msg.Role,
		msg.Content,
		msg.CreatedAt,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("add message: %w", err)
	}

	return nil
}

// ListMessages lists a note's messages ordered by creation time
func (r *PostgresChatRepository) ListMessages(ctx context.Context, noteID string) ([]models.Message, error) {
	query := fmt.Sprintf(`
		SELECT id, chat_id, note_id, user_id, role, content, created_at
		FROM %s
		WHERE note_id = $1
		ORDER BY created_at ASC
	`, r.tables.Messages)

	rows, err := r.pool.Query(ctx, query, noteID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		err := rows.Scan(
			&msg.ID,
			&msg.ChatID,
			&msg.NoteID,
			&msg.UserID,
			&msg.Role,
			&msg.Content,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}
