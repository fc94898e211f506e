package repositories

import (
	"context"
	"io"

	"notable/internal/domain/models"
)

// FolderRepository persists folders. Implementations must scope every
// operation that takes a userID to rows owned by that user.
type FolderRepository interface {
	Create(ctx context.Context, folder *models.Folder) error
	// GetByID returns domain.ErrNotFound-wrapped errors for missing rows.
	GetByID(ctx context.Context, id string) (*models.Folder, error)
	// FindDefault returns the user's default folder, or a not-found error.
	FindDefault(ctx context.Context, userID string) (*models.Folder, error)
	// ListByUser returns all folders ordered default-first, then by name.
	ListByUser(ctx context.Context, userID string) ([]models.Folder, error)
	Update(ctx context.Context, folder *models.Folder) error
	// Delete removes the folder, its child folders, and their notes.
	Delete(ctx context.Context, id string) error
}

type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) error
	GetByID(ctx context.Context, id string) (*models.Note, error)
	// ListByUser returns the user's notes ordered by most recent update.
	ListByUser(ctx context.Context, userID string) ([]models.Note, error)
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id string) error
}

type MediaRepository interface {
	Create(ctx context.Context, media *models.Media) error
	GetByID(ctx context.Context, id string) (*models.Media, error)
	// ListByNote returns media in creation order.
	ListByNote(ctx context.Context, noteID string) ([]models.Media, error)
	Update(ctx context.Context, media *models.Media) error
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateName(ctx context.Context, id, name string) (*models.User, error)
	// Credit unconditionally increments the token balance.
	Credit(ctx context.Context, id string, amount int) error
	// Debit atomically decrements the balance, failing with
	// domain.ErrInsufficientTokens (balance untouched) if it would go
	// negative. Single read-modify-write; no lost updates under
	// concurrent callers.
	Debit(ctx context.Context, id string, amount int) error
}

type ChatRepository interface {
	// FindByNote returns the note's chat, or a not-found error.
	FindByNote(ctx context.Context, noteID string) (*models.Chat, error)
	Create(ctx context.Context, chat *models.Chat) error
	AddMessage(ctx context.Context, msg *models.Message) error
	// ListMessages returns messages ordered by creation time.
	ListMessages(ctx context.Context, noteID string) ([]models.Message, error)
}

// ObjectStore is durable binary storage for media blobs.
type ObjectStore interface {
	// Save stores the blob under key and returns a retrievable URL.
	Save(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}
