package services

import (
	"context"

	"notable/internal/domain/models"
)

// Identity is the authenticated caller, as extracted from the verified JWT.
type Identity struct {
	UserID string
	Name   string
	Email  string
}

// FolderService manages the two-level folder hierarchy.
type FolderService interface {
	// EnsureDefaultFolder returns the user's default folder, creating it
	// if absent. Idempotent.
	EnsureDefaultFolder(ctx context.Context, id Identity) (*models.Folder, error)
	// ListFolders returns the user's full forest, lazily creating the
	// default folder first.
	ListFolders(ctx context.Context, id Identity) ([]*models.FolderNode, error)
	CreateFolder(ctx context.Context, userID string, req *models.CreateFolderRequest) (*models.Folder, error)
	RenameFolder(ctx context.Context, userID, folderID, name string) (*models.Folder, error)
	SetOpened(ctx context.Context, userID, folderID string, opened bool) (*models.Folder, error)
	DeleteFolder(ctx context.Context, userID, folderID string) error
}

type NoteService interface {
	ListNotes(ctx context.Context, userID string) ([]models.Note, error)
	GetNote(ctx context.Context, userID, noteID string) (*models.Note, error)
	CreateNote(ctx context.Context, userID string, req *models.CreateNoteRequest) (*models.Note, error)
	// UpdateNote upserts: a PATCH to an unknown id creates the note.
	UpdateNote(ctx context.Context, userID, noteID string, req *models.UpdateNoteRequest) (*models.Note, error)
	DeleteNote(ctx context.Context, userID, noteID string) error
}

type UserService interface {
	// EnsureUser returns the caller's user row, creating it with the
	// starting token grant on first access.
	EnsureUser(ctx context.Context, id Identity) (*models.User, error)
	UpdateName(ctx context.Context, userID, name string) (*models.User, error)
	CreditTokens(ctx context.Context, userID string, amount int) error
}

type ChatService interface {
	History(ctx context.Context, userID, noteID string) ([]models.Message, error)
	// Send persists the user message, generates the assistant reply from
	// the note content plus chat history, persists and returns it.
	Send(ctx context.Context, id Identity, noteID, message string) (string, error)
}

// CompletionService is the billable text-generation collaborator.
type CompletionService interface {
	// Complete sends the system prompts and user input, returning the
	// generated text.
	Complete(ctx context.Context, system []string, input string) (string, error)
}

// Transcriber converts audio at a URL into plain text.
type Transcriber interface {
	TranscribeURL(ctx context.Context, audioURL string) (string, error)
}

// Notifier publishes best-effort realtime events keyed by note id.
type Notifier interface {
	Publish(noteID, event string)
}
