package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"notable/internal/config"
	"notable/internal/domain"
	"notable/internal/domain/models"
	"notable/internal/domain/repositories"
	"notable/internal/domain/services"
)

type noteService struct {
	noteRepo   repositories.NoteRepository
	folderRepo repositories.FolderRepository
	mediaRepo  repositories.MediaRepository
	logger     *slog.Logger
}

// NewNoteService creates a new note service
func NewNoteService(
	noteRepo repositories.NoteRepository,
	folderRepo repositories.FolderRepository,
	mediaRepo repositories.MediaRepository,
	logger *slog.Logger,
) services.NoteService {
	return &noteService{
		noteRepo:   noteRepo,
		folderRepo: folderRepo,
		mediaRepo:  mediaRepo,
		logger:     logger,
	}
}

// ListNotes lists the user's notes, most recently updated first
func (s *noteService) ListNotes(ctx context.Context, userID string) ([]models.Note, error) {
	return s.noteRepo.ListByUser(ctx, userID)
}

// GetNote retrieves an owned note with its media
func (s *noteService) GetNote(ctx context.Context, userID, noteID string) (*models.Note, error) {
	note, err := s.ownedNote(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}

	media, err := s.mediaRepo.ListByNote(ctx, noteID)
	if err != nil {
		return nil, err
	}
	note.Media = media

	return note, nil
}

// CreateNote creates a note, falling back to the user's default folder when
// no folder is given.
func (s *noteService) CreateNote(ctx context.Context, userID string, req *models.CreateNoteRequest) (*models.Note, error) {
	if err := validateTitle(req.Title); err != nil {
		return nil, err
	}

	folderID := req.FolderID
	if folderID == nil {
		if defaultFolder, err := s.folderRepo.FindDefault(ctx, userID); err == nil {
			folderID = &defaultFolder.ID
		}
	} else {
		folder, err := s.folderRepo.GetByID(ctx, *folderID)
		if err != nil || folder.UserID != userID {
			return nil, &domain.NotFoundError{Message: "folder not found"}
		}
	}

	now := time.Now()
	note := &models.Note{
		UserID:    userID,
		FolderID:  folderID,
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, err
	}

	s.logger.Info("note created", "id", note.ID, "user_id", userID)

	return note, nil
}

// UpdateNote patches an owned note. A PATCH to an unknown id upserts a new
// note under that id.
func (s *noteService) UpdateNote(ctx context.Context, userID, noteID string, req *models.UpdateNoteRequest) (*models.Note, error) {
	note, err := s.ownedNote(ctx, userID, noteID)
	if err != nil {
		if !isNotFound(err) {
			return nil, err
		}
		return s.upsert(ctx, userID, noteID, req)
	}

	if req.Title != nil {
		if err := validateTitle(*req.Title); err != nil {
			return nil, err
		}
		note.Title = *req.Title
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	note.UpdatedAt = time.Now()

	if err := s.noteRepo.Update(ctx, note); err != nil {
		return nil, err
	}

	media, err := s.mediaRepo.ListByNote(ctx, noteID)
	if err != nil {
		return nil, err
	}
	note.Media = media

	return note, nil
}

func (s *noteService) upsert(ctx context.Context, userID, noteID string, req *models.UpdateNoteRequest) (*models.Note, error) {
	title := "Untitled Note"
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		title = *req.Title
	}
	content := ""
	if req.Content != nil {
		content = *req.Content
	}

	var folderID *string
	if defaultFolder, err := s.folderRepo.FindDefault(ctx, userID); err == nil {
		folderID = &defaultFolder.ID
	}

	now := time.Now()
	note := &models.Note{
		ID:        noteID,
		UserID:    userID,
		FolderID:  folderID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, err
	}

	s.logger.Info("note upserted", "id", note.ID, "user_id", userID)

	return note, nil
}

// DeleteNote deletes an owned note; its media records cascade
func (s *noteService) DeleteNote(ctx context.Context, userID, noteID string) error {
	if _, err := s.ownedNote(ctx, userID, noteID); err != nil {
		return err
	}
	return s.noteRepo.Delete(ctx, noteID)
}

func (s *noteService) ownedNote(ctx context.Context, userID, noteID string) (*models.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note.UserID != userID {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("note %s not found", noteID)}
	}
	return note, nil
}

func validateTitle(title string) error {
	err := validation.Validate(strings.TrimSpace(title),
		validation.Required,
		validation.Length(1, config.MaxNoteTitleLength),
	)
	if err != nil {
		return &domain.ValidationError{Message: fmt.Sprintf("title: %v", err)}
	}
	return nil
}
