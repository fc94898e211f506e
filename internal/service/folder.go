package service

import (
	"context"
	"errors"
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

const fallbackFolderName = "My Notes"

type folderService struct {
	folderRepo repositories.FolderRepository
	noteRepo   repositories.NoteRepository
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo repositories.FolderRepository,
	noteRepo repositories.NoteRepository,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		noteRepo:   noteRepo,
		logger:     logger,
	}
}

// EnsureDefaultFolder returns the user's default folder, creating it on
// first access. The name falls back from display name to the local part of
// the email.
func (s *folderService) EnsureDefaultFolder(ctx context.Context, id services.Identity) (*models.Folder, error) {
	folder, err := s.folderRepo.FindDefault(ctx, id.UserID)
	if err == nil {
		return folder, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	folder = &models.Folder{
		UserID:    id.UserID,
		Name:      defaultFolderName(id),
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		// another request may have created it concurrently
		if existing, findErr := s.folderRepo.FindDefault(ctx, id.UserID); findErr == nil {
			return existing, nil
		}
		return nil, err
	}

	s.logger.Info("default folder created", "user_id", id.UserID, "folder_id", folder.ID)

	return folder, nil
}

func defaultFolderName(id services.Identity) string {
	if id.Name != "" {
		return id.Name
	}
	if id.Email != "" {
		if at := strings.Index(id.Email, "@"); at > 0 {
			return id.Email[:at]
		}
	}
	return fallbackFolderName
}

// ListFolders returns the user's forest: folders default-first then
// alphabetical, notes per folder most-recently-updated first, children
// alphabetical. Notes without a folder land in the default folder.
func (s *folderService) ListFolders(ctx context.Context, id services.Identity) ([]*models.FolderNode, error) {
	defaultFolder, err := s.EnsureDefaultFolder(ctx, id)
	if err != nil {
		return nil, err
	}

	folders, err := s.folderRepo.ListByUser(ctx, id.UserID)
	if err != nil {
		return nil, err
	}

	notes, err := s.noteRepo.ListByUser(ctx, id.UserID)
	if err != nil {
		return nil, err
	}

	// First pass: create all nodes
	nodeMap := make(map[string]*models.FolderNode, len(folders))
	for i := range folders {
		nodeMap[folders[i].ID] = &models.FolderNode{
			Folder:   folders[i],
			Notes:    []models.Note{},
			Children: []*models.FolderNode{},
		}
	}

	// Second pass: nest children under parents, keep roots in list order
	// (repo orders default-first then by name)
	var roots []*models.FolderNode
	for i := range folders {
		node := nodeMap[folders[i].ID]
		if folders[i].ParentID == nil {
			roots = append(roots, node)
		} else if parent, ok := nodeMap[*folders[i].ParentID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}

	// Third pass: attach notes; repo orders by updated_at desc so append
	// preserves that ordering per folder
	for i := range notes {
		folderID := defaultFolder.ID
		if notes[i].FolderID != nil {
			folderID = *notes[i].FolderID
		}
		if node, ok := nodeMap[folderID]; ok {
			node.Notes = append(node.Notes, notes[i])
		}
	}

	return roots, nil
}

// CreateFolder creates a folder, optionally under a parent. The hierarchy
// is capped at two levels: a folder whose parent already has a parent is
// rejected.
func (s *folderService) CreateFolder(ctx context.Context, userID string, req *models.CreateFolderRequest) (*models.Folder, error) {
	if err := validateName(req.Name); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.ownedFolder(ctx, userID, *req.ParentID)
		if err != nil {
			return nil, &domain.NotFoundError{Message: "parent folder not found"}
		}
		if parent.ParentID != nil {
			return nil, &domain.ValidationError{Message: "cannot create folder deeper than two levels"}
		}
	}

	now := time.Now()
	folder := &models.Folder{
		UserID:    userID,
		ParentID:  req.ParentID,
		Name:      strings.TrimSpace(req.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"user_id", userID,
		"parent_id", folder.ParentID,
	)

	return folder, nil
}

// RenameFolder renames an owned folder
func (s *folderService) RenameFolder(ctx context.Context, userID, folderID, name string) (*models.Folder, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	folder, err := s.ownedFolder(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}

	folder.Name = strings.TrimSpace(name)
	folder.UpdatedAt = time.Now()
	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	return folder, nil
}

// SetOpened persists the UI expansion flag
func (s *folderService) SetOpened(ctx context.Context, userID, folderID string, opened bool) (*models.Folder, error) {
	folder, err := s.ownedFolder(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}

	folder.Opened = opened
	folder.UpdatedAt = time.Now()
	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	return folder, nil
}

// DeleteFolder deletes an owned, non-default folder. Children and their
// notes cascade.
func (s *folderService) DeleteFolder(ctx context.Context, userID, folderID string) error {
	folder, err := s.ownedFolder(ctx, userID, folderID)
	if err != nil {
		return err
	}

	if folder.IsDefault {
		return &domain.ValidationError{Message: "cannot delete default folder"}
	}

	if err := s.folderRepo.Delete(ctx, folderID); err != nil {
		return err
	}

	s.logger.Info("folder deleted", "id", folderID, "user_id", userID)

	return nil
}

// ownedFolder fetches a folder and verifies ownership. A folder owned by
// someone else reads as not found.
func (s *folderService) ownedFolder(ctx context.Context, userID, folderID string) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if folder.UserID != userID {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", folderID)}
	}
	return folder, nil
}

func validateName(name string) error {
	err := validation.Validate(strings.TrimSpace(name),
		validation.Required,
		validation.Length(1, config.MaxFolderNameLength),
	)
	if err != nil {
		return &domain.ValidationError{Message: fmt.Sprintf("name: %v", err)}
	}
	return nil
}
