// Package memory provides mutex-guarded in-memory implementations of the
// repository interfaces. They back the service tests and are semantically
// equivalent to the postgres implementations, including cascade deletes and
// the atomic conditional token debit.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"notable/internal/domain"
	"notable/internal/domain/models"
)

// Store holds all entities behind one lock, mirroring the relational store's
// cross-table cascades without transactions.
type Store struct {
	mu       sync.Mutex
	folders  map[string]*models.Folder
	notes    map[string]*models.Note
	media    map[string]*models.Media
	users    map[string]*models.User
	chats    map[string]*models.Chat
	messages map[string]*models.Message
}

func NewStore() *Store {
	return &Store{
		folders:  make(map[string]*models.Folder),
		notes:    make(map[string]*models.Note),
		media:    make(map[string]*models.Media),
		users:    make(map[string]*models.User),
		chats:    make(map[string]*models.Chat),
		messages: make(map[string]*models.Message),
	}
}

func (s *Store) Folders() *FolderRepo { return &FolderRepo{s} }
func (s *Store) Notes() *NoteRepo     { return &NoteRepo{s} }
func (s *Store) Media() *MediaRepo    { return &MediaRepo{s} }
func (s *Store) Users() *UserRepo     { return &UserRepo{s} }
func (s *Store) Chats() *ChatRepo     { return &ChatRepo{s} }

// FolderRepo implements repositories.FolderRepository
type FolderRepo struct{ s *Store }

func (r *FolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	cp := *folder
	r.s.folders[folder.ID] = &cp
	return nil
}

func (r *FolderRepo) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	folder, ok := r.s.folders[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", id)}
	}
	cp := *folder
	return &cp, nil
}

func (r *FolderRepo) FindDefault(ctx context.Context, userID string) (*models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, folder := range r.s.folders {
		if folder.UserID == userID && folder.IsDefault {
			cp := *folder
			return &cp, nil
		}
	}
	return nil, &domain.NotFoundError{Message: "default folder not found"}
}

func (r *FolderRepo) ListByUser(ctx context.Context, userID string) ([]models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var folders []models.Folder
	for _, folder := range r.s.folders {
		if folder.UserID == userID {
			folders = append(folders, *folder)
		}
	}
	sort.Slice(folders, func(i, j int) bool {
		if folders[i].IsDefault != folders[j].IsDefault {
			return folders[i].IsDefault
		}
		return folders[i].Name < folders[j].Name
	})
	return folders, nil
}

func (r *FolderRepo) Update(ctx context.Context, folder *models.Folder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.folders[folder.ID]; !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", folder.ID)}
	}
	cp := *folder
	r.s.folders[folder.ID] = &cp
	return nil
}

func (r *FolderRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.folders[id]; !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", id)}
	}

	// Cascade: child folders, then notes of all removed folders
	removed := map[string]bool{id: true}
	for fid, folder := range r.s.folders {
		if folder.ParentID != nil && *folder.ParentID == id {
			removed[fid] = true
		}
	}
	for fid := range removed {
		delete(r.s.folders, fid)
	}
	for nid, note := range r.s.notes {
		if note.FolderID != nil && removed[*note.FolderID] {
			r.s.deleteNoteLocked(nid)
		}
	}
	return nil
}

// NoteRepo implements repositories.NoteRepository
type NoteRepo struct{ s *Store }

func (r *NoteRepo) Create(ctx context.Context, note *models.Note) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	cp := *note
	cp.Media = nil
	r.s.notes[note.ID] = &cp
	return nil
}

func (r *NoteRepo) GetByID(ctx context.Context, id string) (*models.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	note, ok := r.s.notes[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("note %s not found", id)}
	}
	cp := *note
	return &cp, nil
}

func (r *NoteRepo) ListByUser(ctx context.Context, userID string) ([]models.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var notes []models.Note
	for _, note := range r.s.notes {
		if note.UserID == userID {
			notes = append(notes, *note)
		}
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})
	return notes, nil
}

func (r *NoteRepo) Update(ctx context.Context, note *models.Note) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.notes[note.ID]; !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("note %s not found", note.ID)}
	}
	cp := *note
	cp.Media = nil
	r.s.notes[note.ID] = &cp
	return nil
}

func (r *NoteRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.notes[id]; !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("note %s not found", id)}
	}
	r.s.deleteNoteLocked(id)
	return nil
}

func (s *Store) deleteNoteLocked(id string) {
	delete(s.notes, id)
	for mid, media := range s.media {
		if media.NoteID == id {
			delete(s.media, mid)
		}
	}
	for cid, chat := range s.chats {
		if chat.NoteID == id {
			delete(s.chats, cid)
		}
	}
	for msgID, msg := range s.messages {
		if msg.NoteID == id {
			delete(s.messages, msgID)
		}
	}
}

// MediaRepo implements repositories.MediaRepository
type MediaRepo struct{ s *Store }

func (r *MediaRepo) Create(ctx context.Context, media *models.Media) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if media.ID == "" {
		media.ID = uuid.NewString()
	}
	if media.CreatedAt.IsZero() {
		media.CreatedAt = time.Now()
	}
	cp := *media
	r.s.media[media.ID] = &cp
	return nil
}

func (r *MediaRepo) GetByID(ctx context.Context, id string) (*models.Media, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	media, ok := r.s.media[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("media %s not found", id)}
	}
	cp := *media
	return &cp, nil
}

func (r *MediaRepo) ListByNote(ctx context.Context, noteID string) ([]models.Media, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var items []models.Media
	for _, media := range r.s.media {
		if media.NoteID == noteID {
			items = append(items, *media)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (r *MediaRepo) Update(ctx context.Context, media *models.Media) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.media[media.ID]; !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("media %s not found", media.ID)}
	}
	cp := *media
	r.s.media[media.ID] = &cp
	return nil
}

func (r *MediaRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.media[id]; !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("media %s not found", id)}
	}
	delete(r.s.media, id)
	return nil
}

// UserRepo implements repositories.UserRepository
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; ok {
		return nil // ON CONFLICT DO NOTHING semantics
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("user %s not found", id)}
	}
	cp := *user
	return &cp, nil
}

func (r *UserRepo) UpdateName(ctx context.Context, id, name string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("user %s not found", id)}
	}
	user.Name = name
	cp := *user
	return &cp, nil
}

func (r *UserRepo) Credit(ctx context.Context, id string, amount int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("user %s not found", id)}
	}
	user.Tokens += amount
	return nil
}

func (r *UserRepo) Debit(ctx context.Context, id string, amount int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("user %s not found", id)}
	}
	if user.Tokens < amount {
		return &domain.InsufficientTokensError{
			Message: fmt.Sprintf("insufficient tokens: need %d", amount),
		}
	}
	user.Tokens -= amount
	return nil
}

// ChatRepo implements repositories.ChatRepository
type ChatRepo struct{ s *Store }

func (r *ChatRepo) FindByNote(ctx context.Context, noteID string) (*models.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, chat := range r.s.chats {
		if chat.NoteID == noteID {
			cp := *chat
			return &cp, nil
		}
	}
	return nil, &domain.NotFoundError{Message: fmt.Sprintf("chat for note %s not found", noteID)}
}

func (r *ChatRepo) Create(ctx context.Context, chat *models.Chat) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.chats {
		if existing.NoteID == chat.NoteID {
			*chat = *existing
			return nil
		}
	}
	if chat.ID == "" {
		chat.ID = uuid.NewString()
	}
	cp := *chat
	r.s.chats[chat.ID] = &cp
	return nil
}

func (r *ChatRepo) AddMessage(ctx context.Context, msg *models.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	cp := *msg
	r.s.messages[msg.ID] = &cp
	return nil
}

func (r *ChatRepo) ListMessages(ctx context.Context, noteID string) ([]models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var messages []models.Message
	for _, msg := range r.s.messages {
		if msg.NoteID == noteID {
			messages = append(messages, *msg)
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}
