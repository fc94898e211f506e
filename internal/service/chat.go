package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"notable/internal/config"
	"notable/internal/domain"
	"notable/internal/domain/models"
	"notable/internal/domain/repositories"
	"notable/internal/domain/services"
)

type chatService struct {
	chatRepo   repositories.ChatRepository
	noteRepo   repositories.NoteRepository
	completion services.CompletionService
	prompts    *config.Prompts
	logger     *slog.Logger
}

// NewChatService creates a new chat service
func NewChatService(
	chatRepo repositories.ChatRepository,
	noteRepo repositories.NoteRepository,
	completion services.CompletionService,
	prompts *config.Prompts,
	logger *slog.Logger,
) services.ChatService {
	return &chatService{
		chatRepo:   chatRepo,
		noteRepo:   noteRepo,
		completion: completion,
		prompts:    prompts,
		logger:     logger,
	}
}

// History returns the note's chat messages in order. A note without a chat
// yet has an empty history.
func (s *chatService) History(ctx context.Context, userID, noteID string) ([]models.Message, error) {
	if _, err := s.ownedNote(ctx, userID, noteID); err != nil {
		return nil, err
	}

	if _, err := s.chatRepo.FindByNote(ctx, noteID); err != nil {
		if isNotFound(err) {
			return []models.Message{}, nil
		}
		return nil, err
	}

	return s.chatRepo.ListMessages(ctx, noteID)
}

// Send persists the user message, generates the assistant reply from the
// note content plus the chat history so far, persists and returns it.
func (s *chatService) Send(ctx context.Context, id services.Identity, noteID, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", &domain.ValidationError{Message: "message is required"}
	}

	note, err := s.ownedNote(ctx, id.UserID, noteID)
	if err != nil {
		return "", err
	}

	chat, err := s.ensureChat(ctx, noteID)
	if err != nil {
		return "", err
	}

	history, err := s.chatRepo.ListMessages(ctx, noteID)
	if err != nil {
		return "", err
	}

	userMsg := &models.Message{
		ChatID:    chat.ID,
		NoteID:    noteID,
		UserID:    &id.UserID,
		Role:      models.RoleUser,
		Content:   message,
		CreatedAt: time.Now(),
	}
	if err := s.chatRepo.AddMessage(ctx, userMsg); err != nil {
		return "", err
	}

	reply, err := s.completion.Complete(ctx, s.prompts.Chat.System, chatInput(note, history, message))
	if err != nil {
		return "", err
	}

	assistantMsg := &models.Message{
		ChatID:    chat.ID,
		NoteID:    noteID,
		Role:      models.RoleAssistant,
		Content:   reply,
		CreatedAt: time.Now(),
	}
	if err := s.chatRepo.AddMessage(ctx, assistantMsg); err != nil {
		return "", err
	}

	s.logger.Info("chat reply generated", "note_id", noteID, "user_id", id.UserID)

	return reply, nil
}

// ensureChat returns the note's chat, creating it lazily on first message
func (s *chatService) ensureChat(ctx context.Context, noteID string) (*models.Chat, error) {
	chat, err := s.chatRepo.FindByNote(ctx, noteID)
	if err == nil {
		return chat, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	chat = &models.Chat{
		NoteID:    noteID,
		CreatedAt: time.Now(),
	}
	if err := s.chatRepo.Create(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// chatInput lays out the note content, prior exchange, and the new question
// as a single user turn.
func chatInput(note *models.Note, history []models.Message, message string) string {
	var b strings.Builder

	b.WriteString("Note content:\n")
	b.WriteString(note.Content)
	b.WriteString("\n\n")

	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, msg := range history {
			fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
		}
		b.WriteString("\n")
	}

	b.WriteString("Question: ")
	b.WriteString(message)

	return b.String()
}

func (s *chatService) ownedNote(ctx context.Context, userID, noteID string) (*models.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note.UserID != userID {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("note %s not found", noteID)}
	}
	return note, nil
}
