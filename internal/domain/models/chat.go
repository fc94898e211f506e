package models

import (
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Chat is the single conversation attached to a note.
type Chat struct {
	ID        string    `json:"id" db:"id"`
	NoteID    string    `json:"noteId" db:"note_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type Message struct {
	ID        string    `json:"id" db:"id"`
	ChatID    string    `json:"chatId" db:"chat_id"`
	NoteID    string    `json:"noteId" db:"note_id"`
	UserID    *string   `json:"userId,omitempty" db:"user_id"` // nil for assistant messages
	Role      string    `json:"role" db:"role"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type ChatMessageRequest struct {
	Message string `json:"message"`
}
