package models

import (
	"time"
)

type Note struct {
	ID             string    `json:"id" db:"id"`
	UserID         string    `json:"userId" db:"user_id"`
	FolderID       *string   `json:"folderId" db:"folder_id"`
	Title          string    `json:"title" db:"title"`
	Content        string    `json:"content" db:"content"`
	FlashcardSetID *string   `json:"flashcardSetId,omitempty" db:"flashcard_set_id"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`

	// Media is populated on single-note reads, not on list endpoints.
	Media []Media `json:"media,omitempty"`
}

type CreateNoteRequest struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	FolderID *string `json:"folderId,omitempty"`
}

// UpdateNoteRequest uses pointers so an absent field leaves the stored value
// untouched. A PATCH to an unknown note id upserts.
type UpdateNoteRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}
