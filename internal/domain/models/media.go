package models

import (
	"strings"
	"time"
)

// Section is one labeled slice of a segmented transcript, e.g. a slide.
type Section struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Transcript is the uniform extraction result: plain text for most media
// kinds, ordered sections for slide decks. Exactly one of the two is set.
type Transcript struct {
	Text     string    `json:"text,omitempty"`
	Sections []Section `json:"sections,omitempty"`
}

// Plain flattens the transcript to a single string, joining section texts
// with newlines.
func (t *Transcript) Plain() string {
	if t == nil {
		return ""
	}
	if len(t.Sections) == 0 {
		return t.Text
	}
	parts := make([]string, 0, len(t.Sections))
	for _, s := range t.Sections {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, "\n")
}

type Media struct {
	ID     string `json:"id" db:"id"`
	NoteID string `json:"noteId" db:"note_id"`
	Name   string `json:"name" db:"name"`
	Type   string `json:"type" db:"type"` // MIME type as uploaded
	URL    string `json:"url" db:"url"`

	Transcript *Transcript `json:"transcript" db:"transcript"`
	Summary    *string     `json:"summary" db:"summary"`

	// Processing is true from creation until transcript and summary are
	// both set. It never transitions back to true. A failed ingestion
	// leaves it true and stamps FailedAt instead.
	Processing bool       `json:"processing" db:"processing"`
	FailedAt   *time.Time `json:"failedAt,omitempty" db:"failed_at"`
	Error      *string    `json:"error,omitempty" db:"error"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Failed reports whether ingestion reached the terminal failure state.
func (m *Media) Failed() bool {
	return m.FailedAt != nil
}
