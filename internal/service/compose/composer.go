// Package compose merges media transcripts and summaries back into note
// content through the completion service, metered by the token ledger.
package compose

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
	"notable/internal/service"
)

type Composer struct {
	noteRepo   repositories.NoteRepository
	mediaRepo  repositories.MediaRepository
	ledger     *service.Ledger
	completion services.CompletionService
	prompts    *config.Prompts
	notifier   services.Notifier
	logger     *slog.Logger
}

func NewComposer(
	noteRepo repositories.NoteRepository,
	mediaRepo repositories.MediaRepository,
	ledger *service.Ledger,
	completion services.CompletionService,
	prompts *config.Prompts,
	notifier services.Notifier,
	logger *slog.Logger,
) *Composer {
	return &Composer{
		noteRepo:   noteRepo,
		mediaRepo:  mediaRepo,
		ledger:     ledger,
		completion: completion,
		prompts:    prompts,
		notifier:   notifier,
		logger:     logger,
	}
}

// ComposeSummary rewrites the note's content from the selected media plus
// the current content. The estimated cost is debited before the completion
// call and credited back if that call fails. Not idempotent: every
// invocation generates, overwrites, and charges again.
func (c *Composer) ComposeSummary(ctx context.Context, userID, noteID string, mediaIDs []string) (string, error) {
	note, err := c.ownedNote(ctx, userID, noteID)
	if err != nil {
		return "", err
	}

	selected, err := c.selectMedia(ctx, noteID, mediaIDs)
	if err != nil {
		return "", err
	}
	if len(selected) == 0 {
		return "", &domain.ValidationError{Message: "no media on this note matches the selection"}
	}

	input := combinedBlock(note, selected)

	cost := c.ledger.EstimateCost(input)
	if err := c.ledger.Charge(ctx, userID, cost); err != nil {
		return "", err
	}

	generated, err := c.completion.Complete(ctx, c.prompts.Compose.System, input)
	if err != nil {
		if refundErr := c.ledger.Credit(ctx, userID, cost); refundErr != nil {
			c.logger.Error("token refund failed",
				"user_id", userID,
				"amount", cost,
				"error", refundErr,
			)
		}
		return "", err
	}

	// an empty generation keeps the original content
	content := generated
	if strings.TrimSpace(content) == "" {
		content = note.Content
	}

	note.Content = content
	note.UpdatedAt = time.Now()
	if err := c.noteRepo.Update(ctx, note); err != nil {
		return "", err
	}

	c.notifier.Publish(noteID, "summary_ready")
	c.logger.Info("summary composed",
		"note_id", noteID,
		"user_id", userID,
		"media_count", len(selected),
		"cost", cost,
	)

	return content, nil
}

// selectMedia filters the requested ids to media actually attached to the
// note. Ids pointing elsewhere are dropped, not errors.
func (c *Composer) selectMedia(ctx context.Context, noteID string, mediaIDs []string) ([]models.Media, error) {
	attached, err := c.mediaRepo.ListByNote(ctx, noteID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Media, len(attached))
	for _, m := range attached {
		byID[m.ID] = m
	}

	var selected []models.Media
	for _, id := range mediaIDs {
		if m, ok := byID[id]; ok {
			selected = append(selected, m)
		}
	}
	return selected, nil
}

// combinedBlock lays the media transcripts and summaries ahead of the
// note's current content as one completion input.
func combinedBlock(note *models.Note, selected []models.Media) string {
	parts := make([]string, 0, len(selected)+1)
	for _, m := range selected {
		var b strings.Builder
		fmt.Fprintf(&b, "Media: %s\n", m.Name)
		fmt.Fprintf(&b, "Transcript: %s\n", m.Transcript.Plain())
		if m.Summary != nil {
			fmt.Fprintf(&b, "Summary: %s\n", *m.Summary)
		}
		parts = append(parts, b.String())
	}
	parts = append(parts, "Current note content:\n"+note.Content)

	return strings.Join(parts, "\n---\n\n")
}

func (c *Composer) ownedNote(ctx context.Context, userID, noteID string) (*models.Note, error) {
	note, err := c.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note.UserID != userID {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("note %s not found", noteID)}
	}
	return note, nil
}
