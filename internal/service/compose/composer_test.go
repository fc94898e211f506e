package compose

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"notable/internal/config"
	"notable/internal/domain"
	"notable/internal/domain/models"
	"notable/internal/notify"
	"notable/internal/repository/memory"
	"notable/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPrompts() *config.Prompts {
	return &config.Prompts{
		Summarize: config.PromptSet{System: []string{"summarize"}},
		Compose:   config.PromptSet{System: []string{"compose"}},
		Chat:      config.PromptSet{System: []string{"chat"}},
	}
}

type stubCompletion struct {
	mu     sync.Mutex
	reply  string
	err    error
	system []string
	input  string
	calls  int
}

func (s *stubCompletion) Complete(_ context.Context, system []string, input string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.system = system
	s.input = input
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type composerFixture struct {
	store      *memory.Store
	completion *stubCompletion
	composer   *Composer
	noteID     string
	mediaID    string
}

func newComposerFixture(t *testing.T, tokens int) *composerFixture {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	completion := &stubCompletion{reply: "<h1>Study Guide</h1>"}
	ledger := service.NewLedger(store.Users(), testLogger())
	composer := NewComposer(store.Notes(), store.Media(), ledger, completion, testPrompts(), notify.NewHub(), testLogger())

	if err := store.Users().Create(ctx, &models.User{ID: "u1", Tokens: tokens}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	note := &models.Note{UserID: "u1", Title: "bio", Content: "original content"}
	if err := store.Notes().Create(ctx, note); err != nil {
		t.Fatalf("create note: %v", err)
	}

	summary := "cells summary"
	media := &models.Media{
		NoteID:     note.ID,
		Name:       "lecture.mp3",
		Transcript: &models.Transcript{Text: "the cell is the basic unit of life"},
		Summary:    &summary,
	}
	if err := store.Media().Create(ctx, media); err != nil {
		t.Fatalf("create media: %v", err)
	}

	return &composerFixture{
		store:      store,
		completion: completion,
		composer:   composer,
		noteID:     note.ID,
		mediaID:    media.ID,
	}
}

func TestComposeSummaryOverwritesAndDebits(t *testing.T) {
	ctx := context.Background()
	f := newComposerFixture(t, 1000)

	content, err := f.composer.ComposeSummary(ctx, "u1", f.noteID, []string{f.mediaID})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if content != "<h1>Study Guide</h1>" {
		t.Errorf("expected generated content returned, got %q", content)
	}

	note, _ := f.store.Notes().GetByID(ctx, f.noteID)
	if note.Content != "<h1>Study Guide</h1>" {
		t.Errorf("expected note content replaced, got %q", note.Content)
	}

	if !strings.Contains(f.completion.input, "the cell is the basic unit of life") {
		t.Error("expected transcript in completion input")
	}
	if !strings.Contains(f.completion.input, "original content") {
		t.Error("expected existing note content in completion input")
	}
	if len(f.completion.system) == 0 || f.completion.system[0] != "compose" {
		t.Errorf("expected compose prompt, got %v", f.completion.system)
	}

	// debit equals the whitespace word count of the completion input
	wantCost := len(strings.Fields(f.completion.input))
	user, _ := f.store.Users().GetByID(ctx, "u1")
	if user.Tokens != 1000-wantCost {
		t.Errorf("expected balance %d, got %d", 1000-wantCost, user.Tokens)
	}
}

func TestComposeSummaryInsufficientTokens(t *testing.T) {
	ctx := context.Background()
	f := newComposerFixture(t, 5)

	_, err := f.composer.ComposeSummary(ctx, "u1", f.noteID, []string{f.mediaID})
	if !errors.Is(err, domain.ErrInsufficientTokens) {
		t.Fatalf("expected insufficient tokens, got %v", err)
	}

	user, _ := f.store.Users().GetByID(ctx, "u1")
	if user.Tokens != 5 {
		t.Errorf("expected balance unchanged at 5, got %d", user.Tokens)
	}
	if f.completion.calls != 0 {
		t.Errorf("completion must not be called without a successful debit, got %d calls", f.completion.calls)
	}

	note, _ := f.store.Notes().GetByID(ctx, f.noteID)
	if note.Content != "original content" {
		t.Errorf("expected content untouched, got %q", note.Content)
	}
}

func TestComposeSummaryRefundsOnUpstreamFailure(t *testing.T) {
	ctx := context.Background()
	f := newComposerFixture(t, 1000)
	f.completion.err = &domain.UpstreamError{Message: "model overloaded"}

	_, err := f.composer.ComposeSummary(ctx, "u1", f.noteID, []string{f.mediaID})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}

	user, _ := f.store.Users().GetByID(ctx, "u1")
	if user.Tokens != 1000 {
		t.Errorf("expected debit refunded, balance 1000, got %d", user.Tokens)
	}
}

func TestComposeSummaryEmptyGenerationKeepsContent(t *testing.T) {
	ctx := context.Background()
	f := newComposerFixture(t, 1000)
	f.completion.reply = "   "

	content, err := f.composer.ComposeSummary(ctx, "u1", f.noteID, []string{f.mediaID})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if content != "original content" {
		t.Errorf("expected fallback to original content, got %q", content)
	}

	note, _ := f.store.Notes().GetByID(ctx, f.noteID)
	if note.Content != "original content" {
		t.Errorf("expected note content preserved, got %q", note.Content)
	}
}

func TestComposeSummaryMediaSelection(t *testing.T) {
	ctx := context.Background()
	f := newComposerFixture(t, 1000)

	t.Run("empty selection rejected", func(t *testing.T) {
		_, err := f.composer.ComposeSummary(ctx, "u1", f.noteID, nil)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("foreign media ids filtered out", func(t *testing.T) {
		otherNote := &models.Note{UserID: "u2", Title: "theirs"}
		if err := f.store.Notes().Create(ctx, otherNote); err != nil {
			t.Fatalf("create note: %v", err)
		}
		foreign := &models.Media{NoteID: otherNote.ID, Name: "x", Transcript: &models.Transcript{Text: "secret"}}
		if err := f.store.Media().Create(ctx, foreign); err != nil {
			t.Fatalf("create media: %v", err)
		}

		_, err := f.composer.ComposeSummary(ctx, "u1", f.noteID, []string{foreign.ID})
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected validation error when only foreign ids given, got %v", err)
		}

		if _, err := f.composer.ComposeSummary(ctx, "u1", f.noteID, []string{f.mediaID, foreign.ID}); err != nil {
			t.Fatalf("compose: %v", err)
		}
		if strings.Contains(f.completion.input, "secret") {
			t.Error("foreign media must not leak into the completion input")
		}
	})

	t.Run("unknown note", func(t *testing.T) {
		_, err := f.composer.ComposeSummary(ctx, "u1", "nope", []string{f.mediaID})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})
}
