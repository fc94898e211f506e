package service

import (
	"context"
	"strings"
	"testing"

	"notable/internal/config"
	"notable/internal/domain/models"
	"notable/internal/domain/services"
	"notable/internal/repository/memory"
)

type stubCompletion struct {
	reply string
	err   error
	// last recorded call
	system []string
	input  string
	calls  int
}

func (s *stubCompletion) Complete(_ context.Context, system []string, input string) (string, error) {
	s.system = system
	s.input = input
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func testPrompts() *config.Prompts {
	return &config.Prompts{
		Summarize: config.PromptSet{System: []string{"summarize"}},
		Compose:   config.PromptSet{System: []string{"compose"}},
		Chat:      config.PromptSet{System: []string{"chat"}},
	}
}

func TestChatSend(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	completion := &stubCompletion{reply: "the mitochondria"}
	svc := NewChatService(store.Chats(), store.Notes(), completion, testPrompts(), testLogger())

	note := &models.Note{UserID: "u1", Title: "bio", Content: "cells have organelles"}
	if err := store.Notes().Create(ctx, note); err != nil {
		t.Fatalf("create note: %v", err)
	}
	id := services.Identity{UserID: "u1"}

	reply, err := svc.Send(ctx, id, note.ID, "what is the powerhouse?")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply != "the mitochondria" {
		t.Errorf("expected completion reply, got %q", reply)
	}
	if !strings.Contains(completion.input, "cells have organelles") {
		t.Error("expected note content in completion input")
	}

	messages, err := svc.History(ctx, "u1", note.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected user + assistant messages, got %d", len(messages))
	}
	if messages[0].Role != models.RoleUser || messages[1].Role != models.RoleAssistant {
		t.Errorf("unexpected roles: %s, %s", messages[0].Role, messages[1].Role)
	}
	if messages[0].UserID == nil || *messages[0].UserID != "u1" {
		t.Error("expected user message tagged with author")
	}
	if messages[1].UserID != nil {
		t.Error("expected assistant message without author")
	}

	// second send reuses the lazily created chat
	if _, err := svc.Send(ctx, id, note.ID, "and again?"); err != nil {
		t.Fatalf("second send: %v", err)
	}
	if !strings.Contains(completion.input, "what is the powerhouse?") {
		t.Error("expected prior exchange in second completion input")
	}
	messages, _ = svc.History(ctx, "u1", note.ID)
	if len(messages) != 4 {
		t.Errorf("expected 4 messages, got %d", len(messages))
	}
	chat, err := store.Chats().FindByNote(ctx, note.ID)
	if err != nil {
		t.Fatalf("find chat: %v", err)
	}
	for _, m := range messages {
		if m.ChatID != chat.ID {
			t.Errorf("message %s attached to chat %s, want %s", m.ID, m.ChatID, chat.ID)
		}
	}
}

func TestChatHistoryWithoutChat(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewChatService(store.Chats(), store.Notes(), &stubCompletion{}, testPrompts(), testLogger())

	note := &models.Note{UserID: "u1", Title: "empty"}
	if err := store.Notes().Create(ctx, note); err != nil {
		t.Fatalf("create note: %v", err)
	}

	messages, err := svc.History(ctx, "u1", note.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("expected empty history, got %d messages", len(messages))
	}
}
