package service

import (
	"context"
	"errors"
	"testing"

	"notable/internal/domain"
	"notable/internal/domain/services"
	"notable/internal/repository/memory"
)

func TestEnsureUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewUserService(store.Users(), 500, testLogger())
	id := services.Identity{UserID: "u1", Name: "Ada", Email: "ada@example.com"}

	user, err := svc.EnsureUser(ctx, id)
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if user.Tokens != 500 {
		t.Errorf("expected starting grant 500, got %d", user.Tokens)
	}
	if user.Name != "Ada" || user.Email != "ada@example.com" {
		t.Errorf("expected identity carried over, got %+v", user)
	}

	// second access must not reset the balance
	if err := store.Users().Debit(ctx, "u1", 100); err != nil {
		t.Fatalf("debit: %v", err)
	}
	again, err := svc.EnsureUser(ctx, id)
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if again.Tokens != 400 {
		t.Errorf("expected balance 400 preserved, got %d", again.Tokens)
	}
}

func TestCreditTokens(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewUserService(store.Users(), 0, testLogger())

	if _, err := svc.EnsureUser(ctx, services.Identity{UserID: "u1"}); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	if err := svc.CreditTokens(ctx, "u1", 50); err != nil {
		t.Fatalf("credit: %v", err)
	}
	user, _ := store.Users().GetByID(ctx, "u1")
	if user.Tokens != 50 {
		t.Errorf("expected 50 tokens, got %d", user.Tokens)
	}

	if err := svc.CreditTokens(ctx, "u1", 0); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error for zero amount, got %v", err)
	}
	if err := svc.CreditTokens(ctx, "u1", -5); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error for negative amount, got %v", err)
	}
}
