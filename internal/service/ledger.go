package service

import (
	"context"
	"log/slog"
	"strings"

	"notable/internal/domain/repositories"
)

// Ledger gates and accounts AI usage against the per-user token balance.
// Estimates use a whitespace word count as the token proxy; the actual
// model token count is not consulted.
type Ledger struct {
	userRepo repositories.UserRepository
	logger   *slog.Logger
}

// NewLedger creates a token ledger over the user repository.
func NewLedger(userRepo repositories.UserRepository, logger *slog.Logger) *Ledger {
	return &Ledger{
		userRepo: userRepo,
		logger:   logger,
	}
}

// EstimateCost returns the whitespace-delimited word count of the
// concatenated inputs.
func (l *Ledger) EstimateCost(texts ...string) int {
	return len(strings.Fields(strings.Join(texts, " ")))
}

// Charge debits the user's balance. It must succeed before any billable
// completion call is issued. The repository performs the check-and-debit
// atomically; Charge fails with domain.ErrInsufficientTokens (balance
// unchanged) when the user cannot afford the amount.
func (l *Ledger) Charge(ctx context.Context, userID string, amount int) error {
	if amount == 0 {
		return nil
	}
	if err := l.userRepo.Debit(ctx, userID, amount); err != nil {
		return err
	}

	l.logger.Info("tokens charged", "user_id", userID, "amount", amount)

	return nil
}

// Credit unconditionally increments the balance (top-ups and refunds).
func (l *Ledger) Credit(ctx context.Context, userID string, amount int) error {
	if amount == 0 {
		return nil
	}
	return l.userRepo.Credit(ctx, userID, amount)
}
