package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"notable/internal/domain"
	"notable/internal/domain/models"
	"notable/internal/domain/repositories"
	"notable/internal/domain/services"
)

type userService struct {
	userRepo      repositories.UserRepository
	startingGrant int
	logger        *slog.Logger
}

// NewUserService creates a new user service. startingGrant is the token
// balance granted to newly created users.
func NewUserService(userRepo repositories.UserRepository, startingGrant int, logger *slog.Logger) services.UserService {
	return &userService{
		userRepo:      userRepo,
		startingGrant: startingGrant,
		logger:        logger,
	}
}

// EnsureUser returns the caller's user row, creating it on first access
func (s *userService) EnsureUser(ctx context.Context, id services.Identity) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id.UserID)
	if err == nil {
		return user, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	user = &models.User{
		ID:        id.UserID,
		Name:      id.Name,
		Email:     id.Email,
		Tokens:    s.startingGrant,
		CreatedAt: time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", user.ID, "tokens", user.Tokens)

	// re-read in case a concurrent request won the create race
	return s.userRepo.GetByID(ctx, id.UserID)
}

// UpdateName renames the user
func (s *userService) UpdateName(ctx context.Context, userID, name string) (*models.User, error) {
	err := validation.Validate(strings.TrimSpace(name), validation.Required)
	if err != nil {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("name: %v", err)}
	}

	return s.userRepo.UpdateName(ctx, userID, name)
}

// CreditTokens tops up the balance
func (s *userService) CreditTokens(ctx context.Context, userID string, amount int) error {
	if amount <= 0 {
		return &domain.ValidationError{Message: "amount must be positive"}
	}

	if err := s.userRepo.Credit(ctx, userID, amount); err != nil {
		return err
	}

	s.logger.Info("tokens credited", "user_id", userID, "amount", amount)

	return nil
}
