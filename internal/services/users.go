// Package services orchestrates logbook use cases on top of the store.
package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ptlog/ptlog/internal/model"
	"github.com/ptlog/ptlog/internal/store"
)

// UserService handles account creation and profile maintenance. Creating an
// account also seeds the trial token balance; the store does both in one
// transaction.
type UserService struct {
	store store.Store
}

func NewUserService(s store.Store) *UserService {
	return &UserService{store: s}
}

func (s *UserService) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	if strings.TrimSpace(u.UserID) == "" {
		return nil, model.NewValidationError("userId", "user ID is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return nil, model.NewValidationError("email", "email is required")
	}
	log.Info().Str("userID", u.UserID).Msg("Creating user")
	created, err := s.store.Users().Create(ctx, u)
	if err != nil {
		log.Error().Err(err).Str("userID", u.UserID).Msg("Failed to create user")
		return nil, err
	}
	return created, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, model.NewValidationError("userId", "user ID is required")
	}
	return s.store.Users().Get(ctx, userID)
}

// UpdateProfile replaces the user's placement profile fields. Identity fields
// (userID, email) are not changed here.
func (s *UserService) UpdateProfile(ctx context.Context, u *model.User) (*model.User, error) {
	if u.UserID == "" {
		return nil, model.NewValidationError("userId", "user ID is required")
	}
	return s.store.Users().UpdateProfile(ctx, u)
}
