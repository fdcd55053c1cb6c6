package service

import (
	"context"

	"projecthub/internal/repository"
	"projecthub/internal/validation"
	"projecthub/models"

	"github.com/google/uuid"
)

// Messages returned by the username availability check.
const (
	MsgAvailable     = "available"
	MsgExists        = "exists"
	MsgEnterUsername = "enter a username"
	MsgUsernameTaken = "username already taken"
)

type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput replaces the descriptive fields of a profile. Empty
// optional fields clear the stored value.
type UpdateProfileInput struct {
	UserID   uuid.UUID `json:"-"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
	PfpURL   string    `json:"pfpUrl"`
	Bio      string    `json:"bio"`
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile returns the caller's profile without credentials.
func (s *UserService) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return s.userRepo.GetProfile(ctx, id)
}

// Exists reports whether a user with id is still stored.
func (s *UserService) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.userRepo.Exists(ctx, id)
}

// UsernameAvailable reports whether username is free for a new account.
func (s *UserService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	if username == "" {
		return false, models.NewValidationError(MsgEnterUsername)
	}
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	return user == nil, nil
}

// UpdateProfile re-validates the username and name, then applies the update.
// Renaming rewrites the identifiers of the user's projects in the same
// transaction.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.Profile, error) {
	var v validation.Violations
	v = append(v, validation.UsernameViolations(in.Username)...)
	v = append(v, validation.NameViolations(in.Name)...)
	if len(v) > 0 {
		return nil, models.NewValidationError(msgValidationFailed, v...)
	}

	user, err := s.userRepo.UpdateProfile(ctx, in.UserID, repository.ProfileUpdate{
		Username: in.Username,
		Name:     in.Name,
		PfpURL:   in.PfpURL,
		Bio:      in.Bio,
	})
	if err != nil {
		return nil, err
	}
	profile := user.Profile()
	return &profile, nil
}
