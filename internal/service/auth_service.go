// Package service holds the application's use cases. Services validate
// input, apply access rules and translate storage outcomes into AppErrors.
package service

import (
	"context"
	"errors"

	"projecthub/internal/featureflags"
	"projecthub/internal/observability"
	"projecthub/internal/repository"
	"projecthub/internal/validation"
	"projecthub/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Messages returned to clients by the authentication flows.
const (
	MsgUserCreated      = "user created successfully!"
	MsgSigninSuccessful = "signin successful"
	MsgUserExists       = "user already exists"
	MsgUserDoesNotExist = "this user does not exist"
	MsgBadCredentials   = "username or password incorrect"
	MsgInvalidPassword  = "invalid password"
	MsgPasswordUpdated  = "password updated"
	msgValidationFailed = "invalid input"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenIssuer mints session tokens for a user id.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, error)
}

// SignupInput is the candidate account submitted at registration.
type SignupInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
	PfpURL   string `json:"pfpUrl"`
}

// SigninInput carries a password and at least one identifier.
type SigninInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdatePasswordInput changes a user's password after re-checking the
// current one.
type UpdatePasswordInput struct {
	UserID          uuid.UUID `json:"-"`
	CurrentPassword string    `json:"currentPassword"`
	NewPassword     string    `json:"newPassword"`
}

type AuthService struct {
	users  repository.UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	flags  *featureflags.Manager
}

func NewAuthService(users repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer, flags *featureflags.Manager) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, flags: flags}
}

// Signup validates the candidate, checks that neither username nor email is
// taken, hashes the password and persists the user. A racing signup that
// passes the pre-check is still rejected by the unique indexes.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	ctx, span := observability.StartSpan(ctx, "service", "AuthService.Signup")
	user, err := s.signup(ctx, in)
	observability.EndSpan(span, unexpected(err))
	recordAuthEvent("signup", err)
	return user, err
}

func (s *AuthService) signup(ctx context.Context, in SignupInput) (*models.User, error) {
	if v := validation.Signup(validation.SignupInput{
		Email:    in.Email,
		Username: in.Username,
		Name:     in.Name,
		Password: in.Password,
		PfpURL:   in.PfpURL,
	}); len(v) > 0 {
		return nil, models.NewValidationError(msgValidationFailed, v...)
	}

	existing, err := s.users.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError(MsgUserExists)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		Name:         in.Name,
		PfpURL:       in.PfpURL,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if models.IsCode(err, models.CodeConflict) {
			return nil, models.NewConflictError(MsgUserExists)
		}
		return nil, err
	}
	return user, nil
}

// Signin looks the user up by username or email, verifies the password and
// issues a session token.
func (s *AuthService) Signin(ctx context.Context, in SigninInput) (string, *models.User, error) {
	ctx, span := observability.StartSpan(ctx, "service", "AuthService.Signin")
	token, user, err := s.signin(ctx, in)
	observability.EndSpan(span, unexpected(err))
	recordAuthEvent("signin", err)
	return token, user, err
}

func (s *AuthService) signin(ctx context.Context, in SigninInput) (string, *models.User, error) {
	if v := validation.Signin(validation.SigninInput{
		Email:    in.Email,
		Username: in.Username,
		Password: in.Password,
	}); len(v) > 0 {
		return "", nil, models.NewValidationError(msgValidationFailed, v...)
	}

	user, err := s.users.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		if s.unifiedErrors(in) {
			return "", nil, models.NewUnauthorizedError(MsgBadCredentials)
		}
		return "", nil, models.NewNotFoundMessage(MsgUserDoesNotExist)
	}
	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return "", nil, models.NewUnauthorizedError(MsgBadCredentials)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, models.NewInternalError(err)
	}
	return token, user, nil
}

func (s *AuthService) unifiedErrors(in SigninInput) bool {
	subject := in.Username
	if subject == "" {
		subject = in.Email
	}
	return s.flags.Enabled(featureflags.UnifiedAuthErrors, subject)
}

// UpdatePassword re-fetches the user, verifies the current password against
// the stored hash, validates the new one and stores its hash.
func (s *AuthService) UpdatePassword(ctx context.Context, in UpdatePasswordInput) error {
	ctx, span := observability.StartSpan(ctx, "service", "AuthService.UpdatePassword",
		attribute.String("user.id", in.UserID.String()))
	err := s.updatePassword(ctx, in)
	observability.EndSpan(span, unexpected(err))
	recordAuthEvent("update_password", err)
	return err
}

func (s *AuthService) updatePassword(ctx context.Context, in UpdatePasswordInput) error {
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(in.CurrentPassword, user.PasswordHash) {
		return models.NewUnauthorizedError(MsgInvalidPassword)
	}
	if v := validation.PasswordViolations(in.NewPassword); len(v) > 0 {
		return models.NewValidationError(msgValidationFailed, v...)
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.users.UpdatePassword(ctx, user.ID, hash)
}

func recordAuthEvent(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
		if appErr, ok := models.AsAppError(err); ok {
			outcome = appErr.Code
		}
	}
	observability.AuthEvents.WithLabelValues(operation, outcome).Inc()
}

// unexpected returns err only when it is not an expected client-facing
// outcome, so spans are marked as errors for internal failures only.
func unexpected(err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code != models.CodeInternal {
		return nil
	}
	return err
}
