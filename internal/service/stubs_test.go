package service

import (
	"context"
	"testing"

	"projecthub/internal/repository"
	"projecthub/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userRepoStub struct {
	getByIDFn               func(context.Context, uuid.UUID) (*models.User, error)
	getProfileFn            func(context.Context, uuid.UUID) (*models.Profile, error)
	existsFn                func(context.Context, uuid.UUID) (bool, error)
	findByUsernameOrEmailFn func(context.Context, string, string) (*models.User, error)
	getByUsernameFn         func(context.Context, string) (*models.User, error)
	createFn                func(context.Context, *models.User) error
	updatePasswordFn        func(context.Context, uuid.UUID, string) error
	updateProfileFn         func(context.Context, uuid.UUID, repository.ProfileUpdate) (*models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return s.getProfileFn(ctx, id)
}
func (s *userRepoStub) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *userRepoStub) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	return s.findByUsernameOrEmailFn(ctx, username, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return s.updatePasswordFn(ctx, id, hash)
}
func (s *userRepoStub) UpdateProfile(ctx context.Context, id uuid.UUID, update repository.ProfileUpdate) (*models.User, error) {
	return s.updateProfileFn(ctx, id, update)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:               func(_ context.Context, id uuid.UUID) (*models.User, error) { return &models.User{ID: id}, nil },
		getProfileFn:            func(_ context.Context, id uuid.UUID) (*models.Profile, error) { return &models.Profile{ID: id}, nil },
		existsFn:                func(context.Context, uuid.UUID) (bool, error) { return true, nil },
		findByUsernameOrEmailFn: func(context.Context, string, string) (*models.User, error) { return nil, nil },
		getByUsernameFn:         func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:                func(context.Context, *models.User) error { return nil },
		updatePasswordFn:        func(context.Context, uuid.UUID, string) error { return nil },
		updateProfileFn: func(_ context.Context, id uuid.UUID, u repository.ProfileUpdate) (*models.User, error) {
			return &models.User{ID: id, Username: u.Username, Name: u.Name, PfpURL: u.PfpURL, Bio: u.Bio}, nil
		},
	}
}

type projectRepoStub struct {
	getActiveByIdentifierFn func(context.Context, string) (*models.Project, error)
	createFn                func(context.Context, *models.Project) error
	listByOwnerFn           func(context.Context, uuid.UUID) ([]models.Project, error)
	softDeleteFn            func(context.Context, uuid.UUID) error
}

func (s *projectRepoStub) GetActiveByIdentifier(ctx context.Context, identifier string) (*models.Project, error) {
	return s.getActiveByIdentifierFn(ctx, identifier)
}
func (s *projectRepoStub) Create(ctx context.Context, p *models.Project) error {
	return s.createFn(ctx, p)
}
func (s *projectRepoStub) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Project, error) {
	return s.listByOwnerFn(ctx, ownerID)
}
func (s *projectRepoStub) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return s.softDeleteFn(ctx, id)
}

func noopProjectRepo() *projectRepoStub {
	return &projectRepoStub{
		getActiveByIdentifierFn: func(context.Context, string) (*models.Project, error) { return nil, nil },
		createFn:                func(context.Context, *models.Project) error { return nil },
		listByOwnerFn:           func(context.Context, uuid.UUID) ([]models.Project, error) { return nil, nil },
		softDeleteFn:            func(context.Context, uuid.UUID) error { return nil },
	}
}

type commitRepoStub struct {
	createFn        func(context.Context, *models.Commit) error
	listByAuthorFn  func(context.Context, uuid.UUID, int) ([]models.Commit, error)
	countByAuthorFn func(context.Context, uuid.UUID) (int64, error)
}

func (s *commitRepoStub) Create(ctx context.Context, c *models.Commit) error {
	return s.createFn(ctx, c)
}
func (s *commitRepoStub) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]models.Commit, error) {
	return s.listByAuthorFn(ctx, authorID, limit)
}
func (s *commitRepoStub) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	return s.countByAuthorFn(ctx, authorID)
}

// plainHasher stands in for bcrypt where the cost would only slow tests down.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }
func (plainHasher) Verify(p, h string) bool { return h == "hashed:"+p }

type fixedTokens struct{ token string }

func (f fixedTokens) Issue(uuid.UUID) (string, error) { return f.token, nil }

func assertAppError(t *testing.T, err error, code, message string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := models.AsAppError(err)
	require.True(t, ok, "expected *models.AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
	return appErr
}
