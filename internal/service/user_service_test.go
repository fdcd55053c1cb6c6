package service

import (
	"context"
	"strings"
	"testing"

	"projecthub/internal/repository"
	"projecthub/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_UpdateProfile_Validation(t *testing.T) {
	t.Parallel()

	t.Run("username too long", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.updateProfileFn = func(context.Context, uuid.UUID, repository.ProfileUpdate) (*models.User, error) {
			t.Fatal("invalid input must not reach storage")
			return nil, nil
		}
		svc := NewUserService(repo)
		_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
			UserID:   uuid.New(),
			Username: strings.Repeat("x", 16),
		})
		assertAppError(t, err, models.CodeValidation, "")
	})

	t.Run("name too short", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo())
		_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
			UserID:   uuid.New(),
			Username: "alice",
			Name:     "Al",
		})
		assertAppError(t, err, models.CodeValidation, "")
	})
}

func TestUserService_UpdateProfile_Conflict(t *testing.T) {
	t.Parallel()
	repo := noopUserRepo()
	repo.updateProfileFn = func(context.Context, uuid.UUID, repository.ProfileUpdate) (*models.User, error) {
		return nil, models.NewConflictError(MsgUsernameTaken)
	}
	svc := NewUserService(repo)

	_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: uuid.New(), Username: "taken"})
	assertAppError(t, err, models.CodeConflict, MsgUsernameTaken)
}

func TestUserService_UpdateProfile_ReturnsProfile(t *testing.T) {
	t.Parallel()
	id := uuid.New()
	var got repository.ProfileUpdate
	repo := noopUserRepo()
	repo.updateProfileFn = func(_ context.Context, _ uuid.UUID, u repository.ProfileUpdate) (*models.User, error) {
		got = u
		return &models.User{ID: id, Username: u.Username, Bio: u.Bio, PasswordHash: "secret"}, nil
	}
	svc := NewUserService(repo)

	profile, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: id, Username: "alicia", Bio: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "alicia", got.Username)
	assert.Equal(t, "alicia", profile.Username)
	assert.Equal(t, "hello", profile.Bio)
}

func TestUserService_UsernameAvailable(t *testing.T) {
	t.Parallel()
	repo := noopUserRepo()
	repo.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
		if username == "alice" {
			return &models.User{Username: "alice"}, nil
		}
		return nil, nil
	}
	svc := NewUserService(repo)
	ctx := context.Background()

	ok, err := svc.UsernameAvailable(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.UsernameAvailable(ctx, "bobby")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.UsernameAvailable(ctx, "")
	assertAppError(t, err, models.CodeValidation, MsgEnterUsername)
}
