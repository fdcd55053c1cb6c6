package bootstrap

import (
	"context"
	"testing"
	"time"

	"projecthub/internal/auth"
	"projecthub/internal/config"
	"projecthub/internal/testutil"
	"projecthub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func devConfig(user string) *config.Config {
	return &config.Config{
		Env:          "development",
		DevBootstrap: user,
		BcryptCost:   4,
		UserCacheTTL: time.Minute,
	}
}

func TestParseDevUser(t *testing.T) {
	tests := []struct {
		raw      string
		username string
		password string
		wantErr  bool
	}{
		{raw: "dev:Secret1!", username: "dev", password: "Secret1!"},
		{raw: " dev :pa:ss", username: "dev", password: "pa:ss"},
		{raw: "dev", wantErr: true},
		{raw: ":Secret1!", wantErr: true},
		{raw: "dev:", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			username, password, err := ParseDevUser(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.username, username)
			assert.Equal(t, tt.password, password)
		})
	}
}

func TestEnsureDevUser_CreatesOnce(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	cfg := devConfig("devuser:Secret1!")

	require.NoError(t, EnsureDevUser(ctx, cfg, db))
	require.NoError(t, EnsureDevUser(ctx, cfg, db))

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "devuser", users[0].Username)
	assert.Equal(t, "devuser@projecthub.local", users[0].Email)
	assert.True(t, auth.NewHasher(4).Verify("Secret1!", users[0].PasswordHash))
}

func TestEnsureDevUser_Skipped(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	cfg := devConfig("devuser:Secret1!")
	cfg.Env = "production"
	require.NoError(t, EnsureDevUser(ctx, cfg, db))

	require.NoError(t, EnsureDevUser(ctx, devConfig(""), db))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEnsureDevUser_Malformed(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	err := EnsureDevUser(context.Background(), devConfig("no-password"), db)
	assert.Error(t, err)
}
