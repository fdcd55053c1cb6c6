// Package bootstrap connects the runtime dependencies shared by the server
// and the command line tools.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"projecthub/internal/auth"
	"projecthub/internal/cache"
	"projecthub/internal/config"
	"projecthub/internal/database"
	"projecthub/internal/middleware"
	"projecthub/internal/repository"
	"projecthub/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const devEmailDomain = "projecthub.local"

// InitRuntime connects to the database, applies the schema, opens Redis when
// configured and ensures the development bootstrap user. The Redis client is
// nil when REDIS_URL is empty.
func InitRuntime(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	var r *redis.Client
	if cfg.RedisURL != "" {
		r = cache.InitRedis(ctx, cfg.RedisURL)
	}

	if err := EnsureDevUser(ctx, cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development user: %w", err)
	}

	return db, r, nil
}

// ParseDevUser splits a DEV_BOOTSTRAP_USER value of the form
// "username:password".
func ParseDevUser(raw string) (username, password string, err error) {
	username, password, ok := strings.Cut(strings.TrimSpace(raw), ":")
	username = strings.TrimSpace(username)
	if !ok || username == "" || password == "" {
		return "", "", fmt.Errorf("DEV_BOOTSTRAP_USER must look like username:password")
	}
	return username, password, nil
}

// EnsureDevUser creates the account named by DEV_BOOTSTRAP_USER when running
// in development. An existing account with that username is left untouched.
func EnsureDevUser(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || cfg.DevBootstrap == "" {
		return nil
	}

	username, password, err := ParseDevUser(cfg.DevBootstrap)
	if err != nil {
		return err
	}

	users := repository.NewUserRepository(db, cache.NewStore(nil, cfg.UserCacheTTL), cfg.UserCacheTTL)
	existing, err := users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := auth.NewHasher(cfg.BcryptCost).Hash(password)
	if err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        strings.ToLower(username) + "@" + devEmailDomain,
		PasswordHash: hash,
	}
	if err := users.Create(ctx, user); err != nil {
		return err
	}

	middleware.Logger.Info("development bootstrap user ensured",
		slog.String("username", username),
		slog.String("user_id", user.ID.String()),
	)
	return nil
}
