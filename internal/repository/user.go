package repository

import (
	"context"
	"time"

	"projecthub/internal/cache"
	"projecthub/internal/observability"
	"projecthub/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	msgUserExists    = "user already exists"
	msgUsernameTaken = "username already taken"
)

// ProfileUpdate holds the mutable descriptive fields of a user.
type ProfileUpdate struct {
	Username string
	Name     string
	PfpURL   string
	Bio      string
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*models.User, error)
}

type userRepository struct {
	db     *gorm.DB
	cache  *cache.Store
	ttl    time.Duration
	logger *observability.RepoLogger
}

// NewUserRepository returns a new UserRepository implementation. store may
// be nil, in which case profile lookups always hit the database.
func NewUserRepository(db *gorm.DB, store *cache.Store, ttl time.Duration) UserRepository {
	if ttl <= 0 {
		ttl = cache.UserTTL
	}
	return &userRepository{
		db:     db,
		cache:  store,
		ttl:    ttl,
		logger: observability.NewRepoLogger("users"),
	}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	defer observability.TrackQuery("get_by_id", "users")()

	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetProfile returns the non-secret view of a user, through the cache when
// one is configured. Password hashes never enter the cache.
func (r *userRepository) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	fetch := func(ctx context.Context) (any, error) {
		user, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return user.Profile(), nil
	}

	var profile models.Profile
	if r.cache == nil {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		profile = v.(models.Profile)
		return &profile, nil
	}

	if err := r.cache.Aside(ctx, cache.UserKey(id), &profile, r.ttl, fetch); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *userRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := r.GetProfile(ctx, id)
	if err == nil {
		return true, nil
	}
	if models.IsCode(err, models.CodeNotFound) {
		return false, nil
	}
	return false, err
}

// FindByUsernameOrEmail returns the user matching either value, or nil when
// none does. Empty values are ignored.
func (r *userRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	if username == "" && email == "" {
		return nil, nil
	}
	defer observability.TrackQuery("find_by_username_or_email", "users")()

	q := r.db.WithContext(ctx)
	switch {
	case username != "" && email != "":
		q = q.Where("username = ? OR email = ?", username, email)
	case username != "":
		q = q.Where("username = ?", username)
	default:
		q = q.Where("email = ?", email)
	}

	var user models.User
	if err := q.First(&user).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	defer observability.TrackQuery("get_by_username", "users")()

	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// Create inserts user. A unique violation on username or email is returned
// as a conflict.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("create", "users")()

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		r.logger.LogError(ctx, err, "create")
		return translateWriteError("users", err, msgUserExists)
	}
	r.logger.LogCreate(ctx, map[string]any{"user_id": user.ID.String()})
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	defer observability.TrackQuery("update_password", "users")()

	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Update("password_hash", passwordHash)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	r.logger.LogUpdate(ctx, map[string]any{"user_id": id.String(), "field": "password_hash"})
	return nil
}

// UpdateProfile applies update and rewrites the identifier of every project
// the user owns, in one transaction. A username already held by another user
// yields a conflict.
func (r *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*models.User, error) {
	defer observability.TrackQuery("update_profile", "users")()

	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("id = ?", id)
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&user).Error; err != nil {
			if isNotFound(err) {
				return models.NewNotFoundError("User", id)
			}
			return err
		}

		var holders int64
		if err := tx.Model(&models.User{}).
			Where("username = ? AND id <> ?", update.Username, id).
			Count(&holders).Error; err != nil {
			return err
		}
		if holders > 0 {
			return models.NewConflictError(msgUsernameTaken)
		}

		renamed := user.Username != update.Username
		if err := tx.Model(&user).Updates(map[string]any{
			"username": update.Username,
			"name":     update.Name,
			"pfp_url":  update.PfpURL,
			"bio":      update.Bio,
		}).Error; err != nil {
			return err
		}
		user.Username = update.Username
		user.Name = update.Name
		user.PfpURL = update.PfpURL
		user.Bio = update.Bio

		if renamed {
			if err := tx.Model(&models.Project{}).
				Where("owner_id = ?", id).
				Update("identifier", gorm.Expr("? || '/' || name", update.Username)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, translateWriteError("users", err, msgUsernameTaken)
	}

	if r.cache != nil {
		r.cache.Invalidate(ctx, cache.UserKey(id))
	}
	r.logger.LogUpdate(ctx, map[string]any{"user_id": id.String()})
	return &user, nil
}
