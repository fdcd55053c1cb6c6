package repository

import (
	"context"

	"projecthub/internal/observability"
	"projecthub/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommitRepository defines persistence operations for commits.
type CommitRepository interface {
	Create(ctx context.Context, commit *models.Commit) error
	ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]models.Commit, error)
	CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error)
}

type commitRepository struct {
	db *gorm.DB
}

// NewCommitRepository returns a new CommitRepository implementation.
func NewCommitRepository(db *gorm.DB) CommitRepository {
	return &commitRepository{db: db}
}

func (r *commitRepository) Create(ctx context.Context, commit *models.Commit) error {
	defer observability.TrackQuery("create", "commits")()

	if err := r.db.WithContext(ctx).Create(commit).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListByAuthor returns the author's commits on active projects, newest first.
// A non-positive limit returns all of them.
func (r *commitRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]models.Commit, error) {
	defer observability.TrackQuery("list_by_author", "commits")()

	q := r.activeByAuthor(ctx, authorID).Order("commits.created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var commits []models.Commit
	if err := q.Find(&commits).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return commits, nil
}

func (r *commitRepository) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	defer observability.TrackQuery("count_by_author", "commits")()

	var n int64
	if err := r.activeByAuthor(ctx, authorID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *commitRepository) activeByAuthor(ctx context.Context, authorID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Commit{}).
		Joins("JOIN projects ON projects.id = commits.project_id").
		Where("commits.author_id = ? AND projects.is_active = ?", authorID, true)
}
