package repository

import (
	"context"

	"projecthub/internal/observability"
	"projecthub/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const msgProjectExists = "project already exists"

// ProjectRepository defines persistence operations for projects.
type ProjectRepository interface {
	GetActiveByIdentifier(ctx context.Context, identifier string) (*models.Project, error)
	Create(ctx context.Context, project *models.Project) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Project, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type projectRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewProjectRepository returns a new ProjectRepository implementation.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db, logger: observability.NewRepoLogger("projects")}
}

// GetActiveByIdentifier returns the active project with identifier, or nil.
func (r *projectRepository) GetActiveByIdentifier(ctx context.Context, identifier string) (*models.Project, error) {
	defer observability.TrackQuery("get_active_by_identifier", "projects")()

	var project models.Project
	err := r.db.WithContext(ctx).
		Where("identifier = ? AND is_active = ?", identifier, true).
		First(&project).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &project, nil
}

// Create derives the identifier from the owner's username as stored in the
// same transaction, re-checks availability and inserts project. The owner row
// is locked on postgres so a concurrent rename either sees this project or
// runs first. The partial unique index on active identifiers turns a racing
// insert into a conflict.
func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	defer observability.TrackQuery("create", "projects")()

	project.IsActive = true
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owner, err := lockOwner(tx, project.OwnerID)
		if err != nil {
			return err
		}
		project.Identifier = models.ProjectIdentifier(owner.Username, project.Name)

		var taken int64
		if err := tx.Model(&models.Project{}).
			Where("identifier = ? AND is_active = ?", project.Identifier, true).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return models.NewConflictError(msgProjectExists)
		}
		return tx.Create(project).Error
	})
	if err != nil {
		r.logger.LogError(ctx, err, "create")
		return translateWriteError("projects", err, msgProjectExists)
	}
	r.logger.LogCreate(ctx, map[string]any{"project_id": project.ID.String(), "identifier": project.Identifier})
	return nil
}

// lockOwner reads the user row inside tx, holding a row lock where the
// dialect supports one. SQLite serializes writers on its own.
func lockOwner(tx *gorm.DB, id uuid.UUID) (*models.User, error) {
	q := tx.Select("id", "username").Where("id = ?", id)
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var owner models.User
	if err := q.First(&owner).Error; err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, err
	}
	return &owner, nil
}

// ListByOwner returns the owner's active projects, newest first.
func (r *projectRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Project, error) {
	defer observability.TrackQuery("list_by_owner", "projects")()

	var projects []models.Project
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return projects, nil
}

// SoftDelete marks the project inactive, which frees its identifier.
func (r *projectRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	defer observability.TrackQuery("soft_delete", "projects")()

	res := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Project", id)
	}
	r.logger.LogDelete(ctx, map[string]any{"project_id": id.String()})
	return nil
}
