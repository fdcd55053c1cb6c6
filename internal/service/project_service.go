package service

import (
	"context"
	"strings"

	"projecthub/internal/access"
	"projecthub/internal/observability"
	"projecthub/internal/repository"
	"projecthub/internal/validation"
	"projecthub/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Messages returned by project operations.
const (
	MsgNoAccess        = "no access"
	MsgProjectNotFound = "project not found"
	MsgEnterName       = "enter a project name"
	MsgProjectDeleted  = "project deleted"
)

type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// CreateProjectInput describes a new project owned by OwnerID.
type CreateProjectInput struct {
	OwnerID     uuid.UUID         `json:"-"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Visibility  models.Visibility `json:"visibility"`
}

func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *ProjectService {
	return &ProjectService{projectRepo: projectRepo, userRepo: userRepo}
}

// Allocate returns the identifier a project named name gets under owner.
func Allocate(owner, name string) string {
	return models.ProjectIdentifier(owner, name)
}

// CheckAvailable reports whether no active project holds owner/name.
func (s *ProjectService) CheckAvailable(ctx context.Context, owner, name string) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, models.NewValidationError(MsgEnterName)
	}
	p, err := s.projectRepo.GetActiveByIdentifier(ctx, Allocate(owner, name))
	if err != nil {
		return false, err
	}
	return p == nil, nil
}

// CheckAvailableFor is CheckAvailable with the owner resolved from a user id.
func (s *ProjectService) CheckAvailableFor(ctx context.Context, userID uuid.UUID, name string) (bool, error) {
	owner, err := s.ownerName(ctx, userID)
	if err != nil {
		return false, err
	}
	return s.CheckAvailable(ctx, owner, name)
}

// Create validates the name and visibility and stores the project. The
// identifier is derived from the owner's username inside the storage
// transaction, where availability is re-checked; a racing duplicate surfaces
// as a conflict.
func (s *ProjectService) Create(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
	ctx, span := observability.StartSpan(ctx, "service", "ProjectService.Create",
		attribute.String("project.name", in.Name))
	p, err := s.create(ctx, in)
	observability.EndSpan(span, unexpected(err))
	return p, err
}

func (s *ProjectService) create(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
	v := validation.ProjectNameViolations(in.Name)
	if in.Visibility == "" {
		in.Visibility = models.VisibilityPublic
	}
	if !in.Visibility.Valid() {
		v = append(v, "Visibility must be public or private")
	}
	if len(v) > 0 {
		return nil, models.NewValidationError(msgValidationFailed, v...)
	}

	project := &models.Project{
		Name:        in.Name,
		Description: in.Description,
		OwnerID:     in.OwnerID,
		Visibility:  in.Visibility,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		if models.IsCode(err, models.CodeConflict) {
			return nil, models.NewConflictError(MsgExists)
		}
		return nil, err
	}
	return project, nil
}

// Get returns the active project owner/name when caller may read it.
func (s *ProjectService) Get(ctx context.Context, caller access.Caller, owner, name string) (*models.Project, error) {
	p, err := s.projectRepo.GetActiveByIdentifier(ctx, Allocate(owner, name))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, models.NewNotFoundMessage(MsgProjectNotFound)
	}

	decision := access.CanRead(caller, p)
	observability.RecordAccess(ctx, "read", decision.Effect.String(), decision.Reason)
	if !decision.Allowed() {
		return nil, models.NewForbiddenError(MsgNoAccess)
	}
	return p, nil
}

// GetOwn resolves name against the caller's own username. Anonymous callers
// have no namespace, so nothing is found.
func (s *ProjectService) GetOwn(ctx context.Context, caller access.Caller, name string) (*models.Project, error) {
	if !caller.Authenticated {
		return nil, models.NewNotFoundMessage(MsgProjectNotFound)
	}
	owner, err := s.ownerName(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, caller, owner, name)
}

// List returns the active projects owned by ownerID.
func (s *ProjectService) List(ctx context.Context, ownerID uuid.UUID) ([]models.Project, error) {
	return s.projectRepo.ListByOwner(ctx, ownerID)
}

// SoftDelete deactivates the caller's project name, freeing its identifier.
func (s *ProjectService) SoftDelete(ctx context.Context, caller access.Caller, name string) error {
	if !caller.Authenticated {
		return models.NewForbiddenError(MsgNoAccess)
	}
	owner, err := s.ownerName(ctx, caller.UserID)
	if err != nil {
		return err
	}
	p, err := s.projectRepo.GetActiveByIdentifier(ctx, Allocate(owner, name))
	if err != nil {
		return err
	}
	if p == nil {
		return models.NewNotFoundMessage(MsgProjectNotFound)
	}

	decision := access.CanWrite(caller, p)
	observability.RecordAccess(ctx, "write", decision.Effect.String(), decision.Reason)
	if !decision.Allowed() {
		return models.NewForbiddenError(MsgNoAccess)
	}
	return s.projectRepo.SoftDelete(ctx, p.ID)
}

// ownerName reads the username from storage. Cached profiles may lag a rename
// made through another instance.
func (s *ProjectService) ownerName(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}
