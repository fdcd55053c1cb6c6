package service

import (
	"context"

	"projecthub/internal/repository"
	"projecthub/models"

	"github.com/google/uuid"
)

// RecentCommitLimit is how many commits the dashboard highlights.
const RecentCommitLimit = 5

// ProjectSummary lists a user's active projects.
type ProjectSummary struct {
	Projects []models.Project `json:"projects"`
	Total    int              `json:"total"`
}

// CommitSummary lists a user's commits with the most recent ones split out.
type CommitSummary struct {
	Commits []models.Commit `json:"commits"`
	Total   int64           `json:"total"`
	Recent  []models.Commit `json:"recent"`
}

type DashboardService struct {
	projectRepo repository.ProjectRepository
	commitRepo  repository.CommitRepository
}

func NewDashboardService(projectRepo repository.ProjectRepository, commitRepo repository.CommitRepository) *DashboardService {
	return &DashboardService{projectRepo: projectRepo, commitRepo: commitRepo}
}

func (s *DashboardService) Projects(ctx context.Context, userID uuid.UUID) (*ProjectSummary, error) {
	projects, err := s.projectRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return &ProjectSummary{Projects: projects, Total: len(projects)}, nil
}

func (s *DashboardService) Commits(ctx context.Context, userID uuid.UUID) (*CommitSummary, error) {
	total, err := s.commitRepo.CountByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	commits, err := s.commitRepo.ListByAuthor(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	if commits == nil {
		commits = []models.Commit{}
	}

	recent := commits
	if len(recent) > RecentCommitLimit {
		recent = recent[:RecentCommitLimit]
	}
	return &CommitSummary{Commits: commits, Total: total, Recent: recent}, nil
}
