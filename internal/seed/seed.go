// Package seed fills a development database with fake users, projects and
// commits. It writes through the repositories, so seeded rows obey the same
// uniqueness rules as API traffic.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"projecthub/internal/auth"
	"projecthub/internal/cache"
	"projecthub/internal/middleware"
	"projecthub/internal/repository"
	"projecthub/internal/validation"
	"projecthub/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded user signs in with.
const DefaultPassword = "Password1!"

// Options configures a seeding run.
type Options struct {
	Users             int
	ProjectsPerUser   int
	CommitsPerProject int
	// PrivateEvery makes every n-th project private. Zero keeps all public.
	PrivateEvery int
	// MaxDays bounds how far back commit timestamps are spread.
	MaxDays int
	// Seed makes the generated data reproducible. Zero uses the clock.
	Seed int64
}

// Result summarizes what a run created.
type Result struct {
	Users    []models.User
	Projects []models.Project
	Commits  int
}

// Seeder creates fake data through the repositories.
type Seeder struct {
	db       *gorm.DB
	users    repository.UserRepository
	projects repository.ProjectRepository
	commits  repository.CommitRepository
	hasher   *auth.Hasher
}

var (
	usernameStrip = regexp.MustCompile(`[^a-z0-9_.-]`)
	projectStrip  = regexp.MustCompile(`[^a-z0-9._-]`)
)

// NewSeeder binds a seeder to db. hasher hashes DefaultPassword once per run.
func NewSeeder(db *gorm.DB, hasher *auth.Hasher) *Seeder {
	return &Seeder{
		db:       db,
		users:    repository.NewUserRepository(db, cache.NewStore(nil, time.Minute), time.Minute),
		projects: repository.NewProjectRepository(db),
		commits:  repository.NewCommitRepository(db),
		hasher:   hasher,
	}
}

// Run creates opts.Users users, each with opts.ProjectsPerUser projects
// holding opts.CommitsPerProject commits.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	faker := gofakeit.New(seed)
	maxDays := opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}

	middleware.Logger.Info("seeding database",
		slog.Int("users", opts.Users),
		slog.Int("projects_per_user", opts.ProjectsPerUser),
		slog.Int("commits_per_project", opts.CommitsPerProject),
	)

	hash, err := s.hasher.Hash(DefaultPassword)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	res := &Result{}
	taken := make(map[string]bool, opts.Users)
	for i := 0; i < opts.Users; i++ {
		username := Username(faker, taken)
		user := &models.User{
			Username:     username,
			Email:        username + "@" + faker.DomainName(),
			PasswordHash: hash,
			Name:         displayName(faker),
			Bio:          faker.HipsterSentence(8),
			PfpURL:       fmt.Sprintf("https://i.pravatar.cc/150?u=%s", faker.UUID()),
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user %s: %w", username, err)
		}
		res.Users = append(res.Users, *user)

		names := make(map[string]bool, opts.ProjectsPerUser)
		for j := 0; j < opts.ProjectsPerUser; j++ {
			visibility := models.VisibilityPublic
			if opts.PrivateEvery > 0 && (len(res.Projects)+1)%opts.PrivateEvery == 0 {
				visibility = models.VisibilityPrivate
			}
			name := ProjectName(faker, names)
			project := &models.Project{
				Name:        name,
				Description: faker.Sentence(10),
				OwnerID:     user.ID,
				Visibility:  visibility,
			}
			if err := s.projects.Create(ctx, project); err != nil {
				return nil, fmt.Errorf("create project %s/%s: %w", username, name, err)
			}
			res.Projects = append(res.Projects, *project)

			for k := 0; k < opts.CommitsPerProject; k++ {
				commit := &models.Commit{
					ProjectID: project.ID,
					AuthorID:  user.ID,
					Message:   faker.HackerPhrase(),
					Hash:      faker.Regex("[0-9a-f]{40}"),
					CreatedAt: spreadBack(faker, maxDays),
				}
				if err := s.commits.Create(ctx, commit); err != nil {
					return nil, fmt.Errorf("create commit for %s: %w", project.Identifier, err)
				}
				res.Commits++
			}
		}
	}

	middleware.Logger.Info("seeding complete",
		slog.Int("users", len(res.Users)),
		slog.Int("projects", len(res.Projects)),
		slog.Int("commits", res.Commits),
	)
	return res, nil
}

// ClearAll removes every commit, project and user.
func (s *Seeder) ClearAll(ctx context.Context) error {
	middleware.Logger.Info("clearing existing data")
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []any{&models.Commit{}, &models.Project{}, &models.User{}} {
			if err := all.Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Username returns a fresh valid username not present in taken and records it.
func Username(faker *gofakeit.Faker, taken map[string]bool) string {
	for {
		base := usernameStrip.ReplaceAllString(strings.ToLower(faker.Username()), "")
		if len(base) > validation.UsernameMaxLength-3 {
			base = base[:validation.UsernameMaxLength-3]
		}
		if base == "" {
			base = "user"
		}
		name := fmt.Sprintf("%s%d", base, faker.Number(100, 999))
		if !taken[name] {
			taken[name] = true
			return name
		}
	}
}

// ProjectName returns a valid project name not present in taken and records it.
func ProjectName(faker *gofakeit.Faker, taken map[string]bool) string {
	base := strings.ReplaceAll(strings.ToLower(faker.AppName()), " ", "-")
	base = projectStrip.ReplaceAllString(base, "")
	if base == "" {
		base = "project"
	}
	name := base
	for n := 2; taken[name]; n++ {
		name = fmt.Sprintf("%s-%d", base, n)
	}
	taken[name] = true
	return name
}

func displayName(faker *gofakeit.Faker) string {
	name := faker.Name()
	if len(name) > validation.NameMaxLength {
		name = strings.TrimSpace(name[:validation.NameMaxLength])
	}
	return name
}

func spreadBack(faker *gofakeit.Faker, maxDays int) time.Time {
	back := time.Duration(faker.Number(0, maxDays*24*60)) * time.Minute
	return time.Now().Add(-back)
}
