package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"projecthub/internal/access"
	"projecthub/internal/cache"
	"projecthub/internal/repository"
	"projecthub/internal/testutil"
	"projecthub/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocate(t *testing.T) {
	assert.Equal(t, "alice/repo", Allocate("alice", "repo"))
}

func newProjectFixture(t *testing.T) (*ProjectService, *models.User, *models.User) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	users := repository.NewUserRepository(db, nil, 0)
	ctx := context.Background()

	alice := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "h"}
	bob := &models.User{Username: "bob1", Email: "bob@example.com", PasswordHash: "h"}
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, users.Create(ctx, bob))

	return NewProjectService(repository.NewProjectRepository(db), users), alice, bob
}

func TestProjectService_CheckAvailable(t *testing.T) {
	svc, alice, _ := newProjectFixture(t)
	ctx := context.Background()

	ok, err := svc.CheckAvailable(ctx, "alice", "repo")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Create(ctx, CreateProjectInput{OwnerID: alice.ID, Name: "repo"})
	require.NoError(t, err)

	ok, err = svc.CheckAvailable(ctx, "alice", "repo")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.CheckAvailableFor(ctx, alice.ID, "repo")
	require.NoError(t, err)
	assert.False(t, ok)

	// Same name under another owner is a different identifier.
	ok, err = svc.CheckAvailable(ctx, "bob1", "repo")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.SoftDelete(ctx, access.User(alice.ID), "repo"))
	ok, err = svc.CheckAvailable(ctx, "alice", "repo")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.CheckAvailable(ctx, "alice", " ")
	assertAppError(t, err, models.CodeValidation, MsgEnterName)
}

func TestProjectService_Create(t *testing.T) {
	svc, alice, _ := newProjectFixture(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateProjectInput{OwnerID: alice.ID, Name: "repo", Description: "d"})
	require.NoError(t, err)
	assert.Equal(t, "alice/repo", p.Identifier)
	assert.Equal(t, models.VisibilityPublic, p.Visibility)
	assert.True(t, p.IsActive)

	_, err = svc.Create(ctx, CreateProjectInput{OwnerID: alice.ID, Name: "repo"})
	assertAppError(t, err, models.CodeConflict, MsgExists)

	_, err = svc.Create(ctx, CreateProjectInput{OwnerID: alice.ID, Name: "bad/name", Visibility: "secret"})
	appErr := assertAppError(t, err, models.CodeValidation, "")
	assert.Len(t, appErr.Details, 2)

	_, err = svc.Create(ctx, CreateProjectInput{OwnerID: uuid.New(), Name: "orphan"})
	assertAppError(t, err, models.CodeNotFound, "")
}

func TestProjectService_CreateRaceBecomesConflict(t *testing.T) {
	repo := noopProjectRepo()
	repo.createFn = func(context.Context, *models.Project) error {
		return models.NewConflictError("project already exists")
	}
	svc := NewProjectService(repo, noopUserRepo())

	_, err := svc.Create(context.Background(), CreateProjectInput{OwnerID: uuid.New(), Name: "repo"})
	assertAppError(t, err, models.CodeConflict, MsgExists)
}

func TestProjectService_GetVisibility(t *testing.T) {
	svc, alice, bob := newProjectFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateProjectInput{OwnerID: alice.ID, Name: "open", Visibility: models.VisibilityPublic})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateProjectInput{OwnerID: alice.ID, Name: "closed", Visibility: models.VisibilityPrivate})
	require.NoError(t, err)

	tests := []struct {
		name    string
		caller  access.Caller
		project string
		code    string
	}{
		{"public anonymous", access.Anonymous(), "open", ""},
		{"public owner", access.User(alice.ID), "open", ""},
		{"public other", access.User(bob.ID), "open", ""},
		{"private owner", access.User(alice.ID), "closed", ""},
		{"private other", access.User(bob.ID), "closed", models.CodeForbidden},
		{"private anonymous", access.Anonymous(), "closed", models.CodeForbidden},
		{"missing", access.User(alice.ID), "nope", models.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := svc.Get(ctx, tt.caller, "alice", tt.project)
			if tt.code == "" {
				require.NoError(t, err)
				assert.Equal(t, "alice/"+tt.project, p.Identifier)
				return
			}
			assertAppError(t, err, tt.code, "")
			assert.Nil(t, p)
		})
	}
}

func TestProjectService_GetOwn(t *testing.T) {
	svc, alice, bob := newProjectFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateProjectInput{OwnerID: alice.ID, Name: "closed", Visibility: models.VisibilityPrivate})
	require.NoError(t, err)

	p, err := svc.GetOwn(ctx, access.User(alice.ID), "closed")
	require.NoError(t, err)
	assert.Equal(t, "alice/closed", p.Identifier)

	// bob1/closed does not exist.
	_, err = svc.GetOwn(ctx, access.User(bob.ID), "closed")
	assertAppError(t, err, models.CodeNotFound, MsgProjectNotFound)

	_, err = svc.GetOwn(ctx, access.Anonymous(), "closed")
	assertAppError(t, err, models.CodeNotFound, MsgProjectNotFound)
}

func TestProjectService_SoftDeleteRequiresOwner(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	project := &models.Project{ID: uuid.New(), Identifier: "alice/repo", OwnerID: owner, Visibility: models.VisibilityPublic, IsActive: true}

	repo := noopProjectRepo()
	repo.getActiveByIdentifierFn = func(context.Context, string) (*models.Project, error) { return project, nil }
	deleted := false
	repo.softDeleteFn = func(context.Context, uuid.UUID) error {
		deleted = true
		return nil
	}
	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uuid.UUID) (*models.User, error) {
		return &models.User{ID: id, Username: "alice"}, nil
	}
	svc := NewProjectService(repo, users)
	ctx := context.Background()

	err := svc.SoftDelete(ctx, access.User(stranger), "repo")
	assertAppError(t, err, models.CodeForbidden, MsgNoAccess)
	assert.False(t, deleted)

	err = svc.SoftDelete(ctx, access.Anonymous(), "repo")
	assertAppError(t, err, models.CodeForbidden, MsgNoAccess)

	require.NoError(t, svc.SoftDelete(ctx, access.User(owner), "repo"))
	assert.True(t, deleted)
}

func TestProjectService_CreateAfterRenameOnAnotherInstance(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	// Two instances with their own in-process caches over one database.
	usersA := repository.NewUserRepository(db, cache.NewStore(nil, time.Minute), time.Minute)
	usersB := repository.NewUserRepository(db, cache.NewStore(nil, time.Minute), time.Minute)
	svcA := NewProjectService(repository.NewProjectRepository(db), usersA)

	alice := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "h"}
	require.NoError(t, usersA.Create(ctx, alice))

	profile, err := usersA.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", profile.Username)

	_, err = usersB.UpdateProfile(ctx, alice.ID, repository.ProfileUpdate{Username: "alice2"})
	require.NoError(t, err)

	p, err := svcA.Create(ctx, CreateProjectInput{OwnerID: alice.ID, Name: "repo"})
	require.NoError(t, err)
	assert.Equal(t, "alice2/repo", p.Identifier)

	ok, err := svcA.CheckAvailableFor(ctx, alice.ID, "repo")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := svcA.GetOwn(ctx, access.User(alice.ID), "repo")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

// renamingUsers renames the owner right after a lookup returns.
type renamingUsers struct {
	repository.UserRepository
	rename func()
}

func (r *renamingUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := r.UserRepository.GetByID(ctx, id)
	r.rename()
	return u, err
}

func (r *renamingUsers) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p, err := r.UserRepository.GetProfile(ctx, id)
	r.rename()
	return p, err
}

// renamingProjects renames the owner just before the insert.
type renamingProjects struct {
	repository.ProjectRepository
	rename func()
}

func (r *renamingProjects) Create(ctx context.Context, project *models.Project) error {
	r.rename()
	return r.ProjectRepository.Create(ctx, project)
}

func TestProjectService_CreateRacingRename(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	base := repository.NewUserRepository(db, nil, 0)
	projects := repository.NewProjectRepository(db)

	alice := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "h"}
	require.NoError(t, base.Create(ctx, alice))

	var once sync.Once
	rename := func() {
		once.Do(func() {
			_, err := base.UpdateProfile(ctx, alice.ID, repository.ProfileUpdate{Username: "alice2"})
			require.NoError(t, err)
		})
	}
	svc := NewProjectService(
		&renamingProjects{ProjectRepository: projects, rename: rename},
		&renamingUsers{UserRepository: base, rename: rename},
	)

	p, err := svc.Create(ctx, CreateProjectInput{OwnerID: alice.ID, Name: "repo"})
	require.NoError(t, err)
	assert.Equal(t, "alice2/repo", p.Identifier)

	stored, err := projects.GetActiveByIdentifier(ctx, "alice2/repo")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, p.ID, stored.ID)

	stale, err := projects.GetActiveByIdentifier(ctx, "alice/repo")
	require.NoError(t, err)
	assert.Nil(t, stale)
}
