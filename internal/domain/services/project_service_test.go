package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/researchmem/researchmem/internal/domain/repositories"
	"github.com/researchmem/researchmem/internal/domain/statemachine"
	"github.com/researchmem/researchmem/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.db.CreateTestUser(t)

	project, err := env.projects.Create(ctx, user.ID, CreateProjectParams{
		Name:        "Literature Review",
		Description: "Papers for chapter two",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusDraft, project.Status)
	assert.NotEmpty(t, project.Slug)
	assert.False(t, project.IsDeleted)
}

func TestProjectService_Create_SlugsNeverCollide(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.db.CreateTestUser(t)

	slugs := make(map[string]bool)
	for i := 0; i < 3; i++ {
		project, err := env.projects.Create(ctx, user.ID, CreateProjectParams{Name: "Same Name"})
		require.NoError(t, err)
		assert.False(t, slugs[project.Slug], "slug %s seen twice", project.Slug)
		slugs[project.Slug] = true
	}
}

func TestProjectService_Create_InvalidStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.db.CreateTestUser(t)

	_, err := env.projects.Create(ctx, user.ID, CreateProjectParams{
		Name:   "Broken",
		Status: models.ProjectStatus("bogus"),
	})
	assert.True(t, IsValidation(err))
}

func TestProjectService_BulkCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.db.CreateTestUser(t)

	created, err := env.projects.BulkCreate(ctx, user.ID, BulkCreateParams{
		BaseName: "sprint",
		Count:    5,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, created)

	result, err := env.projects.List(ctx, user.ID, repositories.ProjectFilters{})
	require.NoError(t, err)
	require.Len(t, result.Projects, 5)

	names := make(map[string]bool)
	slugs := make(map[string]bool)
	for _, p := range result.Projects {
		names[p.Name] = true
		assert.False(t, slugs[p.Slug], "slug %s seen twice", p.Slug)
		slugs[p.Slug] = true
	}
	for i := 1; i <= 5; i++ {
		assert.True(t, names[fmt.Sprintf("sprint_%d", i)], "missing sprint_%d", i)
	}
}

func TestProjectService_BulkCreate_CountBounds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.db.CreateTestUser(t)

	_, err := env.projects.BulkCreate(ctx, user.ID, BulkCreateParams{BaseName: "x", Count: 0})
	assert.True(t, IsValidation(err))

	_, err = env.projects.BulkCreate(ctx, user.ID, BulkCreateParams{BaseName: "x", Count: MaxBulkCreateCount + 1})
	assert.True(t, IsValidation(err))
}

func TestProjectService_BulkCreate_SingleKeepsBaseName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.db.CreateTestUser(t)

	created, err := env.projects.BulkCreate(ctx, user.ID, BulkCreateParams{BaseName: "solo", Count: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	result, err := env.projects.List(ctx, user.ID, repositories.ProjectFilters{})
	require.NoError(t, err)
	require.Len(t, result.Projects, 1)
	assert.Equal(t, "solo", result.Projects[0].Name)
}

func TestProjectService_Toggles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.db.CreateTestUser(t)
	project := env.db.CreateTestProject(t, user)

	p, err := env.projects.TogglePin(ctx, user.ID, project.ID)
	require.NoError(t, err)
	assert.True(t, p.IsPinned)

	p, err = env.projects.TogglePin(ctx, user.ID, project.ID)
	require.NoError(t, err)
	assert.False(t, p.IsPinned)

	p, err = env.projects.ToggleFavorite(ctx, user.ID, project.ID)
	require.NoError(t, err)
	assert.True(t, p.IsFavorite)

	p, err = env.projects.ToggleShare(ctx, user.ID, project.ID)
	require.NoError(t, err)
	assert.True(t, p.IsShared)
}

func TestProjectService_StatusLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.db.CreateTestUser(t)
	project := env.db.CreateTestProject(t, user)

	p, err := env.projects.Publish(ctx, user.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusPublished, p.Status)

	// published -> archived is not a legal transition.
	_, err = env.projects.UpdateStatus(ctx, user.ID, project.ID, models.ProjectStatusArchived)
	var invalid *statemachine.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)

	p, err = env.projects.Unpublish(ctx, user.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusDraft, p.Status)

	p, err = env.projects.Archive(ctx, user.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusArchived, p.Status)
	assert.True(t, p.IsArchived)

	p, err = env.projects.Unarchive(ctx, user.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusDraft, p.Status)
	assert.False(t, p.IsArchived)
}

func TestProjectService_SoftDelete_HidesEverywhere(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.db.CreateTestUser(t)
	project := env.db.CreateTestProject(t, user)

	// Flag it every way a listing could surface it.
	_, err := env.projects.TogglePin(ctx, user.ID, project.ID)
	require.NoError(t, err)
	_, err = env.projects.ToggleFavorite(ctx, user.ID, project.ID)
	require.NoError(t, err)

	require.NoError(t, env.projects.SoftDelete(ctx, user.ID, project.ID))

	result, err := env.projects.List(ctx, user.ID, repositories.ProjectFilters{})
	require.NoError(t, err)
	assert.Empty(t, result.Projects)

	pinned, err := env.projects.Pinned(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, pinned.Projects)

	favorites, err := env.projects.Favorites(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, favorites.Projects)

	_, err = env.projects.Get(ctx, user.ID, project.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectService_Get_NotOwned(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.db.CreateTestUser(t)
	stranger := env.db.CreateTestUser(t)
	project := env.db.CreateTestProject(t, owner)

	_, err := env.projects.Get(ctx, stranger.ID, project.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectService_List_CacheInvalidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.db.CreateTestUser(t)
	env.db.CreateTestProject(t, user)

	first, err := env.projects.List(ctx, user.ID, repositories.ProjectFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Total)

	key := fmt.Sprintf(ProjectListKeyPattern, user.ID)
	cached, err := env.cache.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, cached)

	// A mutation drops the cached listing; the next read sees the new row.
	_, err = env.projects.Create(ctx, user.ID, CreateProjectParams{Name: "Fresh"})
	require.NoError(t, err)

	cached, err = env.cache.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, cached)

	second, err := env.projects.List(ctx, user.ID, repositories.ProjectFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Total)
}

func TestProjectService_UpdateStatus_NotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.db.CreateTestUser(t)

	_, err := env.projects.UpdateStatus(ctx, user.ID, uuid.New(), models.ProjectStatusPublished)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}
