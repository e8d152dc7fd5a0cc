package postgresql

import (
	"context"
	"testing"

	"github.com/researchmem/researchmem/internal/domain/repositories"
	"github.com/researchmem/researchmem/internal/infrastructure/database/models"
	"github.com/researchmem/researchmem/internal/infrastructure/repositories/postgresql/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectRepository_Create(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewProjectRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)

	project := &models.Project{
		UserID:      user.ID,
		Slug:        "thesis-notes-1a2b3c4d",
		Name:        "Thesis Notes",
		Description: "Collected notes for the thesis",
		Status:      models.ProjectStatusDraft,
	}

	err := repo.Create(ctx, project)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, project.ID)
	assert.False(t, project.IsDeleted)
}

func TestProjectRepository_BulkInsert(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewProjectRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)

	batch := make([]models.Project, 3)
	for i := range batch {
		id := uuid.New()
		batch[i] = models.Project{
			ID:     id,
			UserID: user.ID,
			Slug:   "batch-" + id.String()[:8],
			Name:   "Batch Project",
			Status: models.ProjectStatusDraft,
		}
	}

	require.NoError(t, repo.BulkInsert(ctx, batch))

	_, total, err := repo.List(ctx, user.ID, repositories.ProjectFilters{
		ListParams: repositories.ListParams{Page: 1, PageSize: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestProjectRepository_GetByID_ExcludesSoftDeleted(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewProjectRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)
	project := db.CreateTestProject(t, user)

	project.IsDeleted = true
	require.NoError(t, repo.Update(ctx, project))

	_, err := repo.GetByID(ctx, user.ID, project.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectRepository_GetByID_WrongOwner(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewProjectRepository(db.DB)
	ctx := context.Background()

	owner := db.CreateTestUser(t)
	stranger := db.CreateTestUser(t)
	project := db.CreateTestProject(t, owner)

	_, err := repo.GetByID(ctx, stranger.ID, project.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectRepository_GetOwnedIDs(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewProjectRepository(db.DB)
	ctx := context.Background()

	owner := db.CreateTestUser(t)
	stranger := db.CreateTestUser(t)

	mine := db.CreateTestProject(t, owner)
	deleted := db.CreateTestProject(t, owner)
	theirs := db.CreateTestProject(t, stranger)

	deleted.IsDeleted = true
	require.NoError(t, repo.Update(ctx, deleted))

	owned, err := repo.GetOwnedIDs(ctx, owner.ID, []uuid.UUID{mine.ID, deleted.ID, theirs.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, mine.ID, owned[0])
}

func TestProjectRepository_List_ExcludesSoftDeleted(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewProjectRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)
	visible := db.CreateTestProject(t, user)
	hidden := db.CreateTestProject(t, user)

	hidden.IsDeleted = true
	require.NoError(t, repo.Update(ctx, hidden))

	projects, total, err := repo.List(ctx, user.ID, repositories.ProjectFilters{
		ListParams: repositories.ListParams{Page: 1, PageSize: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, projects, 1)
	assert.Equal(t, visible.ID, projects[0].ID)
}

func TestProjectRepository_List_NameFilterIsCaseInsensitive(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewProjectRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)

	match := db.CreateTestProject(t, user)
	match.Name = "Deep Learning Survey"
	require.NoError(t, repo.Update(ctx, match))

	other := db.CreateTestProject(t, user)
	other.Name = "Grocery List"
	require.NoError(t, repo.Update(ctx, other))

	projects, total, err := repo.List(ctx, user.ID, repositories.ProjectFilters{
		ListParams: repositories.ListParams{Page: 1, PageSize: 10},
		Name:       "learning",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, projects, 1)
	assert.Equal(t, match.ID, projects[0].ID)
}

func TestProjectRepository_List_FlagFilters(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewProjectRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)

	pinned := db.CreateTestProject(t, user)
	pinned.IsPinned = true
	require.NoError(t, repo.Update(ctx, pinned))

	db.CreateTestProject(t, user)

	yes := true
	projects, total, err := repo.List(ctx, user.ID, repositories.ProjectFilters{
		ListParams: repositories.ListParams{Page: 1, PageSize: 10},
		IsPinned:   &yes,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, projects, 1)
	assert.Equal(t, pinned.ID, projects[0].ID)

	// Explicit false filter is not the same as no filter.
	no := false
	_, total, err = repo.List(ctx, user.ID, repositories.ProjectFilters{
		ListParams: repositories.ListParams{Page: 1, PageSize: 10},
		IsPinned:   &no,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestProjectRepository_List_StatusFilter(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewProjectRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)

	published := db.CreateTestProject(t, user)
	published.Status = models.ProjectStatusPublished
	require.NoError(t, repo.Update(ctx, published))

	db.CreateTestProject(t, user)

	projects, total, err := repo.List(ctx, user.ID, repositories.ProjectFilters{
		ListParams: repositories.ListParams{Page: 1, PageSize: 10},
		Status:     []models.ProjectStatus{models.ProjectStatusPublished},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, projects, 1)
	assert.Equal(t, published.ID, projects[0].ID)
}

func TestProjectRepository_BulkSetFlag(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewProjectRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)
	p1 := db.CreateTestProject(t, user)
	p2 := db.CreateTestProject(t, user)

	affected, err := repo.BulkSetFlag(ctx, []uuid.UUID{p1.ID, p2.ID}, "is_favorite", true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	for _, id := range []uuid.UUID{p1.ID, p2.ID} {
		found, err := repo.GetByID(ctx, user.ID, id)
		require.NoError(t, err)
		assert.True(t, found.IsFavorite)
	}
}

func TestProjectRepository_BulkSetFlag_RejectsUnknownColumn(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewProjectRepository(db.DB)
	ctx := context.Background()

	_, err := repo.BulkSetFlag(ctx, []uuid.UUID{uuid.New()}, "status", true)
	assert.Error(t, err)
}

func TestProjectRepository_BulkSetStatus(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewProjectRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)
	p1 := db.CreateTestProject(t, user)
	p2 := db.CreateTestProject(t, user)

	affected, err := repo.BulkSetStatus(ctx, []uuid.UUID{p1.ID, p2.ID}, models.ProjectStatusArchived)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
}

func TestProjectRepository_AttachDetachListFiles(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewProjectRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)
	project := db.CreateTestProject(t, user)
	f1 := db.CreateTestFile(t, user)
	f2 := db.CreateTestFile(t, user)

	require.NoError(t, repo.AttachFiles(ctx, project.ID, []models.File{*f1, *f2}))

	files, err := repo.ListFiles(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, files, 2)

	require.NoError(t, repo.DetachFiles(ctx, project.ID, []models.File{*f1}))

	files, err = repo.ListFiles(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, f2.ID, files[0].ID)
}

func TestProjectRepository_AttachFiles_IsIdempotentPerPair(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewProjectRepository(db.DB)
	ctx := context.Background()

	user := db.CreateTestUser(t)
	project := db.CreateTestProject(t, user)
	file := db.CreateTestFile(t, user)

	require.NoError(t, repo.AttachFiles(ctx, project.ID, []models.File{*file}))
	require.NoError(t, repo.AttachFiles(ctx, project.ID, []models.File{*file}))

	files, err := repo.ListFiles(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}
