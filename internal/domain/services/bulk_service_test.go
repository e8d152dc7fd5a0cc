package services

import (
	"context"
	"testing"

	"github.com/researchmem/researchmem/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkService_BulkDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.db.CreateTestUser(t)
	p1 := env.db.CreateTestProject(t, user)
	p2 := env.db.CreateTestProject(t, user)
	keep := env.db.CreateTestProject(t, user)

	affected, err := env.bulk.BulkDelete(ctx, user.ID, []uuid.UUID{p1.ID, p2.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	_, err = env.projects.Get(ctx, user.ID, p1.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	_, err = env.projects.Get(ctx, user.ID, keep.ID)
	assert.NoError(t, err)
}

func TestBulkService_BulkDelete_NoOwnedRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.db.CreateTestUser(t)
	stranger := env.db.CreateTestUser(t)
	project := env.db.CreateTestProject(t, owner)

	_, err := env.bulk.BulkDelete(ctx, stranger.ID, []uuid.UUID{project.ID})
	assert.ErrorIs(t, err, ErrProjectNotFound)

	// The owner still sees it.
	_, err = env.projects.Get(ctx, owner.ID, project.ID)
	assert.NoError(t, err)
}

func TestBulkService_BulkUpdate_Pinned(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.db.CreateTestUser(t)
	p1 := env.db.CreateTestProject(t, user)
	p2 := env.db.CreateTestProject(t, user)
	untouched := env.db.CreateTestProject(t, user)

	affected, err := env.bulk.BulkUpdate(ctx, user.ID, BulkUpdateParams{
		ProjectIDs:  []uuid.UUID{p1.ID, p2.ID},
		Action:      "pinned",
		ActionValue: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	for _, id := range []uuid.UUID{p1.ID, p2.ID} {
		p, err := env.projects.Get(ctx, user.ID, id)
		require.NoError(t, err)
		assert.True(t, p.IsPinned)
		// Only the pinned flag moved.
		assert.False(t, p.IsFavorite)
		assert.Equal(t, models.ProjectStatusDraft, p.Status)
	}

	p, err := env.projects.Get(ctx, user.ID, untouched.ID)
	require.NoError(t, err)
	assert.False(t, p.IsPinned)
}

func TestBulkService_BulkUpdate_NotOwned(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.db.CreateTestUser(t)
	stranger := env.db.CreateTestUser(t)
	project := env.db.CreateTestProject(t, owner)

	_, err := env.bulk.BulkUpdate(ctx, stranger.ID, BulkUpdateParams{
		ProjectIDs:  []uuid.UUID{project.ID},
		Action:      "pinned",
		ActionValue: true,
	})
	assert.ErrorIs(t, err, ErrProjectNotFound)

	p, err := env.projects.Get(ctx, owner.ID, project.ID)
	require.NoError(t, err)
	assert.False(t, p.IsPinned)
}

func TestBulkService_BulkUpdate_Status(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.db.CreateTestUser(t)
	p1 := env.db.CreateTestProject(t, user)
	p2 := env.db.CreateTestProject(t, user)

	affected, err := env.bulk.BulkUpdate(ctx, user.ID, BulkUpdateParams{
		ProjectIDs: []uuid.UUID{p1.ID, p2.ID},
		Action:     BulkActionUpdateStatus,
		NewStatus:  models.ProjectStatusPublished,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	p, err := env.projects.Get(ctx, user.ID, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusPublished, p.Status)
}

func TestBulkService_BulkUpdate_UnmappedActionFallsBackToStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.db.CreateTestUser(t)
	project := env.db.CreateTestProject(t, user)

	// An action outside the flag map still applies a valid NewStatus.
	affected, err := env.bulk.BulkUpdate(ctx, user.ID, BulkUpdateParams{
		ProjectIDs: []uuid.UUID{project.ID},
		Action:     "frobnicate",
		NewStatus:  models.ProjectStatusPublished,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	p, err := env.projects.Get(ctx, user.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusPublished, p.Status)
	assert.False(t, p.IsPinned)
}

func TestBulkService_BulkUpdate_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.db.CreateTestUser(t)
	project := env.db.CreateTestProject(t, user)

	_, err := env.bulk.BulkUpdate(ctx, user.ID, BulkUpdateParams{
		ProjectIDs: []uuid.UUID{project.ID},
		Action:     "sparkle",
	})
	assert.True(t, IsValidation(err))

	_, err = env.bulk.BulkUpdate(ctx, user.ID, BulkUpdateParams{
		ProjectIDs: []uuid.UUID{project.ID},
		Action:     BulkActionUpdateStatus,
		NewStatus:  models.ProjectStatus("bogus"),
	})
	assert.True(t, IsValidation(err))

	_, err = env.bulk.BulkUpdate(ctx, user.ID, BulkUpdateParams{
		Action:      "pinned",
		ActionValue: true,
	})
	assert.True(t, IsValidation(err))
}

func TestBulkService_BulkUpdate_DeleteAction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.db.CreateTestUser(t)
	project := env.db.CreateTestProject(t, user)

	affected, err := env.bulk.BulkUpdate(ctx, user.ID, BulkUpdateParams{
		ProjectIDs:  []uuid.UUID{project.ID},
		Action:      "delete",
		ActionValue: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	_, err = env.projects.Get(ctx, user.ID, project.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}
