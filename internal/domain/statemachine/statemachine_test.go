package statemachine

import (
	"testing"

	"github.com/researchmem/researchmem/internal/infrastructure/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTransition_LegalPairs(t *testing.T) {
	legal := []struct {
		from, to models.FileStatus
	}{
		{models.FileStatusDraft, models.FileStatusPending},
		{models.FileStatusDraft, models.FileStatusProcessed},
		{models.FileStatusPending, models.FileStatusProcessed},
		{models.FileStatusProcessed, models.FileStatusDraft},
	}

	for _, tc := range legal {
		got, err := FileTransition(tc.from, tc.to)
		require.NoError(t, err, "%s -> %s should be legal", tc.from, tc.to)
		assert.Equal(t, tc.to, got)
	}
}

func TestFileTransition_IllegalPairsExhaustive(t *testing.T) {
	all := []models.FileStatus{
		models.FileStatusDraft,
		models.FileStatusPending,
		models.FileStatusProcessed,
		models.FileStatusFailed,
	}
	legal := map[[2]models.FileStatus]bool{
		{models.FileStatusDraft, models.FileStatusPending}:     true,
		{models.FileStatusDraft, models.FileStatusProcessed}:   true,
		{models.FileStatusPending, models.FileStatusProcessed}: true,
		{models.FileStatusProcessed, models.FileStatusDraft}:   true,
	}

	for _, from := range all {
		for _, to := range all {
			if legal[[2]models.FileStatus{from, to}] {
				continue
			}
			got, err := FileTransition(from, to)
			require.Error(t, err, "%s -> %s should be illegal", from, to)
			assert.Equal(t, from, got, "status must be unchanged on illegal transition")

			var invalid *InvalidTransitionError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, string(from), invalid.From)
			assert.Equal(t, string(to), invalid.To)
		}
	}
}

func TestFileTransition_FailedIsTerminal(t *testing.T) {
	for _, to := range []models.FileStatus{
		models.FileStatusDraft,
		models.FileStatusPending,
		models.FileStatusProcessed,
	} {
		_, err := FileTransition(models.FileStatusFailed, to)
		assert.Error(t, err)
	}
}

func TestFileTransition_UnknownTarget(t *testing.T) {
	got, err := FileTransition(models.FileStatusDraft, models.FileStatus("bogus"))
	assert.Error(t, err)
	assert.Equal(t, models.FileStatusDraft, got)
}

func TestProjectTransition(t *testing.T) {
	tests := []struct {
		from, to models.ProjectStatus
		ok       bool
	}{
		{models.ProjectStatusDraft, models.ProjectStatusArchived, true},
		{models.ProjectStatusDraft, models.ProjectStatusPublished, true},
		{models.ProjectStatusArchived, models.ProjectStatusDraft, true},
		{models.ProjectStatusPublished, models.ProjectStatusDraft, true},
		{models.ProjectStatusPublished, models.ProjectStatusArchived, false},
		{models.ProjectStatusArchived, models.ProjectStatusPublished, false},
		{models.ProjectStatusDraft, models.ProjectStatusDraft, false},
		{models.ProjectStatusDraft, models.ProjectStatus("bogus"), false},
	}

	for _, tc := range tests {
		got, err := ProjectTransition(tc.from, tc.to)
		if tc.ok {
			require.NoError(t, err, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, tc.to, got)
		} else {
			require.Error(t, err, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, tc.from, got)
		}
	}
}

func TestCanAttach(t *testing.T) {
	assert.True(t, CanAttach(models.FileStatusDraft))
	assert.True(t, CanAttach(models.FileStatusProcessed))
	assert.True(t, CanAttach(models.FileStatusFailed))
	assert.False(t, CanAttach(models.FileStatusPending))
}
