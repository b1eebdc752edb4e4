package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamApproverSetGetRemove(t *testing.T) {
	ctx := context.Background()
	repo, err := NewGormTeamApproverRepository(newTestDB(t))
	require.NoError(t, err)

	none, err := repo.GetByTeam(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, repo.Set(ctx, 7, "200"))
	got, err := repo.GetByTeam(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "200", got.ApproverID)

	require.NoError(t, repo.Set(ctx, 7, "201"))
	got, err = repo.GetByTeam(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "201", got.ApproverID)

	require.NoError(t, repo.Set(ctx, 3, "300"))
	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, uint(3), list[0].TeamID)
	assert.Equal(t, uint(7), list[1].TeamID)

	removed, err := repo.Remove(ctx, 7)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Remove(ctx, 7)
	require.NoError(t, err)
	assert.False(t, removed)

	got, err = repo.GetByTeam(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTeamApproverSetRequiresApprover(t *testing.T) {
	repo, err := NewGormTeamApproverRepository(newTestDB(t))
	require.NoError(t, err)

	assert.Error(t, repo.Set(context.Background(), 7, ""))
}
