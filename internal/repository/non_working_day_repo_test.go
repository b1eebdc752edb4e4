package repository

import (
	"context"
	"testing"
	"time"

	"hr-ops-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonWorkingDayGetBetween(t *testing.T) {
	ctx := context.Background()
	repo, err := NewGormNonWorkingDayRepository(newTestDB(t))
	require.NoError(t, err)

	require.NoError(t, repo.BulkCreate(ctx, []models.NonWorkingDay{
		{Date: day(2026, 10, 12), Year: 2026, Month: 10, Day: 12},
		{Date: day(2026, 11, 2), Year: 2026, Month: 11, Day: 2},
		{Date: day(2026, 11, 15), Year: 2026, Month: 11, Day: 15},
	}))

	days, err := repo.GetBetween(ctx, day(2026, 10, 12), time.Date(2026, 11, 2, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2026-10-12", days[0].Key())
	assert.Equal(t, "2026-11-02", days[1].Key())

	require.NoError(t, repo.DeleteAll(ctx))
	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
