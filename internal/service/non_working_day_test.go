package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"hr-ops-bot/internal/database"
	"hr-ops-bot/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonWorkingDayServiceLoadFromJSONReplaces(t *testing.T) {
	ctx := context.Background()

	db, err := database.Open("file::memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	repo, err := repository.NewGormNonWorkingDayRepository(db)
	require.NoError(t, err)
	svc := NewNonWorkingDayService(repo)

	dir := t.TempDir()
	first := filepath.Join(dir, "2026.json")
	require.NoError(t, os.WriteFile(first, []byte(`{"year": 2026, "months": [{"month": 10, "days": "12"}, {"month": 11, "days": "2,15,20"}]}`), 0o600))

	n, err := svc.LoadFromJSON(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	second := filepath.Join(dir, "2026b.json")
	require.NoError(t, os.WriteFile(second, []byte(`{"year": 2026, "months": [{"month": 12, "days": "25"}]}`), 0o600))

	n, err = svc.LoadFromJSON(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	days, err := svc.GetNonWorkingDays(ctx)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "2026-12-25", days[0].Key())

	_, err = svc.LoadFromJSON(ctx, filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
