package service

import (
	"context"
	"testing"

	"hr-ops-bot/internal/database"
	"hr-ops-bot/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApproverService(t *testing.T) *ApproverService {
	t.Helper()
	db, err := database.Open("file::memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	repo, err := repository.NewGormTeamApproverRepository(db)
	require.NoError(t, err)
	return NewApproverService(repo)
}

func TestApproverService(t *testing.T) {
	ctx := context.Background()
	svc := newApproverService(t)

	_, err := svc.ApproverFor(ctx, 7)
	assert.ErrorIs(t, err, ErrNoApprover)

	assert.ErrorIs(t, svc.Assign(ctx, "admin", 0, "200"), ErrUserInput)
	assert.ErrorIs(t, svc.Assign(ctx, "admin", 7, "  "), ErrUserInput)

	require.NoError(t, svc.Assign(ctx, "admin", 7, " 200 "))
	id, err := svc.ApproverFor(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "200", id)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	removed, err := svc.Unassign(ctx, "admin", 7)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = svc.ApproverFor(ctx, 7)
	assert.ErrorIs(t, err, ErrNoApprover)
}

func TestComponentLoggersFollowProcessLevel(t *testing.T) {
	previous := logrus.GetLevel()
	logrus.SetLevel(logrus.DebugLevel)
	t.Cleanup(func() { logrus.SetLevel(previous) })

	svc := newApproverService(t)
	assert.Equal(t, logrus.DebugLevel, svc.logger.GetLevel())

	resolver := NewTimeEntryResolver(nil, nil, nil, 7, 480)
	assert.Equal(t, logrus.DebugLevel, resolver.logger.GetLevel())

	overtime := NewOvertimeService(OvertimeDeps{})
	assert.Equal(t, logrus.DebugLevel, overtime.logger.GetLevel())
}
