package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"hr-ops-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePortal struct {
	person  func(ctx context.Context, discordID string) (*models.EmployeeProfile, error)
	punches func(ctx context.Context, discordID string, from, to time.Time) ([]models.Punch, error)
}

func (f fakePortal) LookupPerson(ctx context.Context, discordID string) (*models.EmployeeProfile, error) {
	return f.person(ctx, discordID)
}

func (f fakePortal) LookupPunches(ctx context.Context, discordID string, from, to time.Time) ([]models.Punch, error) {
	return f.punches(ctx, discordID, from, to)
}

func TestDirectoryServiceLookupPerson(t *testing.T) {
	shared := &models.EmployeeProfile{DiscordID: "100", Name: "Ana Souza"}
	dir := NewDirectoryService(fakePortal{
		person: func(_ context.Context, id string) (*models.EmployeeProfile, error) {
			switch id {
			case "100":
				return shared, nil
			case "500":
				return nil, errors.New("connection reset")
			}
			return nil, nil
		},
	})

	got, err := dir.LookupPerson(context.Background(), "100")
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", got.Name)
	got.Name = "changed"
	assert.Equal(t, "Ana Souza", shared.Name, "callers get their own copy")

	missing, err := dir.LookupPerson(context.Background(), "404")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = dir.LookupPerson(context.Background(), "500")
	assert.ErrorIs(t, err, ErrDataSource)
}

func TestDirectoryServiceLookupPunches(t *testing.T) {
	d := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	dir := NewDirectoryService(fakePortal{
		punches: func(_ context.Context, id string, from, to time.Time) ([]models.Punch, error) {
			if id == "500" {
				return nil, errors.New("timeout")
			}
			return []models.Punch{{Date: d, Time: "08:00"}}, nil
		},
	})

	punches, err := dir.LookupPunches(context.Background(), "100", d, d)
	require.NoError(t, err)
	assert.Equal(t, []models.Punch{{Date: d, Time: "08:00"}}, punches)

	_, err = dir.LookupPunches(context.Background(), "500", d, d)
	assert.ErrorIs(t, err, ErrDataSource)
}
