package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"hr-ops-bot/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func punchesOn(date string, clock ...string) []models.Punch {
	d, _ := time.Parse(models.DateLayout, date)
	punches := make([]models.Punch, len(clock))
	for i, c := range clock {
		punches[i] = models.Punch{Date: d, Time: c}
	}
	return punches
}

func fixedThreshold(minutes int) func(string) int {
	return func(string) int { return minutes }
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestBuildCandidatesLunchBreakScenario(t *testing.T) {
	got := BuildCandidates(punchesOn("2026-10-12", "13:00", "08:00", "19:00", "12:00"), fixedThreshold(480), quietLogger())

	require.Len(t, got, 1)
	assert.Equal(t, "2026-10-12", got[0].Key())
	assert.Equal(t, []string{"08:00", "12:00", "13:00", "19:00"}, got[0].Punches)
	assert.Equal(t, 600, got[0].WorkedMinutes)
	assert.Equal(t, "02:00", models.FormatMinutes(got[0].OvertimeMinutes))
}

func TestBuildCandidatesRules(t *testing.T) {
	var punches []models.Punch
	punches = append(punches, punchesOn("2026-10-12", "08:00", "12:00", "13:00", "17:00")...) // exactly the threshold
	punches = append(punches, punchesOn("2026-10-13", "08:00", "12:00", "13:00")...)          // odd
	punches = append(punches, punchesOn("2026-10-14", "08:00", "12:00", "13:00", "17:01")...) // one minute over
	punches = append(punches, punchesOn("2026-10-15", "09:00", "11:30")...)                   // holiday
	punches = append(punches, punchesOn("2026-10-16", "08:00", "xx:yy")...)                   // unreadable

	threshold := func(date string) int {
		if date == "2026-10-15" {
			return 0
		}
		return 480
	}

	got := BuildCandidates(punches, threshold, quietLogger())

	require.Len(t, got, 2)
	assert.Equal(t, "2026-10-15", got[0].Key(), "most recent first")
	assert.Equal(t, 150, got[0].OvertimeMinutes, "every minute counts on a non-working day")
	assert.Equal(t, "2026-10-14", got[1].Key())
	assert.Equal(t, 1, got[1].OvertimeMinutes)
}

func TestBuildCandidatesEmpty(t *testing.T) {
	assert.Empty(t, BuildCandidates(nil, fixedThreshold(480), quietLogger()))
}

type punchSourceFunc func(ctx context.Context, discordID string, from, to time.Time) ([]models.Punch, error)

func (f punchSourceFunc) LookupPunches(ctx context.Context, discordID string, from, to time.Time) ([]models.Punch, error) {
	return f(ctx, discordID, from, to)
}

type holidaySourceFunc func(ctx context.Context, from, to time.Time) ([]models.NonWorkingDay, error)

func (f holidaySourceFunc) GetBetween(ctx context.Context, from, to time.Time) ([]models.NonWorkingDay, error) {
	return f(ctx, from, to)
}

type blockedSourceFunc func(ctx context.Context, submitterID string) (map[string]struct{}, error)

func (f blockedSourceFunc) BlockedDates(ctx context.Context, submitterID string) (map[string]struct{}, error) {
	return f(ctx, submitterID)
}

func TestTimeEntryResolverCandidates(t *testing.T) {
	var gotFrom, gotTo time.Time

	punches := punchSourceFunc(func(_ context.Context, id string, from, to time.Time) ([]models.Punch, error) {
		assert.Equal(t, "100", id)
		gotFrom, gotTo = from, to
		var p []models.Punch
		p = append(p, punchesOn("2026-10-12", "08:00", "19:00")...)
		p = append(p, punchesOn("2026-10-13", "08:00", "19:00")...)
		p = append(p, punchesOn("2026-10-11", "10:00", "12:00")...)
		return p, nil
	})
	holidays := holidaySourceFunc(func(context.Context, time.Time, time.Time) ([]models.NonWorkingDay, error) {
		d, _ := time.Parse(models.DateLayout, "2026-10-11")
		return []models.NonWorkingDay{{Date: d}}, nil
	})
	blocked := blockedSourceFunc(func(context.Context, string) (map[string]struct{}, error) {
		return map[string]struct{}{"2026-10-13": {}}, nil
	})

	r := NewTimeEntryResolver(punches, holidays, blocked, 7, 480)
	r.now = func() time.Time { return time.Date(2026, 10, 18, 15, 30, 0, 0, time.UTC) }

	got, err := r.Candidates(context.Background(), "100")
	require.NoError(t, err)

	assert.Equal(t, "2026-10-11", models.DateKey(gotFrom))
	assert.Equal(t, "2026-10-18", models.DateKey(gotTo))

	require.Len(t, got, 2)
	assert.Equal(t, "2026-10-12", got[0].Key())
	assert.Equal(t, 180, got[0].OvertimeMinutes)
	assert.Equal(t, "2026-10-11", got[1].Key())
	assert.Equal(t, 120, got[1].OvertimeMinutes)
}

func TestTimeEntryResolverFailures(t *testing.T) {
	noBlocked := blockedSourceFunc(func(context.Context, string) (map[string]struct{}, error) { return nil, nil })

	down := punchSourceFunc(func(context.Context, string, time.Time, time.Time) ([]models.Punch, error) {
		return nil, errors.Join(ErrDataSource, errors.New("connection refused"))
	})
	_, err := NewTimeEntryResolver(down, nil, noBlocked, 7, 480).Candidates(context.Background(), "100")
	assert.ErrorIs(t, err, ErrDataSource)

	empty := punchSourceFunc(func(context.Context, string, time.Time, time.Time) ([]models.Punch, error) { return nil, nil })
	storeDown := blockedSourceFunc(func(context.Context, string) (map[string]struct{}, error) {
		return nil, errors.New("database is locked")
	})
	_, err = NewTimeEntryResolver(empty, nil, storeDown, 7, 480).Candidates(context.Background(), "100")
	assert.ErrorIs(t, err, ErrPersistence)
}
