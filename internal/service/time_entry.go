package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"hr-ops-bot/internal/models"

	"github.com/sirupsen/logrus"
)

type PunchSource interface {
	LookupPunches(ctx context.Context, discordID string, from, to time.Time) ([]models.Punch, error)
}

type HolidaySource interface {
	GetBetween(ctx context.Context, from, to time.Time) ([]models.NonWorkingDay, error)
}

type BlockedDateSource interface {
	BlockedDates(ctx context.Context, submitterID string) (map[string]struct{}, error)
}

// TimeEntryResolver turns punches into the overtime days a submitter can still request.
type TimeEntryResolver struct {
	punches          PunchSource
	holidays         HolidaySource
	blocked          BlockedDateSource
	lookbackDays     int
	thresholdMinutes int
	now              func() time.Time
	logger           *logrus.Logger
}

func NewTimeEntryResolver(punches PunchSource, holidays HolidaySource, blocked BlockedDateSource, lookbackDays, thresholdMinutes int) *TimeEntryResolver {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.GetLevel())

	return &TimeEntryResolver{
		punches:          punches,
		holidays:         holidays,
		blocked:          blocked,
		lookbackDays:     lookbackDays,
		thresholdMinutes: thresholdMinutes,
		now:              time.Now,
		logger:           logger,
	}
}

// Candidates returns the days of the lookback window with overtime that are not
// part of a pending or approved request, most recent first.
func (r *TimeEntryResolver) Candidates(ctx context.Context, submitterID string) ([]models.OvertimeCandidate, error) {
	today := r.now()
	to := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -r.lookbackDays)

	punches, err := r.punches.LookupPunches(ctx, submitterID, from, to)
	if err != nil {
		r.logger.WithError(err).WithField("actor_id", submitterID).Error("Failed to load punches")
		return nil, err
	}

	nonWorking := make(map[string]bool)
	if r.holidays != nil {
		days, err := r.holidays.GetBetween(ctx, from, to)
		if err != nil {
			r.logger.WithError(err).Warn("Failed to load non-working days, using the standard threshold")
		}
		for _, d := range days {
			nonWorking[d.Key()] = true
		}
	}

	threshold := func(date string) int {
		if nonWorking[date] {
			return 0
		}
		return r.thresholdMinutes
	}

	candidates := BuildCandidates(punches, threshold, r.logger.WithField("actor_id", submitterID))

	blocked, err := r.blocked.BlockedDates(ctx, submitterID)
	if err != nil {
		r.logger.WithError(err).WithField("actor_id", submitterID).Error("Failed to load blocked dates")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	available := candidates[:0]
	for _, c := range candidates {
		if _, taken := blocked[c.Key()]; taken {
			continue
		}
		available = append(available, c)
	}

	r.logger.WithFields(logrus.Fields{
		"actor_id":   submitterID,
		"punches":    len(punches),
		"candidates": len(available),
		"blocked":    len(blocked),
	}).Info("Resolved overtime candidates")

	return available, nil
}

// BuildCandidates groups punches by date and keeps the days whose worked time
// exceeds the threshold of that date. Days with an odd number of punches cannot be
// paired and are skipped with a warning.
func BuildCandidates(punches []models.Punch, threshold func(date string) int, log logrus.FieldLogger) []models.OvertimeCandidate {
	byDate := make(map[string][]string)
	dates := make(map[string]time.Time)
	for _, p := range punches {
		key := models.DateKey(p.Date)
		byDate[key] = append(byDate[key], p.Time)
		dates[key] = p.Date
	}

	candidates := []models.OvertimeCandidate{}
	for key, times := range byDate {
		if len(times)%2 != 0 {
			log.WithFields(logrus.Fields{"date": key, "punches": len(times)}).Warn("Odd number of punches, skipping day")
			continue
		}

		minutes := make([]int, 0, len(times))
		valid := true
		for _, t := range times {
			m, err := models.ParseClock(t)
			if err != nil {
				log.WithError(err).WithField("date", key).Warn("Unreadable punch, skipping day")
				valid = false
				break
			}
			minutes = append(minutes, m)
		}
		if !valid {
			continue
		}
		sort.Ints(minutes)

		worked := 0
		for i := 0; i < len(minutes); i += 2 {
			worked += minutes[i+1] - minutes[i]
		}

		overtime := worked - threshold(key)
		if overtime <= 0 {
			continue
		}

		clock := make([]string, len(minutes))
		for i, m := range minutes {
			clock[i] = fmt.Sprintf("%02d:%02d", m/60, m%60)
		}

		d := dates[key]
		candidates = append(candidates, models.OvertimeCandidate{
			Date:            time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
			Punches:         clock,
			WorkedMinutes:   worked,
			OvertimeMinutes: overtime,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Date.After(candidates[j].Date)
	})

	return candidates
}
