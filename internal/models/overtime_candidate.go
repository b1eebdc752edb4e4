package models

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Punch is a single time-clock mark as stored by the corporate portal.
type Punch struct {
	Date time.Time
	Time string // HH:MM
}

// OvertimeCandidate is a day with overtime that may be included in a new request.
// It is derived from punches on every lookup and never persisted.
type OvertimeCandidate struct {
	Date            time.Time
	Punches         []string
	WorkedMinutes   int
	OvertimeMinutes int
}

// Key returns the date as YYYY-MM-DD, the value used in select menus and payloads.
func (c OvertimeCandidate) Key() string {
	return DateKey(c.Date)
}

func (c OvertimeCandidate) PunchesString() string {
	return strings.Join(c.Punches, " - ")
}

// ToSelectedDay snapshots the candidate into the persisted payload shape.
func (c OvertimeCandidate) ToSelectedDay() SelectedDay {
	return SelectedDay{
		Date:            c.Key(),
		Punches:         append([]string(nil), c.Punches...),
		WorkedMinutes:   c.WorkedMinutes,
		OvertimeMinutes: c.OvertimeMinutes,
	}
}

func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatMinutes renders a duration in minutes as HH:MM.
func FormatMinutes(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%02d:%02d", sign, minutes/60, minutes%60)
}

// ParseClock converts HH:MM into minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
