package weekends

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// CalendarJSON is the production calendar file layout: one entry per month with a
// comma separated list of days off. A "+" suffix marks a moved holiday, a "*" suffix
// marks a shortened working day.
type CalendarJSON struct {
	Year   int             `json:"year"`
	Months []MonthHolidays `json:"months"`
}

type MonthHolidays struct {
	Month int    `json:"month"`
	Days  string `json:"days"`
}

type Holiday struct {
	Date  time.Time
	Year  int
	Month int
	Day   int
}

// ParseFile reads and parses a calendar file.
func ParseFile(filePath string) ([]Holiday, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar file: %w", err)
	}

	return Parse(data)
}

// Parse returns the days off of the calendar ordered by date. Shortened working days
// are still working days and are skipped.
func Parse(data []byte) ([]Holiday, error) {
	var calendar CalendarJSON
	if err := json.Unmarshal(data, &calendar); err != nil {
		return nil, fmt.Errorf("failed to unmarshal calendar: %w", err)
	}

	if calendar.Year <= 0 {
		return nil, fmt.Errorf("calendar year is missing")
	}

	seen := make(map[time.Time]bool)
	holidays := []Holiday{}

	for _, month := range calendar.Months {
		if month.Month < 1 || month.Month > 12 {
			return nil, fmt.Errorf("invalid month %d", month.Month)
		}

		for _, raw := range strings.Split(month.Days, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" || strings.HasSuffix(raw, "*") {
				continue
			}
			raw = strings.TrimSuffix(raw, "+")

			day, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("failed to parse day '%s' in month %d: %w", raw, month.Month, err)
			}

			date := time.Date(calendar.Year, time.Month(month.Month), day, 0, 0, 0, 0, time.UTC)
			if date.Day() != day || int(date.Month()) != month.Month {
				return nil, fmt.Errorf("day %d does not exist in month %d", day, month.Month)
			}

			if seen[date] {
				continue
			}
			seen[date] = true

			holidays = append(holidays, Holiday{
				Date:  date,
				Year:  calendar.Year,
				Month: month.Month,
				Day:   day,
			})
		}
	}

	sort.Slice(holidays, func(i, j int) bool {
		return holidays[i].Date.Before(holidays[j].Date)
	})

	return holidays, nil
}
