package models

import (
	"time"
)

// NonWorkingDay is a holiday imported from the calendar file. Every worked minute
// on such a day counts as overtime.
type NonWorkingDay struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      time.Time `gorm:"uniqueIndex" json:"date"`
	Year      int       `gorm:"index" json:"year"`
	Month     int       `gorm:"index" json:"month"`
	Day       int       `json:"day"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (NonWorkingDay) TableName() string {
	return "non_working_days"
}

func (d NonWorkingDay) Key() string {
	return DateKey(d.Date)
}
