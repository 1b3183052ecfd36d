package models

import "time"

// NonWorkingDay is a date the production calendar marks as a day off.
type NonWorkingDay struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      string    `gorm:"type:varchar(10);uniqueIndex" json:"date"`
	Year      int       `gorm:"index:idx_nwd_year_month,priority:1" json:"year"`
	Month     int       `gorm:"index:idx_nwd_year_month,priority:2" json:"month"`
	Day       int       `json:"day"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (NonWorkingDay) TableName() string {
	return "non_working_days"
}
