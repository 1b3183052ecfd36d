package models

import "time"

type TaskEntry struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    string    `gorm:"type:varchar(64);not null;index:idx_task_user_date,priority:1" json:"user_id"`
	Date      string    `gorm:"type:varchar(10);not null;index:idx_task_user_date,priority:2" json:"date"`
	Name      string    `gorm:"not null" json:"name"`
	Hours     float64   `gorm:"not null" json:"hours"`
	Category  string    `gorm:"type:varchar(32);index" json:"category"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (TaskEntry) TableName() string {
	return "task_entries"
}

// CategoryStat is the per-category total of task hours over a range.
type CategoryStat struct {
	Category   string  `json:"category"`
	TotalHours float64 `json:"total_hours"`
	TaskCount  int     `json:"task_count"`
}
