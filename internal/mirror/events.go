package mirror

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventCheckIn     EventType = "CHECK_IN"
	EventCheckOut    EventType = "CHECK_OUT"
	EventManualEntry EventType = "MANUAL_ENTRY"
	EventTasksLogged EventType = "TASKS_LOGGED"
)

// AttendanceEvent describes one write to a user's attendance for a date.
type AttendanceEvent struct {
	EventID          string    `json:"eventId"`
	Type             EventType `json:"type"`
	UserID           string    `json:"userId"`
	UserName         string    `json:"userName,omitempty"`
	Date             string    `json:"date"`
	SessionNumber    int       `json:"sessionNumber"`
	CheckIn          string    `json:"checkIn,omitempty"`
	CheckOut         *string   `json:"checkOut,omitempty"`
	WorkMinutes      int       `json:"workMinutes"`
	TotalWorkMinutes int       `json:"totalWorkMinutes"`
	IsManual         bool      `json:"isManual"`
	OccurredAt       time.Time `json:"occurredAt"`
}

type TaskItem struct {
	Name     string  `json:"name"`
	Hours    float64 `json:"hours"`
	Category string  `json:"category"`
}

// TasksEvent carries the tasks a user logged for a date.
type TasksEvent struct {
	EventID     string     `json:"eventId"`
	Type        EventType  `json:"type"`
	UserID      string     `json:"userId"`
	Date        string     `json:"date"`
	Tasks       []TaskItem `json:"tasks"`
	MonthToDate float64    `json:"monthToDateHours"`
	OccurredAt  time.Time  `json:"occurredAt"`
}

func NewAttendanceEvent(t EventType, userID, date string, at time.Time) AttendanceEvent {
	return AttendanceEvent{
		EventID:    uuid.NewString(),
		Type:       t,
		UserID:     userID,
		Date:       date,
		OccurredAt: at,
	}
}

func NewTasksEvent(userID, date string, tasks []TaskItem, at time.Time) TasksEvent {
	return TasksEvent{
		EventID:    uuid.NewString(),
		Type:       EventTasksLogged,
		UserID:     userID,
		Date:       date,
		Tasks:      tasks,
		OccurredAt: at,
	}
}

// TotalHours sums the hours of all tasks in the event.
func (e TasksEvent) TotalHours() float64 {
	var total float64
	for _, t := range e.Tasks {
		total += t.Hours
	}
	return total
}
