package clock

import (
	"fmt"
	"sync"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	TimeLayout  = "15:04:05"
	MonthLayout = "2006-01"
)

// Clock supplies the current wall-clock time in the bot's time zone.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// Zoned reads the system clock and converts it to a fixed location.
type Zoned struct {
	loc *time.Location
}

func NewZoned(name string) (*Zoned, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, err
	}
	return &Zoned{loc: loc}, nil
}

func (z *Zoned) Now() time.Time {
	return time.Now().In(z.loc)
}

func (z *Zoned) Location() *time.Location {
	return z.loc
}

// Fixed is a settable clock for tests and replays.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fixed) Location() *time.Location {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now.Location()
}

func (f *Fixed) Set(now time.Time) {
	f.mu.Lock()
	f.now = now
	f.mu.Unlock()
}

func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// DateString formats t as a calendar date.
func DateString(t time.Time) string {
	return t.Format(DateLayout)
}

// TimeString formats t as a time of day with seconds.
func TimeString(t time.Time) string {
	return t.Format(TimeLayout)
}

// Today returns the current date string of c.
func Today(c Clock) string {
	return DateString(c.Now())
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// ParseDate parses a YYYY-MM-DD string in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}

// ParseTimeOfDay accepts HH:MM or HH:MM:SS and returns the canonical HH:MM:SS form.
func ParseTimeOfDay(s string) (string, error) {
	for _, layout := range []string{TimeLayout, "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(TimeLayout), nil
		}
	}
	return "", fmt.Errorf("invalid time of day %q", s)
}

// At combines a date string and a HH:MM:SS string into a time in loc.
func At(date, timeOfDay string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+timeOfDay, loc)
}
