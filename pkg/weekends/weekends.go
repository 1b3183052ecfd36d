// Package weekends reads production-calendar JSON files listing the
// non-working days of a year.
package weekends

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// CalendarJSON is the layout of the calendar file.
type CalendarJSON struct {
	Year      int             `json:"year"`
	Months    []MonthWeekends `json:"months"`
	Statistic Statistic       `json:"statistic"`
}

// MonthWeekends lists the days of one month as "1,2,3+,7*". A "+" marks a
// moved holiday; a "*" marks a shortened working day, which is not a day off.
type MonthWeekends struct {
	Month int    `json:"month"`
	Days  string `json:"days"`
}

type Statistic struct {
	Workdays int     `json:"workdays"`
	Holidays int     `json:"holidays"`
	Hours40  float64 `json:"hours40"`
}

// Day is one non-working calendar date.
type Day struct {
	Date  string `json:"date"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Day   int    `json:"day"`
}

// ParseFile reads and parses a calendar file.
func ParseFile(filePath string) ([]Day, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes a calendar and returns its non-working days in file order.
func Parse(r io.Reader) ([]Day, error) {
	var cal CalendarJSON
	if err := json.NewDecoder(r).Decode(&cal); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	if cal.Year <= 0 {
		return nil, fmt.Errorf("calendar year is missing")
	}

	days := []Day{}
	for _, monthData := range cal.Months {
		if monthData.Month < 1 || monthData.Month > 12 {
			return nil, fmt.Errorf("invalid month %d", monthData.Month)
		}

		for _, dayStr := range strings.Split(monthData.Days, ",") {
			dayStr = strings.TrimSpace(dayStr)
			if dayStr == "" || strings.HasSuffix(dayStr, "*") {
				continue
			}
			dayStr = strings.TrimSuffix(dayStr, "+")

			day, err := strconv.Atoi(dayStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse day '%s' in month %d: %w",
					dayStr, monthData.Month, err)
			}

			date := time.Date(cal.Year, time.Month(monthData.Month), day, 0, 0, 0, 0, time.UTC)
			if date.Month() != time.Month(monthData.Month) {
				return nil, fmt.Errorf("day %d does not exist in month %d", day, monthData.Month)
			}

			days = append(days, Day{
				Date:  date.Format("2006-01-02"),
				Year:  cal.Year,
				Month: monthData.Month,
				Day:   day,
			})
		}
	}

	return days, nil
}

// ForMonth returns the days that fall in the given month.
func ForMonth(days []Day, year, month int) []Day {
	result := []Day{}
	for _, day := range days {
		if day.Year == year && day.Month == month {
			result = append(result, day)
		}
	}
	return result
}
