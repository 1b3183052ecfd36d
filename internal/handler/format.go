package handler

import (
	"fmt"
	"strings"

	"attendance-bot/internal/models"
)

// FormatMinutes renders a minute count as "H시간 M분", dropping a zero part.
// Zero renders as "0시간".
func FormatMinutes(minutes int) string {
	if minutes <= 0 {
		return "0시간"
	}

	hours, mins := minutes/60, minutes%60
	switch {
	case hours == 0:
		return fmt.Sprintf("%d분", mins)
	case mins == 0:
		return fmt.Sprintf("%d시간", hours)
	default:
		return fmt.Sprintf("%d시간 %d분", hours, mins)
	}
}

// shortTime trims seconds from a HH:MM:SS value.
func shortTime(t string) string {
	if len(t) >= 5 {
		return t[:5]
	}
	return t
}

func optionalTime(t *string) string {
	if t == nil {
		return "-"
	}
	return shortTime(*t)
}

func FormatDailyStatus(status *models.DailyStatus) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("📅 오늘 (%s)\n\n", status.Date))

	if !status.CheckedIn() {
		sb.WriteString("아직 출근 기록이 없습니다.\n")
		if status.IsWeekend {
			sb.WriteString("🌴 주말입니다.\n")
		}
		sb.WriteString("\n💡 /in 으로 출근하세요.")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("⏰ 첫 출근: %s\n", optionalTime(status.FirstCheckIn)))
	sb.WriteString(fmt.Sprintf("🏁 마지막 퇴근: %s\n", optionalTime(status.LastCheckOut)))
	sb.WriteString(fmt.Sprintf("⌛ 총 근무: %s\n", FormatMinutes(status.TotalMinutes)))
	sb.WriteString(fmt.Sprintf("🔢 세션: %d개 (완료 %d개)\n", status.TotalSessions, status.CompletedSessions))

	if len(status.Sessions) > 0 {
		sb.WriteString("\n")
		for _, s := range status.Sessions {
			sb.WriteString(formatSessionLine(s, false))
		}
	}

	if status.OpenSession != nil {
		sb.WriteString(fmt.Sprintf("\n🟢 근무 중 (%s 출근)", shortTime(status.OpenSession.CheckIn)))
	} else {
		sb.WriteString("\n⚪ 퇴근 상태")
	}
	if status.IsManual {
		sb.WriteString("\n✍️ 수동 입력된 기록입니다.")
	}

	return sb.String()
}

func formatSessionLine(s *models.AttendanceSession, withDate bool) string {
	var prefix string
	if withDate {
		prefix = s.Date + " "
	}

	line := fmt.Sprintf("%s#%d %s ~ %s", prefix, s.SessionNumber, shortTime(s.CheckIn), optionalTime(s.CheckOut))
	if s.IsClosed() {
		line += " (" + FormatMinutes(s.WorkMinutes) + ")"
	} else {
		line += " (근무 중)"
	}
	if s.IsManual {
		line += " ✍️"
	}
	return line + "\n"
}

func FormatHistory(sessions []*models.AttendanceSession) string {
	if len(sessions) == 0 {
		return "📭 근무 기록이 없습니다."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🗂 최근 세션 %d개\n\n", len(sessions)))
	for _, s := range sessions {
		sb.WriteString(formatSessionLine(s, true))
	}
	return sb.String()
}

func FormatReport(title string, report *models.Report) string {
	var sb strings.Builder

	sb.WriteString(title + "\n\n")
	sb.WriteString(fmt.Sprintf("📅 근무일: %d일\n", report.TotalWorkDays))
	sb.WriteString(fmt.Sprintf("⌛ 총 근무: %s\n", FormatMinutes(report.TotalMinutes)))
	sb.WriteString(fmt.Sprintf("📈 평균: %s\n", FormatMinutes(report.AverageMinutes)))
	sb.WriteString(fmt.Sprintf("⏰ 지각: %d회\n", report.LateCount))
	sb.WriteString(fmt.Sprintf("🏃 조퇴: %d회\n", report.EarlyLeaveCount))
	sb.WriteString(fmt.Sprintf("❌ 결근: %d일", report.AbsentCount))

	if len(report.AbsentDays) > 0 {
		sb.WriteString(" (" + strings.Join(report.AbsentDays, ", ") + ")")
	}

	if len(report.Records) > 0 {
		sb.WriteString("\n\n📋 일별 기록:\n")
		for _, r := range report.Records {
			sb.WriteString(fmt.Sprintf("%s  %s ~ %s  %s\n",
				r.Date, optionalTime(r.FirstCheckIn), optionalTime(r.LastCheckOut), FormatMinutes(r.TotalMinutes)))
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

func FormatTaskEntries(entries []*models.TaskEntry) string {
	var sb strings.Builder
	var total float64

	sb.WriteString("📝 작업이 기록되었습니다\n\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("• %s - %s [%s]\n", e.Name, formatHours(e.Hours), e.Category))
		total += e.Hours
	}
	sb.WriteString(fmt.Sprintf("\n합계: %s", formatHours(total)))
	return sb.String()
}

func FormatCategoryStats(yearMonth string, stats []models.CategoryStat) string {
	if len(stats) == 0 {
		return fmt.Sprintf("📭 %s 작업 기록이 없습니다.", yearMonth)
	}

	var sb strings.Builder
	var total float64
	sb.WriteString(fmt.Sprintf("🗂 %s 카테고리별 작업 시간\n\n", yearMonth))
	for _, s := range stats {
		sb.WriteString(fmt.Sprintf("• %s: %s (%d건)\n", s.Category, formatHours(s.TotalHours), s.TaskCount))
		total += s.TotalHours
	}
	sb.WriteString(fmt.Sprintf("\n합계: %s", formatHours(total)))
	return sb.String()
}

func formatHours(hours float64) string {
	return FormatMinutes(int(hours*60 + 0.5))
}
