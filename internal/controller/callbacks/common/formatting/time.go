package formatting

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_admin_bot/internal/model"
	"github.com/Freeeeeet/tutor_admin_bot/internal/schedule"
)

// FormatDateTime форматирует дату и время
func FormatDateTime(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}

// FormatDate форматирует гражданскую дату
func FormatDate(d model.Date) string {
	return fmt.Sprintf("%02d.%02d.%d", d.Day, int(d.Month), d.Year)
}

// FormatDayWithWeekday форматирует дату занятия: "03.08 (Пн)"
func FormatDayWithWeekday(d model.Date, locale schedule.Locale) string {
	return fmt.Sprintf("%02d.%02d (%s)", d.Day, int(d.Month), locale.WeekdayShortName(d.Weekday()))
}

// FormatTimeRange форматирует диапазон времени
func FormatTimeRange(start, end model.TimeOfDay) string {
	return fmt.Sprintf("%s-%s", start, end)
}

// FormatDuration форматирует длительность в минутах
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d мин", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins == 0 {
		return fmt.Sprintf("%d ч", hours)
	}
	return fmt.Sprintf("%d ч %d мин", hours, mins)
}
