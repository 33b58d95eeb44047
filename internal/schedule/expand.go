package schedule

import (
	"time"

	"github.com/Freeeeeet/tutor_admin_bot/internal/model"
)

// Expand раскладывает выбранные дни недели на конкретные даты месяца.
// Дни просматриваются по порядку 1..N, поэтому результат отсортирован по дате.
// Для каждого дня недели учитывается последний выбранный слот.
func Expand(month Month, slots []model.WeekdaySlot, durationMinutes int, locale Locale) []model.GeneratedSession {
	byWeekday := make(map[time.Weekday]model.WeekdaySlot, len(slots))
	for _, slot := range slots {
		if slot.Selected {
			byWeekday[slot.Weekday] = slot
		}
	}

	sessions := make([]model.GeneratedSession, 0)
	if len(byWeekday) == 0 {
		return sessions
	}

	days := month.Days()
	for day := 1; day <= days; day++ {
		date := model.Date{Year: month.Year, Month: month.Month, Day: day}
		weekday := date.Weekday()

		slot, ok := byWeekday[weekday]
		if !ok {
			continue
		}

		sessions = append(sessions, model.GeneratedSession{
			Index:           len(sessions) + 1,
			Date:            date,
			Weekday:         weekday,
			Start:           slot.Start,
			End:             slot.Start.AddMinutes(durationMinutes),
			DurationMinutes: durationMinutes,
			Title:           locale.SessionTitle(weekday),
		})
	}

	return sessions
}

// CountMatches сколько дней месяца попадает на выбранные дни недели
func CountMatches(month Month, slots []model.WeekdaySlot) int {
	return len(Expand(month, slots, 0, LocaleEN))
}
