package schedule

import (
	"time"

	"github.com/Freeeeeet/tutor_admin_bot/internal/model"
)

// ToUTC переводит локальное время даты date в часовом поясе loc в UTC
func ToUTC(date model.Date, tod model.TimeOfDay, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return date.In(tod, loc).UTC()
}

// SessionInstants возвращает начало и конец занятия в UTC.
// Если локальный конец перешёл через полночь, конец берётся на следующий день;
// дата занятия при этом остаётся прежней.
func SessionInstants(date model.Date, start, end model.TimeOfDay, loc *time.Location) (time.Time, time.Time) {
	startUTC := ToUTC(date, start, loc)

	endDate := date
	if !start.Before(end) {
		next := time.Date(date.Year, date.Month, date.Day+1, 12, 0, 0, 0, time.UTC)
		endDate = model.DateOf(next)
	}

	return startUTC, ToUTC(endDate, end, loc)
}
