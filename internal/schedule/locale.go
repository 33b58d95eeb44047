package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Locale язык подписей. Влияет только на тексты, но не на сопоставление дней недели.
type Locale string

const (
	LocaleRU Locale = "ru"
	LocaleEN Locale = "en"
)

// ParseLocale приводит код языка к поддерживаемой локали
func ParseLocale(code string) (Locale, error) {
	switch Locale(strings.ToLower(strings.TrimSpace(code))) {
	case LocaleRU:
		return LocaleRU, nil
	case LocaleEN:
		return LocaleEN, nil
	default:
		return "", fmt.Errorf("unsupported locale %q", code)
	}
}

var weekdayNames = map[Locale][7]string{
	LocaleRU: {"Воскресенье", "Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота"},
	LocaleEN: {"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
}

var weekdayShortNames = map[Locale][7]string{
	LocaleRU: {"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"},
	LocaleEN: {"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
}

var monthNames = map[Locale][12]string{
	LocaleRU: {"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь", "Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь"},
	LocaleEN: {"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
}

func (l Locale) known() Locale {
	if _, ok := weekdayNames[l]; ok {
		return l
	}
	return LocaleRU
}

// WeekdayName полное название дня недели
func (l Locale) WeekdayName(wd time.Weekday) string {
	if wd < time.Sunday || wd > time.Saturday {
		return "?"
	}
	return weekdayNames[l.known()][wd]
}

// WeekdayShortName краткое название дня недели
func (l Locale) WeekdayShortName(wd time.Weekday) string {
	if wd < time.Sunday || wd > time.Saturday {
		return "?"
	}
	return weekdayShortNames[l.known()][wd]
}

// MonthName название месяца
func (l Locale) MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return "?"
	}
	return monthNames[l.known()][m-1]
}

// MonthLabel подпись месяца с годом, например "Ноябрь 2026"
func (l Locale) MonthLabel(m Month) string {
	return fmt.Sprintf("%s %d", l.MonthName(m.Month), m.Year)
}

// SessionTitle заголовок занятия, построенный из названия дня недели
func (l Locale) SessionTitle(wd time.Weekday) string {
	if l.known() == LocaleEN {
		return l.WeekdayName(wd) + " session"
	}
	return "Занятие: " + l.WeekdayName(wd)
}
