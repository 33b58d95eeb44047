package formatting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Freeeeeet/tutor_admin_bot/internal/model"
	"github.com/Freeeeeet/tutor_admin_bot/internal/schedule"
)

func TestPluralizeSessions(t *testing.T) {
	cases := map[int]string{
		0:   "занятий",
		1:   "занятие",
		2:   "занятия",
		4:   "занятия",
		5:   "занятий",
		11:  "занятий",
		12:  "занятий",
		21:  "занятие",
		22:  "занятия",
		31:  "занятие",
		111: "занятий",
	}
	for count, want := range cases {
		assert.Equal(t, want, PluralizeSessions(count), "count=%d", count)
	}
}

func TestFormatDayWithWeekday(t *testing.T) {
	d := model.Date{Year: 2026, Month: time.August, Day: 3}

	assert.Equal(t, "03.08 (Пн)", FormatDayWithWeekday(d, schedule.LocaleRU))
	assert.Equal(t, "03.08 (Mon)", FormatDayWithWeekday(d, schedule.LocaleEN))
	assert.Equal(t, "03.08.2026", FormatDate(d))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45 мин", FormatDuration(45))
	assert.Equal(t, "1 ч", FormatDuration(60))
	assert.Equal(t, "1 ч 30 мин", FormatDuration(90))
}
