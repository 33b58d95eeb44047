package schedule

import (
	"fmt"
	"time"
)

// Month конкретный месяц конкретного года
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf месяц, в котором лежит t
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth разбирает строку вида "2026-11"
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

// Days количество дней в месяце с учётом високосных лет.
// time.Date нормализует нулевой день следующего месяца в последний день текущего.
func (m Month) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Next следующий месяц
func (m Month) Next() Month {
	return MonthOf(time.Date(m.Year, m.Month+1, 1, 0, 0, 0, 0, time.UTC))
}

// IsZero месяц не выбран
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}
