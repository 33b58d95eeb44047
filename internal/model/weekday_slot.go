package model

import "time"

// DefaultSlotTime время, которым инициализируются все дни недели
var DefaultSlotTime = TimeOfDay{Hour: 10, Minute: 0}

// WeekdayOrder порядок отображения дней недели (Пн-Вс)
var WeekdayOrder = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// WeekdaySlot выбранный (или нет) день недели со временем начала
type WeekdaySlot struct {
	Weekday  time.Weekday `json:"weekday"`
	Start    TimeOfDay    `json:"start"`
	Selected bool         `json:"selected"`
}

// DefaultWeekdaySlots возвращает все семь дней, невыбранные, со временем по умолчанию
func DefaultWeekdaySlots() []WeekdaySlot {
	slots := make([]WeekdaySlot, 0, len(WeekdayOrder))
	for _, wd := range WeekdayOrder {
		slots = append(slots, WeekdaySlot{Weekday: wd, Start: DefaultSlotTime})
	}
	return slots
}

// SelectedSlots отбирает выбранные дни
func SelectedSlots(slots []WeekdaySlot) []WeekdaySlot {
	var selected []WeekdaySlot
	for _, slot := range slots {
		if slot.Selected {
			selected = append(selected, slot)
		}
	}
	return selected
}
