package model

import (
	"time"
)

// DefaultSessionDuration длительность занятия в пакетном режиме
const DefaultSessionDuration = 60

// GeneratedSession строка черновика до отправки. Время локальное.
type GeneratedSession struct {
	Index           int          `json:"index"`
	Date            Date         `json:"date"`
	Weekday         time.Weekday `json:"weekday"`
	Start           TimeOfDay    `json:"start"`
	End             TimeOfDay    `json:"end"`
	DurationMinutes int          `json:"duration_minutes"`
	Title           string       `json:"title"`

	// Только для отображения
	StudentName string `json:"student_name,omitempty"`
	TeacherName string `json:"teacher_name,omitempty"`
	SubjectName string `json:"subject_name,omitempty"`
}

// SessionEntry элемент пакетного запроса, время в UTC
type SessionEntry struct {
	StudentID   int64     `json:"student_id"`
	TeacherID   int64     `json:"teacher_id"`
	SubjectID   int64     `json:"subject_id"`
	Title       string    `json:"title"`
	SessionDate Date      `json:"session_date"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

// BulkSubmission итоговый запрос на пакетное создание занятий
type BulkSubmission struct {
	SubscriptionID int64          `json:"subscription_id"`
	Sessions       []SessionEntry `json:"sessions"`
}

// SingleSessionRequest запрос на создание одного занятия, время в UTC
type SingleSessionRequest struct {
	StudentID   int64     `json:"student_id"`
	TeacherID   int64     `json:"teacher_id"`
	SubjectID   int64     `json:"subject_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	SessionDate Date      `json:"session_date"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	MeetingLink string    `json:"meeting_link"`
	Notes       string    `json:"notes"`
}
