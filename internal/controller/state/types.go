package state

import "time"

// UserState представляет текущее состояние чата в диалоге
type UserState string

const (
	StateNone UserState = "" // Нет активного состояния

	// Мастер пакетного планирования (ввод текстом)
	StateScheduleStudentID   UserState = "schedule_student_id"
	StateScheduleTeacherID   UserState = "schedule_teacher_id"
	StateScheduleWeekdayTime UserState = "schedule_weekday_time"

	// Одиночное занятие
	StateSessionStudentID   UserState = "session_student_id"
	StateSessionTeacherID   UserState = "session_teacher_id"
	StateSessionSubject     UserState = "session_subject"
	StateSessionTitle       UserState = "session_title"
	StateSessionDate        UserState = "session_date"
	StateSessionStart       UserState = "session_start"
	StateSessionEnd         UserState = "session_end"
	StateSessionLink        UserState = "session_link"
	StateSessionDescription UserState = "session_description"
	StateSessionNotes       UserState = "session_notes"
	StateSessionConfirm     UserState = "session_confirm"
)

// Ключи временных данных
const (
	KeyWeekday     = "weekday"
	KeyStudentID   = "student_id"
	KeyTeacherID   = "teacher_id"
	KeySubjectID   = "subject_id"
	KeySubjectName = "subject_name"
	KeySubjects    = "subjects"
	KeyTitle       = "title"
	KeyDate        = "session_date"
	KeyStart       = "start_time"
	KeyEnd         = "end_time"
	KeyLink        = "meeting_link"
	KeyDescription = "description"
	KeyNotes       = "notes"
	KeyRequestKey  = "request_key" // Ключ идемпотентности диалога
)

// UserData хранит временные данные чата во время диалога
type UserData struct {
	State   UserState
	Data    map[string]any // Временные данные для текущего диалога
	Touched time.Time
}
