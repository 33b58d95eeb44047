package common

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/tutor_admin_bot/internal/model"
	"github.com/Freeeeeet/tutor_admin_bot/internal/schedule"
	"github.com/Freeeeeet/tutor_admin_bot/internal/service"
	"github.com/go-telegram/bot/models"
)

// Callback data мастера пакетного планирования
const (
	SchedSubject     = "sched_subject:" // sched_subject:subject_id
	SchedMonth       = "sched_month:"   // sched_month:2026-08
	SchedWeekday     = "sched_wd:"      // sched_wd:1 (time.Weekday)
	SchedWeekdayTime = "sched_wdtime:"  // sched_wdtime:1
	SchedPickSubject = "sched_pick_subject"
	SchedPickMonth   = "sched_pick_month"
	SchedStudent     = "sched_student"
	SchedTeacher     = "sched_teacher"
	SchedEdit        = "sched_edit"
	SchedPreview     = "sched_preview"
	SchedBack        = "sched_back"
	SchedConfirm     = "sched_confirm"
	SchedCancel      = "sched_cancel"
)

// Callback data одиночного занятия
const (
	SessionSubject  = "session_subject:" // session_subject:subject_id
	SessionSkipLink = "session_skip_link"
	SessionSkipDesc = "session_skip_desc"
	SessionSkipNote = "session_skip_notes"
	SessionConfirm  = "session_confirm"
	SessionCancel   = "session_cancel"
)

// MonthsAhead сколько месяцев предлагать на выбор, включая текущий
const MonthsAhead = 6

// QuotaLine описывает состояние подписки выбранного студента
func QuotaLine(q service.QuotaState) string {
	switch q.Status {
	case service.QuotaIdle:
		return "не выбран студент"
	case service.QuotaLoading:
		return "⏳ загрузка..."
	case service.QuotaFailed:
		return "⚠️ не удалось загрузить"
	}

	switch sub := q.Subscription().(type) {
	case model.Subscribed:
		s := sub.Snapshot
		line := fmt.Sprintf("%s, осталось %d из %d (использовано %d)",
			html.EscapeString(s.PlanName), s.SessionsRemaining, s.TotalSessions, s.SessionsUsed)
		if s.StartDate != "" || s.EndDate != "" {
			line += fmt.Sprintf(", %s - %s", s.StartDate, s.EndDate)
		}
		return line
	default:
		return "🚫 нет активной подписки"
	}
}

func studentLine(view service.BulkView) string {
	if view.Form.StudentID <= 0 {
		return "не выбран"
	}
	if view.Quota.StudentID == view.Form.StudentID && view.Quota.Student != nil {
		return fmt.Sprintf("#%d %s", view.Form.StudentID, html.EscapeString(view.Quota.Student.Name))
	}
	return fmt.Sprintf("#%d", view.Form.StudentID)
}

func teacherLine(view service.BulkView) string {
	if view.Form.TeacherID <= 0 {
		return "не выбран"
	}
	return fmt.Sprintf("#%d", view.Form.TeacherID)
}

func subjectLine(view service.BulkView) string {
	if view.Form.Subject != nil {
		return html.EscapeString(view.Form.Subject.Name)
	}
	switch view.Subjects.Status {
	case service.SubjectsLoading:
		return "⏳ загрузка списка..."
	case service.SubjectsFailed:
		return "⚠️ не удалось загрузить список"
	}
	return "не выбран"
}

func monthLine(view service.BulkView, locale schedule.Locale) string {
	if view.Form.Month.IsZero() {
		return "не выбран"
	}
	return locale.MonthLabel(view.Form.Month)
}

// BuildWizardScreen формирует экран редактирования мастера
func BuildWizardScreen(view service.BulkView, locale schedule.Locale) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder

	sb.WriteString("🗓 <b>Пакетное планирование</b>\n\n")
	fmt.Fprintf(&sb, "👤 Студент: %s\n", studentLine(view))
	fmt.Fprintf(&sb, "💳 Подписка: %s\n", QuotaLine(view.Quota))
	fmt.Fprintf(&sb, "👨‍🏫 Учитель: %s\n", teacherLine(view))
	fmt.Fprintf(&sb, "📚 Предмет: %s\n", subjectLine(view))
	fmt.Fprintf(&sb, "📅 Месяц: %s\n", monthLine(view, locale))
	fmt.Fprintf(&sb, "⏱ Длительность: %s\n\n", formatting.FormatDuration(view.DurationMinutes))

	selected := model.SelectedSlots(view.Form.Slots)
	if len(selected) == 0 {
		sb.WriteString("Отметьте дни недели и время начала занятий.")
	} else if !view.Form.Month.IsZero() {
		count := schedule.CountMatches(view.Form.Month, view.Form.Slots)
		fmt.Fprintf(&sb, "Получится %d %s.", count, formatting.PluralizeSessions(count))
	}

	kb := keyboard.NewBuilder()
	for _, slot := range view.Form.Slots {
		mark := "▫️"
		if slot.Selected {
			mark = "✅"
		}
		kb.Row(
			keyboard.Button(
				fmt.Sprintf("%s %s %s", mark, locale.WeekdayShortName(slot.Weekday), slot.Start),
				fmt.Sprintf("%s%d", SchedWeekday, int(slot.Weekday)),
			),
			keyboard.Button("🕒 Время", fmt.Sprintf("%s%d", SchedWeekdayTime, int(slot.Weekday))),
		)
	}
	kb.Row(
		keyboard.Button("👤 Студент", SchedStudent),
		keyboard.Button("👨‍🏫 Учитель", SchedTeacher),
	)
	kb.Row(
		keyboard.Button("📚 Предмет", SchedPickSubject),
		keyboard.Button("📅 Месяц", SchedPickMonth),
	)
	kb.Row(keyboard.Button("👁 Сформировать превью", SchedPreview))
	kb.Row(keyboard.CancelButton(SchedCancel))

	return sb.String(), kb.Build()
}

// BuildSubjectsKeyboard кнопки выбора предмета
func BuildSubjectsKeyboard(subjects []model.Subject, prefix, backData string) *models.InlineKeyboardMarkup {
	kb := keyboard.NewBuilder()
	for _, subject := range subjects {
		kb.Row(keyboard.Button("📚 "+subject.Name, fmt.Sprintf("%s%d", prefix, subject.ID)))
	}
	if backData != "" {
		kb.Row(keyboard.BackButton(backData))
	}
	return kb.Build()
}

// BuildMonthKeyboard кнопки выбора месяца начиная с текущего
func BuildMonthKeyboard(now time.Time, locale schedule.Locale) *models.InlineKeyboardMarkup {
	kb := keyboard.NewBuilder()
	month := schedule.MonthOf(now)

	var row []models.InlineKeyboardButton
	for i := 0; i < MonthsAhead; i++ {
		row = append(row, keyboard.Button(locale.MonthLabel(month), SchedMonth+month.String()))
		if len(row) == 2 {
			kb.AddRow(row)
			row = nil
		}
		month = month.Next()
	}
	kb.AddRow(row)
	kb.Row(keyboard.BackButton(SchedEdit))

	return kb.Build()
}

// BuildPreviewScreen формирует экран превью черновика
func BuildPreviewScreen(view service.BulkView, locale schedule.Locale) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📋 <b>Превью: %s</b>\n\n", monthLine(view, locale))
	fmt.Fprintf(&sb, "👤 %s · 📚 %s · 👨‍🏫 %s\n\n", studentLine(view), subjectLine(view), teacherLine(view))

	for _, s := range view.Draft {
		fmt.Fprintf(&sb, "%d. %s %s %s\n",
			s.Index,
			formatting.FormatDayWithWeekday(s.Date, locale),
			formatting.FormatTimeRange(s.Start, s.End),
			html.EscapeString(s.Title),
		)
	}

	count := len(view.Draft)
	fmt.Fprintf(&sb, "\nВсего: %d %s\n", count, formatting.PluralizeSessions(count))
	fmt.Fprintf(&sb, "Останется после бронирования: %d", view.RemainingAfter)

	kb := keyboard.NewBuilder().
		Row(keyboard.ConfirmButton(SchedConfirm)).
		Row(keyboard.Button("✏️ Назад к редактированию", SchedBack)).
		Row(keyboard.CancelButton(SchedCancel))

	return sb.String(), kb.Build()
}

// BuildEmptyPreviewText сообщение, когда в месяце нет подходящих дней
func BuildEmptyPreviewText(view service.BulkView, locale schedule.Locale) string {
	return fmt.Sprintf("ℹ️ В месяце %s нет выбранных дней недели. Измените выбор.", monthLine(view, locale))
}

// BuildBulkResultText сообщение об успешном создании пакета
func BuildBulkResultText(result *service.BulkResult) string {
	return fmt.Sprintf("✅ Создано %d %s по подписке #%d",
		result.Count, formatting.PluralizeSessions(result.Count), result.SubscriptionID)
}

// BuildSingleConfirmScreen экран подтверждения одиночного занятия
func BuildSingleConfirmScreen(in service.SingleSessionInput, subjectName string) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder

	sb.WriteString("📝 <b>Новое занятие</b>\n\n")
	fmt.Fprintf(&sb, "👤 Студент: #%d\n", in.StudentID)
	fmt.Fprintf(&sb, "👨‍🏫 Учитель: #%d\n", in.TeacherID)
	fmt.Fprintf(&sb, "📚 Предмет: %s\n", html.EscapeString(subjectName))
	fmt.Fprintf(&sb, "🏷 Название: %s\n", html.EscapeString(in.Title))
	fmt.Fprintf(&sb, "📅 Дата: %s\n", in.SessionDate)
	fmt.Fprintf(&sb, "🕒 Время: %s-%s\n", in.StartTime, in.EndTime)
	if in.MeetingLink != "" {
		fmt.Fprintf(&sb, "🔗 Ссылка: %s\n", html.EscapeString(in.MeetingLink))
	}
	if in.Description != "" {
		fmt.Fprintf(&sb, "📄 Описание: %s\n", html.EscapeString(in.Description))
	}
	if in.Notes != "" {
		fmt.Fprintf(&sb, "🗒 Заметки: %s\n", html.EscapeString(in.Notes))
	}

	kb := keyboard.NewBuilder().
		Row(keyboard.ConfirmButton(SessionConfirm)).
		Row(keyboard.CancelButton(SessionCancel))

	return sb.String(), kb.Build()
}

// BuildHistoryText список последних отправок чата
func BuildHistoryText(submissions []*model.Submission, loc *time.Location) string {
	if len(submissions) == 0 {
		return "🧾 Отправок пока не было."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🧾 <b>Последние %d %s</b>\n\n", len(submissions), formatting.PluralizeSubmissions(len(submissions)))

	for _, s := range submissions {
		display := formatting.GetSubmissionStatusDisplay(s.Status)
		fmt.Fprintf(&sb, "%s %s, %s, %d %s, студент #%d",
			display.Emoji,
			formatting.FormatDateTime(s.CreatedAt.In(loc)),
			formatting.GetSubmissionKindText(s.Kind),
			s.SessionCount,
			formatting.PluralizeSessions(s.SessionCount),
			s.StudentID,
		)
		if s.Error != "" {
			fmt.Fprintf(&sb, "\n    %s", html.EscapeString(s.Error))
		}
		fmt.Fprintf(&sb, "\n    🆔 <code>%s</code>\n", s.ID)
	}

	sb.WriteString("\nПодробнее: /history &lt;id&gt;")
	return sb.String()
}

// BuildSubmissionDetailText карточка одной отправки
func BuildSubmissionDetailText(s *model.Submission, loc *time.Location) string {
	display := formatting.GetSubmissionStatusDisplay(s.Status)

	var sb strings.Builder
	fmt.Fprintf(&sb, "🧾 <b>Отправка</b> <code>%s</code>\n\n", s.ID)
	fmt.Fprintf(&sb, "Тип: %s\n", formatting.GetSubmissionKindText(s.Kind))
	fmt.Fprintf(&sb, "Статус: %s %s\n", display.Emoji, display.Text)
	fmt.Fprintf(&sb, "Студент: #%d\n", s.StudentID)
	if s.SubscriptionID != nil {
		fmt.Fprintf(&sb, "Подписка: #%d\n", *s.SubscriptionID)
	}
	fmt.Fprintf(&sb, "Занятий: %d\n", s.SessionCount)
	fmt.Fprintf(&sb, "Создана: %s\n", formatting.FormatDateTime(s.CreatedAt.In(loc)))
	if !s.UpdatedAt.IsZero() && !s.UpdatedAt.Equal(s.CreatedAt) {
		fmt.Fprintf(&sb, "Обновлена: %s\n", formatting.FormatDateTime(s.UpdatedAt.In(loc)))
	}
	if s.Error != "" {
		fmt.Fprintf(&sb, "\n⚠️ %s\n", html.EscapeString(s.Error))
	}

	return sb.String()
}
