package common

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutor_admin_bot/internal/backend"
	"github.com/Freeeeeet/tutor_admin_bot/internal/schedule"
	"github.com/Freeeeeet/tutor_admin_bot/internal/service"
)

// Общие ошибки для обработчиков
var (
	ErrNoMessage     = errors.New("no message in callback")
	ErrInvalidFormat = errors.New("invalid callback format")
	ErrNoWizard      = errors.New("no open scheduler in chat")
)

// fieldNames подписи полей формы одиночного занятия
var fieldNames = map[string]string{
	"student_id":   "ID студента",
	"teacher_id":   "ID учителя",
	"subject_id":   "предмет",
	"title":        "название",
	"description":  "описание",
	"session_date": "дата",
	"start_time":   "время начала",
	"end_time":     "время окончания",
	"meeting_link": "ссылка на встречу",
	"notes":        "заметки",
}

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	var quotaErr *schedule.QuotaExceededError
	var inputErr *service.InputError
	var rejectedErr *backend.RejectedError

	switch {
	case errors.As(err, &quotaErr):
		return fmt.Sprintf("❌ Недостаточно занятий в подписке: нужно %d, осталось %d", quotaErr.Requested, quotaErr.Remaining)
	case errors.Is(err, schedule.ErrNoActiveSubscription):
		return "❌ У студента нет активной подписки"
	case errors.Is(err, schedule.ErrQuotaUnavailable):
		return "⚠️ Не удалось загрузить подписку студента. Выберите студента ещё раз"
	case errors.Is(err, service.ErrQuotaLoading):
		return "⏳ Подписка студента ещё загружается"
	case errors.Is(err, service.ErrMissingStudent):
		return "❌ Выберите студента"
	case errors.Is(err, service.ErrMissingTeacher):
		return "❌ Выберите учителя"
	case errors.Is(err, service.ErrMissingSubject):
		return "❌ Выберите предмет"
	case errors.Is(err, service.ErrMissingMonth):
		return "❌ Выберите месяц"
	case errors.Is(err, service.ErrNoWeekdaySelected):
		return "❌ Отметьте хотя бы один день недели"
	case errors.Is(err, service.ErrUnknownSubject):
		return "❌ Предмет не относится к выбранному учителю"
	case errors.Is(err, service.ErrInvalidWeekdayTime):
		return "❌ Неверное время. Используйте формат ЧЧ:ММ"
	case errors.Is(err, service.ErrEndNotAfterStart):
		return "❌ Время окончания должно быть позже времени начала"
	case errors.Is(err, service.ErrWrongPhase):
		return "❌ Это действие сейчас недоступно"
	case errors.Is(err, service.ErrSuperseded):
		return "ℹ️ Выбор изменился, ответ устарел"
	case errors.As(err, &inputErr):
		return "❌ Проверьте поля: " + describeFields(inputErr.Fields)
	case errors.As(err, &rejectedErr):
		if rejectedErr.Message != "" {
			return "❌ Сервер отклонил запрос: " + rejectedErr.Message
		}
		return "❌ Сервер отклонил запрос"
	case errors.Is(err, backend.ErrNotFound):
		return "❌ Не найдено на сервере"
	case errors.Is(err, backend.ErrUnauthorized):
		return "❌ Нет доступа к API платформы"
	case errors.Is(err, ErrNoWizard):
		return "❌ Мастер не открыт. Начните заново: /schedule"
	case errors.Is(err, ErrNoMessage):
		return "❌ Ошибка обработки сообщения"
	case errors.Is(err, ErrInvalidFormat):
		return "❌ Неверный формат данных"
	default:
		return "❌ Произошла ошибка. Попробуйте позже."
	}
}

func describeFields(fields []string) string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if name, ok := fieldNames[f]; ok {
			names = append(names, name)
		} else {
			names = append(names, f)
		}
	}
	return strings.Join(names, ", ")
}
