package schedule

import (
	"errors"
	"fmt"

	"github.com/Freeeeeet/tutor_admin_bot/internal/model"
)

var (
	ErrNoActiveSubscription = errors.New("no active subscription")
	ErrQuotaUnavailable     = errors.New("subscription data unavailable")
)

// QuotaExceededError запрошено больше занятий, чем осталось в подписке
type QuotaExceededError struct {
	Requested int
	Remaining int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: %d requested, %d remaining", e.Requested, e.Remaining)
}

// ValidateQuota проверяет, хватает ли остатка подписки на requested занятий.
// Без активной подписки проверка не проходит независимо от количества.
func ValidateQuota(requested int, sub model.Subscription) error {
	switch s := sub.(type) {
	case model.Subscribed:
		if requested > s.Snapshot.SessionsRemaining {
			return &QuotaExceededError{
				Requested: requested,
				Remaining: s.Snapshot.SessionsRemaining,
			}
		}
		return nil
	case model.Unsubscribed:
		return ErrNoActiveSubscription
	default:
		return ErrQuotaUnavailable
	}
}

// RemainingAfter остаток подписки после бронирования count занятий.
// Отрицательным не бывает: при нехватке возвращается ошибка.
func RemainingAfter(count int, sub model.Subscription) (int, error) {
	if err := ValidateQuota(count, sub); err != nil {
		return 0, err
	}
	return sub.(model.Subscribed).Snapshot.SessionsRemaining - count, nil
}
