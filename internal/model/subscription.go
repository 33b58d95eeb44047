package model

// SubscriptionSnapshot активная подписка студента на момент планирования.
// SessionsRemaining берётся от бэкенда как есть и локально не пересчитывается.
type SubscriptionSnapshot struct {
	ID                int64  `json:"id"`
	PlanID            int64  `json:"plan_id"`
	PlanName          string `json:"plan_name"`
	SessionsRemaining int    `json:"sessions_remaining"`
	SessionsUsed      int    `json:"sessions_used"`
	TotalSessions     int    `json:"total_sessions"`
	StartDate         string `json:"start_date"`
	EndDate           string `json:"end_date"`
}

// Subscription либо Subscribed, либо Unsubscribed.
// Потребители обязаны разбирать оба варианта через type switch.
type Subscription interface {
	isSubscription()
}

// Subscribed у студента есть активная подписка
type Subscribed struct {
	Snapshot SubscriptionSnapshot
}

// Unsubscribed активной подписки нет (это не ошибка)
type Unsubscribed struct{}

func (Subscribed) isSubscription()   {}
func (Unsubscribed) isSubscription() {}
