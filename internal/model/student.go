package model

// Student карточка студента из бэкенда
type Student struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	Subscription Subscription
}
