package model

import (
	"time"

	"github.com/google/uuid"
)

type SubmissionKind string

const (
	SubmissionKindBulk   SubmissionKind = "bulk"
	SubmissionKindSingle SubmissionKind = "single"
)

type SubmissionStatus string

const (
	SubmissionStatusPending   SubmissionStatus = "pending"   // Запрос отправлен
	SubmissionStatusSucceeded SubmissionStatus = "succeeded" // Бэкенд принял
	SubmissionStatusFailed    SubmissionStatus = "failed"    // Ошибка сети или отказ бэкенда
)

// Submission запись журнала отправок
type Submission struct {
	ID             uuid.UUID        `json:"id"`
	Kind           SubmissionKind   `json:"kind"`
	ChatID         int64            `json:"chat_id"`
	StudentID      int64            `json:"student_id"`
	SubscriptionID *int64           `json:"subscription_id"` // nil для одиночного занятия
	SessionCount   int              `json:"session_count"`
	Status         SubmissionStatus `json:"status"`
	Error          string           `json:"error"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
