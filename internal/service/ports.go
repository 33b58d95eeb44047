package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Freeeeeet/tutor_admin_bot/internal/model"
)

// StudentDirectory источник карточек студентов
type StudentDirectory interface {
	GetStudent(ctx context.Context, studentID int64) (*model.Student, error)
}

// SubjectDirectory источник предметов учителя
type SubjectDirectory interface {
	GetTeacherSubjects(ctx context.Context, teacherID int64) ([]model.Subject, error)
}

// SessionWriter создаёт занятия на бэкенде
type SessionWriter interface {
	CreateSession(ctx context.Context, idempotencyKey string, req model.SingleSessionRequest) error
	BulkCreateSessions(ctx context.Context, idempotencyKey string, payload model.BulkSubmission) error
}

// Backend всё, что сервисам нужно от REST API
type Backend interface {
	StudentDirectory
	SubjectDirectory
	SessionWriter
}

// Journal журнал отправок
type Journal interface {
	Create(ctx context.Context, submission *model.Submission) error
	MarkSucceeded(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// NopJournal ничего не записывает
type NopJournal struct{}

func (NopJournal) Create(ctx context.Context, submission *model.Submission) error {
	if submission.ID == uuid.Nil {
		submission.ID = uuid.New()
	}
	return nil
}

func (NopJournal) MarkSucceeded(ctx context.Context, id uuid.UUID) error          { return nil }
func (NopJournal) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error { return nil }
