package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_admin_bot/internal/model"
	"github.com/Freeeeeet/tutor_admin_bot/internal/schedule"
)

// SingleSessionInput поля формы одиночного занятия (локальное время)
type SingleSessionInput struct {
	StudentID   int64  `json:"student_id" validate:"gt=0"`
	TeacherID   int64  `json:"teacher_id" validate:"gt=0"`
	SubjectID   int64  `json:"subject_id" validate:"gt=0"`
	Title       string `json:"title" validate:"notblank,max=200"`
	Description string `json:"description" validate:"max=2000"`
	SessionDate string `json:"session_date" validate:"required,datetime=2006-01-02"`
	StartTime   string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime     string `json:"end_time" validate:"required,datetime=15:04"`
	MeetingLink string `json:"meeting_link" validate:"omitempty,url"`
	Notes       string `json:"notes" validate:"max=2000"`

	// Один ключ на диалог: повторное подтверждение не создаёт второе занятие
	IdempotencyKey string `json:"-" validate:"-"`
}

// SingleSessionService создаёт одно занятие сразу, без черновика
type SingleSessionService struct {
	backend  Backend
	journal  Journal
	validate *validator.Validate
	location *time.Location
	logger   *zap.Logger
}

func NewSingleSessionService(backend Backend, journal Journal, location *time.Location, logger *zap.Logger) *SingleSessionService {
	if journal == nil {
		journal = NopJournal{}
	}
	if location == nil {
		location = time.UTC
	}
	return &SingleSessionService{
		backend:  backend,
		journal:  journal,
		validate: newValidator(),
		location: location,
		logger:   logger,
	}
}

// Validate проверяет форму без обращения к сети
func (s *SingleSessionService) Validate(in SingleSessionInput) error {
	if err := s.validate.Struct(in); err != nil {
		return toInputError(err)
	}

	start, _ := model.ParseTimeOfDay(in.StartTime)
	end, _ := model.ParseTimeOfDay(in.EndTime)
	if !start.Before(end) {
		return ErrEndNotAfterStart
	}
	return nil
}

// BuildRequest переводит локальные дату и время в UTC
func (s *SingleSessionService) BuildRequest(in SingleSessionInput) (model.SingleSessionRequest, error) {
	date, err := model.ParseDate(in.SessionDate)
	if err != nil {
		return model.SingleSessionRequest{}, err
	}
	start, err := model.ParseTimeOfDay(in.StartTime)
	if err != nil {
		return model.SingleSessionRequest{}, err
	}
	end, err := model.ParseTimeOfDay(in.EndTime)
	if err != nil {
		return model.SingleSessionRequest{}, err
	}

	startUTC, endUTC := schedule.SessionInstants(date, start, end, s.location)

	return model.SingleSessionRequest{
		StudentID:   in.StudentID,
		TeacherID:   in.TeacherID,
		SubjectID:   in.SubjectID,
		Title:       in.Title,
		Description: in.Description,
		SessionDate: date,
		StartTime:   startUTC,
		EndTime:     endUTC,
		MeetingLink: in.MeetingLink,
		Notes:       in.Notes,
	}, nil
}

// Create проверяет форму и подписку студента и сразу создаёт занятие
func (s *SingleSessionService) Create(ctx context.Context, chatID int64, in SingleSessionInput) error {
	if err := s.Validate(in); err != nil {
		return err
	}

	student, err := s.backend.GetStudent(ctx, in.StudentID)
	if err != nil {
		return fmt.Errorf("%w: %w", schedule.ErrQuotaUnavailable, err)
	}

	if err := schedule.ValidateQuota(1, student.Subscription); err != nil {
		s.logger.Info("Single session rejected by quota",
			zap.Int64("student_id", in.StudentID),
			zap.Error(err))
		return err
	}

	req, err := s.BuildRequest(in)
	if err != nil {
		return err
	}

	record := &model.Submission{
		Kind:         model.SubmissionKindSingle,
		ChatID:       chatID,
		StudentID:    in.StudentID,
		SessionCount: 1,
		Status:       model.SubmissionStatusPending,
	}
	if err := s.journal.Create(ctx, record); err != nil {
		s.logger.Warn("Failed to journal submission", zap.Error(err))
	}

	key := in.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}

	if err := s.backend.CreateSession(ctx, key, req); err != nil {
		s.logger.Error("Failed to create session",
			zap.Int64("student_id", in.StudentID),
			zap.Error(err))
		if jerr := s.journal.MarkFailed(ctx, record.ID, err.Error()); jerr != nil {
			s.logger.Warn("Failed to journal submission failure", zap.Error(jerr))
		}
		return err
	}

	if err := s.journal.MarkSucceeded(ctx, record.ID); err != nil {
		s.logger.Warn("Failed to journal submission success", zap.Error(err))
	}

	s.logger.Info("Session created",
		zap.Int64("student_id", in.StudentID),
		zap.Int64("teacher_id", in.TeacherID),
		zap.Time("start_time", req.StartTime))

	return nil
}
