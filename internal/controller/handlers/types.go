package handlers

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/state"
	"github.com/Freeeeeet/tutor_admin_bot/internal/model"
	"github.com/Freeeeeet/tutor_admin_bot/internal/schedule"
	"github.com/Freeeeeet/tutor_admin_bot/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubmissionHistory источник последних отправок чата
type SubmissionHistory interface {
	ListRecentByChat(ctx context.Context, chatID int64, limit int) ([]*model.Submission, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error)
}

// WizardFactory создаёт новый мастер пакетного планирования для чата
type WizardFactory func(chatID int64) *service.BulkScheduler

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	stateManager *state.Manager
	sessions     *service.SingleSessionService
	subjects     service.SubjectDirectory
	history      SubmissionHistory
	newWizard    WizardFactory
	locale       schedule.Locale
	location     *time.Location
	logger       *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	stateManager *state.Manager,
	sessions *service.SingleSessionService,
	subjects service.SubjectDirectory,
	history SubmissionHistory,
	newWizard WizardFactory,
	locale schedule.Locale,
	location *time.Location,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		stateManager: stateManager,
		sessions:     sessions,
		subjects:     subjects,
		history:      history,
		newWizard:    newWizard,
		locale:       locale,
		location:     location,
		logger:       logger,
	}
}
