package callbacktypes

import (
	"time"

	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/state"
	"github.com/Freeeeeet/tutor_admin_bot/internal/schedule"
	"github.com/Freeeeeet/tutor_admin_bot/internal/service"
	"go.uber.org/zap"
)

// Handler содержит общие зависимости для всех callback handlers
type Handler struct {
	StateManager *state.Manager
	Sessions     *service.SingleSessionService
	Subjects     service.SubjectDirectory
	Locale       schedule.Locale
	Location     *time.Location
	Logger       *zap.Logger
}
