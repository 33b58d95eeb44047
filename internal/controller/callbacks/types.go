package callbacks

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/state"
	"github.com/Freeeeeet/tutor_admin_bot/internal/schedule"
	"github.com/Freeeeeet/tutor_admin_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Handler обертка для callbacktypes.Handler с методами
type Handler struct {
	*callbacktypes.Handler
}

// NewHandler создаёт новый обработчик callbacks с зависимостями
func NewHandler(
	stateManager *state.Manager,
	sessions *service.SingleSessionService,
	subjects service.SubjectDirectory,
	locale schedule.Locale,
	location *time.Location,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Handler: &callbacktypes.Handler{
			StateManager: stateManager,
			Sessions:     sessions,
			Subjects:     subjects,
			Locale:       locale,
			Location:     location,
			Logger:       logger,
		},
	}
}

// HandleCallbackQuery точка входа для всех нажатий на inline кнопки
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	Route(ctx, b, update.CallbackQuery, h.Handler)
}
