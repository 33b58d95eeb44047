package callbacks

import (
	"context"
	"strings"

	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/callbacks/wizard"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Noop кнопка без действия
const Noop = "noop"

// Route распределяет callback query по соответствующим обработчикам
func Route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	data := callback.Data

	h.Logger.Info("Routing callback",
		zap.String("data", data),
		zap.Int64("user_id", callback.From.ID),
		zap.String("user_name", callback.From.FirstName))

	hc := common.NewHandlerContext(ctx, b, callback, h)

	switch {
	case data == Noop:
		hc.Answer("")

	// ===== Bulk scheduler =====
	case strings.HasPrefix(data, common.SchedSubject):
		wizard.HandleSubject(hc)
	case strings.HasPrefix(data, common.SchedMonth):
		wizard.HandleMonth(hc)
	case strings.HasPrefix(data, common.SchedWeekdayTime):
		wizard.HandleWeekdayTime(hc)
	case strings.HasPrefix(data, common.SchedWeekday):
		wizard.HandleToggleWeekday(hc)
	case data == common.SchedPickSubject:
		wizard.HandlePickSubject(hc)
	case data == common.SchedPickMonth:
		wizard.HandlePickMonth(hc)
	case data == common.SchedStudent:
		wizard.HandleAskStudent(hc)
	case data == common.SchedTeacher:
		wizard.HandleAskTeacher(hc)
	case data == common.SchedEdit:
		wizard.HandleShow(hc)
	case data == common.SchedPreview:
		wizard.HandlePreview(hc)
	case data == common.SchedBack:
		wizard.HandleBackToEdit(hc)
	case data == common.SchedConfirm:
		wizard.HandleConfirm(hc)
	case data == common.SchedCancel:
		wizard.HandleCancel(hc)

	// ===== Single session =====
	case strings.HasPrefix(data, common.SessionSubject):
		wizard.HandleSessionSubject(hc)
	case data == common.SessionSkipLink:
		wizard.HandleSessionSkipLink(hc)
	case data == common.SessionSkipDesc:
		wizard.HandleSessionSkipDescription(hc)
	case data == common.SessionSkipNote:
		wizard.HandleSessionSkipNotes(hc)
	case data == common.SessionConfirm:
		wizard.HandleSessionConfirm(hc)
	case data == common.SessionCancel:
		wizard.HandleSessionCancel(hc)

	default:
		h.Logger.Warn("Unknown callback", zap.String("data", data))
		hc.AnswerAlert("❌ Неизвестная команда")
	}
}
