package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gerardthecreator/taller-citas/internal/model"
	"github.com/gerardthecreator/taller-citas/internal/notification"
	"github.com/gerardthecreator/taller-citas/internal/telegram"
)

// TelegramWebhook handles POST /api/telegram/webhook. The response is
// always 200 "OK": anything else makes Telegram redeliver the update, so
// processing failures are logged and swallowed.
func (h *Handler) TelegramWebhook(c *gin.Context) {
	var update telegram.Update
	if err := c.ShouldBindJSON(&update); err == nil && update.CallbackQuery != nil {
		h.applyDecision(c.Request.Context(), update.CallbackQuery)
	}

	c.String(http.StatusOK, "OK")
}

// applyDecision resolves a button press: update the stored status, edit the
// operator message to show the resolution, then queue the push notice.
func (h *Handler) applyDecision(ctx context.Context, cb *telegram.CallbackQuery) {
	// Callback data is "<action>_<id>". Push keys may themselves contain
	// underscores, so only the first one delimits.
	action, id, _ := strings.Cut(cb.Data, "_")

	status := model.StatusDenied
	if action == "aceptar" {
		status = model.StatusAccepted
	}

	if err := h.bookings.UpdateStatus(ctx, id, status); err != nil {
		h.logger.Error("failed to update booking status",
			zap.String("booking_id", id), zap.Error(err))
		return
	}

	if cb.Message != nil {
		text := fmt.Sprintf("%s\n\n*--- ESTADO: %s ---*",
			cb.Message.Text, strings.ToUpper(string(status)))
		// Editing without reply markup drops the buttons.
		err := h.telegram.EditMessageText(ctx, cb.Message.Chat.ID, cb.Message.MessageID, text)
		if err != nil {
			h.logger.Error("failed to edit operator message",
				zap.String("booking_id", id), zap.Error(err))
		}
	}

	h.pool.Dispatch(notification.DecisionJob{BookingID: id, Status: status})
}
