package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gerardthecreator/taller-citas/internal/model"
	"github.com/gerardthecreator/taller-citas/internal/store"
	"github.com/gerardthecreator/taller-citas/internal/telegram"
)

// createBookingRequest is the intake payload. Field names follow the public
// form the calendar page submits.
type createBookingRequest struct {
	Nombre   string `json:"nombre"`
	Vehiculo string `json:"vehiculo"`
	Fecha    string `json:"fecha"`
}

// CreateBooking handles POST /api/citas: persist the request as pending,
// then notify the operator chat with accept/reject buttons. The store write
// happens before the notification and is not rolled back if the
// notification fails.
func (h *Handler) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Nombre == "" || req.Vehiculo == "" || req.Fecha == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Faltan datos en la solicitud."})
		return
	}

	booking := &model.Booking{
		Name:    req.Nombre,
		Vehicle: req.Vehiculo,
		Date:    req.Fecha,
		Status:  model.StatusPending,
	}

	id, err := h.bookings.Create(c.Request.Context(), booking)
	if err != nil {
		h.logger.Error("failed to create booking", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error interno del servidor."})
		return
	}

	markup := &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{{
			{Text: "✅ Aceptar", CallbackData: "aceptar_" + id},
			{Text: "❌ Rechazar", CallbackData: "rechazar_" + id},
		}},
	}

	err = h.telegram.SendMessage(c.Request.Context(), h.cfg.Telegram.ChatID, operatorMessage(booking), markup)
	if err != nil {
		h.logger.Error("failed to notify operator",
			zap.String("booking_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error interno del servidor."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "¡Solicitud enviada! Recibirás la confirmación en el calendario.",
	})
}

// GetBooking handles GET /api/citas/:id, the status poll used by the
// calendar page.
func (h *Handler) GetBooking(c *gin.Context) {
	id := c.Param("id")

	booking, err := h.bookings.Get(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "cita no encontrada"})
		return
	}
	if err != nil {
		h.logger.Error("failed to read booking",
			zap.String("booking_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor."})
		return
	}

	c.JSON(http.StatusOK, booking)
}

// operatorMessage renders the Markdown notification for the operator chat.
func operatorMessage(b *model.Booking) string {
	return fmt.Sprintf("Nueva solicitud de cita:\n\n*ID:* `%s`\n*Nombre:* %s\n*Vehículo:* %s\n*Fecha:* %s",
		b.ID, b.Name, b.Vehicle, formatFecha(b.Date))
}

// formatFecha renders an RFC3339 timestamp the way es-ES locales do
// (day/month/year, no leading zeros). Values that do not parse are passed
// through as received.
func formatFecha(raw string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.Format("2/1/2006, 15:04:05")
}
