package api

import (
	"go.uber.org/zap"

	"github.com/gerardthecreator/taller-citas/config"
	"github.com/gerardthecreator/taller-citas/internal/notification"
	"github.com/gerardthecreator/taller-citas/internal/store"
	"github.com/gerardthecreator/taller-citas/internal/telegram"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	bookings store.BookingStore
	subs     store.SubscriptionStore
	telegram *telegram.Client
	pool     *notification.WorkerPool
	cfg      *config.Config
	logger   *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(
	bookings store.BookingStore,
	subs store.SubscriptionStore,
	tg *telegram.Client,
	pool *notification.WorkerPool,
	cfg *config.Config,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bookings: bookings,
		subs:     subs,
		telegram: tg,
		pool:     pool,
		cfg:      cfg,
		logger:   logger,
	}
}
