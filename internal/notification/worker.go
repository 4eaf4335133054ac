package notification

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"github.com/gerardthecreator/taller-citas/internal/model"
	"github.com/gerardthecreator/taller-citas/internal/store"
)

// DecisionJob asks the pool to notify the browsers subscribed to a booking
// about the operator's decision.
type DecisionJob struct {
	BookingID string
	Status    model.BookingStatus
}

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// webPushSender is the real Sender implementation using the webpush library.
type webPushSender struct{}

func (s *webPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers delivering decision notices.
type WorkerPool struct {
	size    int
	jobs    chan DecisionJob
	subs    store.SubscriptionStore
	options *webpush.Options
	sender  Sender
	logger  *zap.Logger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, subs store.SubscriptionStore, options *webpush.Options, logger *zap.Logger) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan DecisionJob, size),
		subs:    subs,
		options: options,
		sender:  &webPushSender{},
		logger:  logger,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.logger.Debug("notification worker started", zap.Int("worker", id))
	for {
		select {
		case job := <-wp.jobs:
			wp.notifySubscribers(ctx, job)
		case <-ctx.Done():
			wp.logger.Debug("notification worker shutting down", zap.Int("worker", id))
			return
		}
	}
}

// Dispatch queues a job without blocking. A full queue drops the job, which
// follows the service's no-retry posture for notifications.
func (wp *WorkerPool) Dispatch(job DecisionJob) {
	select {
	case wp.jobs <- job:
	default:
		wp.logger.Warn("notification queue full, dropping job",
			zap.String("booking_id", job.BookingID))
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan DecisionJob {
	return wp.jobs
}

// notifySubscribers pushes the decision to every browser subscribed to the
// booking.
func (wp *WorkerPool) notifySubscribers(ctx context.Context, job DecisionJob) {
	subs, err := wp.subs.ListForBooking(ctx, job.BookingID)
	if err != nil {
		wp.logger.Error("failed to list subscriptions",
			zap.String("booking_id", job.BookingID), zap.Error(err))
		return
	}
	if len(subs) == 0 {
		return
	}

	word := "denegada"
	if job.Status == model.StatusAccepted {
		word = "aceptada"
	}
	payload := []byte(fmt.Sprintf("Tu cita %s ha sido %s.", job.BookingID, word))

	for _, sub := range subs {
		wp.send(ctx, sub, payload)
	}
}

func (wp *WorkerPool) send(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.options)
	if err != nil {
		wp.logger.Error("failed to send push notification",
			zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	// 410 means the browser dropped the subscription.
	if resp.StatusCode == http.StatusGone {
		wp.logger.Info("subscription expired, deleting",
			zap.String("endpoint", sub.Endpoint))
		if err := wp.subs.Delete(ctx, sub.Endpoint); err != nil {
			wp.logger.Error("failed to delete expired subscription",
				zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
	}
}
