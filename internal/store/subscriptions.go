package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gerardthecreator/taller-citas/internal/model"
)

// SubscriptionStore manages browser push subscriptions and their booking
// mappings.
type SubscriptionStore interface {
	Upsert(ctx context.Context, sub *model.PushSubscription, bookingIDs []string) error
	Get(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	Delete(ctx context.Context, endpoint string) error
	ListForBooking(ctx context.Context, bookingID string) ([]model.PushSubscription, error)
}

// gormSubscriptionStore implements SubscriptionStore using GORM.
type gormSubscriptionStore struct {
	db *gorm.DB
}

// NewGormSubscriptionStore creates a new GORM-backed subscription store.
func NewGormSubscriptionStore(db *gorm.DB) SubscriptionStore {
	return &gormSubscriptionStore{db: db}
}

// Upsert creates or replaces a subscription and its booking mapping in one
// transaction.
func (s *gormSubscriptionStore) Upsert(ctx context.Context, sub *model.PushSubscription, bookingIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(sub).Error; err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}

		if err := tx.Where("endpoint = ?", sub.Endpoint).
			Delete(&model.SubscriptionBooking{}).Error; err != nil {
			return fmt.Errorf("failed to clear booking mapping: %w", err)
		}

		if len(bookingIDs) == 0 {
			return nil
		}

		mappings := make([]model.SubscriptionBooking, 0, len(bookingIDs))
		for _, id := range bookingIDs {
			mappings = append(mappings, model.SubscriptionBooking{
				Endpoint:  sub.Endpoint,
				BookingID: id,
			})
		}
		if err := tx.Create(&mappings).Error; err != nil {
			return fmt.Errorf("failed to write booking mapping: %w", err)
		}
		return nil
	})
}

func (s *gormSubscriptionStore) Get(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).Preload("Bookings").
		First(&sub, "endpoint = ?", endpoint).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *gormSubscriptionStore) Delete(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("endpoint = ?", endpoint).
			Delete(&model.SubscriptionBooking{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.PushSubscription{Endpoint: endpoint}).Error
	})
}

// ListForBooking returns every subscription mapped to the given booking id.
func (s *gormSubscriptionStore) ListForBooking(ctx context.Context, bookingID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN subscription_bookings sb ON sb.endpoint = push_subscriptions.endpoint").
		Where("sb.booking_id = ?", bookingID).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}
