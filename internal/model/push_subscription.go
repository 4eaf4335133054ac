package model

import "time"

// PushSubscription holds the information for a browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey;size:512"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Bookings []SubscriptionBooking `gorm:"foreignKey:Endpoint;constraint:OnDelete:CASCADE"`
}

// SubscriptionBooking maps a subscription to a booking id. Bookings live in
// the Realtime Database, so the mapping stores the raw key rather than a
// foreign key into a local table.
type SubscriptionBooking struct {
	ID        int64  `gorm:"autoIncrement;primaryKey"`
	Endpoint  string `gorm:"index;not null;size:512"`
	BookingID string `gorm:"index;not null;size:128"`
}
