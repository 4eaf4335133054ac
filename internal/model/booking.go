package model

// BookingStatus is the lifecycle state of an appointment request.
type BookingStatus string

const (
	StatusPending  BookingStatus = "pending"
	StatusAccepted BookingStatus = "accepted"
	StatusDenied   BookingStatus = "denied"
)

// Booking represents one appointment request. The ID is the Realtime
// Database push key assigned at creation and is the only join key between
// the store and the Telegram callback payloads.
type Booking struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Vehicle string        `json:"vehicle"`
	Date    string        `json:"date"`
	Status  BookingStatus `json:"status"`
}
