package store

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"

	"github.com/gerardthecreator/taller-citas/config"
	"github.com/gerardthecreator/taller-citas/internal/model"
)

// ErrNotFound is returned when a booking id has no record.
var ErrNotFound = errors.New("booking not found")

// BookingStore defines the operations performed against the booking record
// store.
type BookingStore interface {
	// Create persists a new booking under a freshly generated key and
	// returns that key. The booking's ID field is filled in before the
	// write so the stored record carries its own key.
	Create(ctx context.Context, b *model.Booking) (string, error)
	// UpdateStatus overwrites only the status field of the record at id.
	// The record is not checked for existence or current status first.
	UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error
	// Get reads the booking at id. Returns ErrNotFound for absent keys.
	Get(ctx context.Context, id string) (*model.Booking, error)
}

// firebaseStore implements BookingStore on the Firebase Realtime Database.
type firebaseStore struct {
	client     *db.Client
	collection string
}

// NewFirebaseStore connects to the Realtime Database configured in cfg.
func NewFirebaseStore(ctx context.Context, cfg *config.FirebaseConfig) (BookingStore, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{DatabaseURL: cfg.DatabaseURL}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}

	return &firebaseStore{client: client, collection: cfg.Collection}, nil
}

func (s *firebaseStore) Create(ctx context.Context, b *model.Booking) (string, error) {
	ref, err := s.client.NewRef(s.collection).Push(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate booking key: %w", err)
	}

	b.ID = ref.Key
	if err := ref.Set(ctx, b); err != nil {
		return "", fmt.Errorf("failed to write booking %s: %w", ref.Key, err)
	}
	return ref.Key, nil
}

func (s *firebaseStore) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error {
	ref := s.client.NewRef(s.collection + "/" + id)
	if err := ref.Update(ctx, map[string]interface{}{"status": status}); err != nil {
		return fmt.Errorf("failed to update status of booking %s: %w", id, err)
	}
	return nil
}

func (s *firebaseStore) Get(ctx context.Context, id string) (*model.Booking, error) {
	var b model.Booking
	if err := s.client.NewRef(s.collection+"/"+id).Get(ctx, &b); err != nil {
		return nil, fmt.Errorf("failed to read booking %s: %w", id, err)
	}
	// The database returns a null value for absent keys.
	if b.ID == "" {
		return nil, ErrNotFound
	}
	return &b, nil
}
