package ports

import (
	"context"

	"github.com/nmoreno/fiestero/internal/core/domain"
)

// Geocoder resolves a street address into a coordinate. Implementations make
// a single attempt; retry policy belongs to the caller.
type Geocoder interface {
	Geocode(ctx context.Context, street, houseNumber, city string) (*domain.GeoPoint, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishReservationCreated(ctx context.Context, r *domain.Reservation) error
	PublishReservationStatus(ctx context.Context, r *domain.Reservation) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeReservationCreated(ctx context.Context, handler func(ctx context.Context, r *domain.Reservation) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// Mailer sends transactional email.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}
