//go:generate mockgen -source=contracts.go -destination=delivery_mocks_test.go -package=delivery_test

package delivery

import (
	"context"
	"time"

	"parcel-delivery/internal/domain"
	"parcel-delivery/internal/repository"
)

// DeliveryStore persists deliveries. Mark* are conditional writes that report
// false when the record left the expected prior state.
type DeliveryStore interface {
	Get(ctx context.Context, id int64) (*domain.Delivery, error)
	List(ctx context.Context, f domain.DeliveryFilter, p domain.Page) ([]domain.Delivery, int, error)
	Create(ctx context.Context, d *domain.Delivery) error
	Update(ctx context.Context, u domain.DeliveryUpdate) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	CountRetrievedBetween(ctx context.Context, deliverymanID int64, from, to time.Time) (int, error)
	MarkRetrieved(ctx context.Context, id, deliverymanID int64, at time.Time, c repository.RetrieveCond) (bool, error)
	MarkDelivered(ctx context.Context, id, deliverymanID, signatureID int64, at time.Time) (bool, error)
	MarkCancelled(ctx context.Context, id int64, at time.Time) (bool, error)
}

// ProblemStore persists problem reports. Create inserts only while the delivery
// is retrieved and not cancelled.
type ProblemStore interface {
	Get(ctx context.Context, id int64) (*domain.Problem, error)
	ListByDelivery(ctx context.Context, deliveryID int64, p domain.Page) ([]domain.Problem, int, error)
	Create(ctx context.Context, p *domain.Problem) (bool, error)
}

// DeliverymanLookup loads deliverymen.
type DeliverymanLookup interface {
	Get(ctx context.Context, id int64) (*domain.Deliveryman, error)
}

// RecipientLookup loads recipients.
type RecipientLookup interface {
	Get(ctx context.Context, id int64) (*domain.Recipient, error)
}

// Notifier enqueues notification jobs.
type Notifier interface {
	Enqueue(ctx context.Context, key string, payload any) (string, error)
}
