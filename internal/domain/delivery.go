package domain

import "time"

// Delivery is a package assigned to a deliveryman for a recipient.
// Its timestamps change only through the lifecycle transitions in lifecycle.go.
type Delivery struct {
	ID            int64
	Product       string
	RecipientID   int64
	DeliverymanID int64
	SignatureID   *int64
	StartDate     *time.Time
	EndDate       *time.Time
	CancelledAt   *time.Time
	CreatedAt     time.Time
}

// Retrieved reports whether the package has been picked up.
func (d Delivery) Retrieved() bool { return d.StartDate != nil }

// Delivered reports whether the package reached the recipient.
func (d Delivery) Delivered() bool { return d.EndDate != nil }

// Cancelled reports whether the delivery was cancelled.
func (d Delivery) Cancelled() bool { return d.CancelledAt != nil }

// Status derives the lifecycle status from the timestamps.
func (d Delivery) Status() DeliveryStatus {
	switch {
	case d.Cancelled():
		return StatusCancelled
	case d.Delivered():
		return StatusDelivered
	case d.Retrieved():
		return StatusRetrieved
	default:
		return StatusPending
	}
}

// DeliveryUpdate carries admin-editable attributes. A nil field is left unchanged.
type DeliveryUpdate struct {
	ID            int64
	Product       *string
	RecipientID   *int64
	DeliverymanID *int64
}

// Problem is an incident reported by a deliveryman about a delivery.
type Problem struct {
	ID          int64
	DeliveryID  int64
	Description string
	CreatedAt   time.Time
}
