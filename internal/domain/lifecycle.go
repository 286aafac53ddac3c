package domain

import (
	"time"

	"parcel-delivery/internal/apperr"
)

// The transitions below are pure: they inspect the loaded record and return the
// updated copy, or the first failing guard. A nil record means it was not found.

// Retrieve marks the package as picked up by deliverymanID.
// retrievedToday is the number of pickups the deliveryman already made in the
// policy's current calendar day.
func Retrieve(d *Delivery, deliverymanID int64, retrievedToday int, now time.Time, p RetrievalPolicy) (Delivery, error) {
	if p.LimitReached(retrievedToday) {
		return Delivery{}, apperr.ErrRateLimitExceeded
	}
	if d == nil {
		return Delivery{}, apperr.ErrNotFound
	}
	if d.DeliverymanID != deliverymanID {
		return Delivery{}, apperr.ErrForbidden
	}
	if d.Retrieved() {
		return Delivery{}, apperr.ErrAlreadyRetrieved
	}
	if !p.InWindow(now) {
		return Delivery{}, apperr.ErrOutsideRetrievalWindow
	}

	out := *d
	out.StartDate = &now
	return out, nil
}

// Deliver records the hand-over with the recipient's signature.
func Deliver(d *Delivery, deliverymanID, signatureID int64, now time.Time) (Delivery, error) {
	if d == nil {
		return Delivery{}, apperr.ErrNotFound
	}
	if d.DeliverymanID != deliverymanID {
		return Delivery{}, apperr.ErrForbidden
	}
	if d.Cancelled() {
		return Delivery{}, apperr.ErrAlreadyCancelled
	}
	if !d.Retrieved() {
		return Delivery{}, apperr.ErrNotYetRetrieved
	}
	if d.Delivered() {
		return Delivery{}, apperr.ErrAlreadyDelivered
	}

	out := *d
	out.SignatureID = &signatureID
	out.EndDate = &now
	return out, nil
}

// ReportProblem builds a problem report. The delivery itself is never changed.
func ReportProblem(d *Delivery, description string, now time.Time) (Problem, error) {
	if d == nil {
		return Problem{}, apperr.ErrNotFound
	}
	if !d.Retrieved() {
		return Problem{}, apperr.ErrNotYetRetrieved
	}
	if d.Cancelled() {
		return Problem{}, apperr.ErrAlreadyCancelled
	}
	return Problem{
		DeliveryID:  d.ID,
		Description: description,
		CreatedAt:   now,
	}, nil
}

// Cancel terminates a delivery that has not been handed over yet.
func Cancel(d *Delivery, now time.Time) (Delivery, error) {
	if d == nil {
		return Delivery{}, apperr.ErrNotFound
	}
	if d.Delivered() {
		return Delivery{}, apperr.ErrAlreadyDelivered
	}
	if d.Cancelled() {
		return Delivery{}, apperr.ErrAlreadyCancelled
	}

	out := *d
	out.CancelledAt = &now
	return out, nil
}
