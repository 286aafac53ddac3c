package domain

import (
	"fmt"
	"regexp"
	"time"
)

// Deliveryman is a courier who retrieves and delivers packages.
type Deliveryman struct {
	ID        int64
	Name      string
	Email     string
	AvatarID  *int64
	CreatedAt time.Time
}

// DeliverymanUpdate carries optional fields; nil means "do not change".
type DeliverymanUpdate struct {
	ID       int64
	Name     *string
	Email    *string
	AvatarID *int64
}

var reEmail = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateEmail validates the email format
func ValidateEmail(s string) bool {
	return reEmail.MatchString(s)
}

// Recipient is the addressee of a delivery.
type Recipient struct {
	ID           int64
	Name         string
	Street       string
	StreetNumber int
	Complement   string
	State        string
	City         string
	ZipCode      string
	CreatedAt    time.Time
}

// RecipientUpdate carries optional fields; nil means "do not change".
type RecipientUpdate struct {
	ID           int64
	Name         *string
	Street       *string
	StreetNumber *int
	Complement   *string
	State        *string
	City         *string
	ZipCode      *string
}

// FullAddress renders the one-line postal address used in notifications:
// "{street}, {number} - {complement} - {state} - {city} {zip}".
// The complement segment is omitted when empty.
func (r Recipient) FullAddress() string {
	if r.Complement == "" {
		return fmt.Sprintf("%s, %d - %s - %s %s", r.Street, r.StreetNumber, r.State, r.City, r.ZipCode)
	}
	return fmt.Sprintf("%s, %d - %s - %s - %s %s",
		r.Street, r.StreetNumber, r.Complement, r.State, r.City, r.ZipCode)
}
