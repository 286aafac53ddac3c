package handlers

import (
	"time"

	"parcel-delivery/internal/domain"
)

type deliveryDTO struct {
	ID            int64                 `json:"id"`
	Product       string                `json:"product"`
	RecipientID   int64                 `json:"recipient_id"`
	DeliverymanID int64                 `json:"deliveryman_id"`
	SignatureID   *int64                `json:"signature_id"`
	Status        domain.DeliveryStatus `json:"status"`
	StartDate     *time.Time            `json:"start_date"`
	EndDate       *time.Time            `json:"end_date"`
	CancelledAt   *time.Time            `json:"cancelled_at"`
	CreatedAt     time.Time             `json:"created_at"`
}

type createDeliveryRequest struct {
	Product       string `json:"product" validate:"required"`
	RecipientID   int64  `json:"recipient_id" validate:"required,gt=0"`
	DeliverymanID int64  `json:"deliveryman_id" validate:"required,gt=0"`
}

type updateDeliveryRequest struct {
	Product       *string `json:"product,omitempty" validate:"omitempty,min=1"`
	RecipientID   *int64  `json:"recipient_id,omitempty" validate:"omitempty,gt=0"`
	DeliverymanID *int64  `json:"deliveryman_id,omitempty" validate:"omitempty,gt=0"`
}

type deliverRequest struct {
	SignatureID int64 `json:"signature_id" validate:"required,gt=0"`
}

type problemDTO struct {
	ID          int64     `json:"id"`
	DeliveryID  int64     `json:"delivery_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type reportProblemRequest struct {
	Description string `json:"description" validate:"required"`
}

type deliverymanDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarID  *int64    `json:"avatar_id"`
	CreatedAt time.Time `json:"created_at"`
}

type createDeliverymanRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	AvatarID *int64 `json:"avatar_id,omitempty" validate:"omitempty,gt=0"`
}

type updateDeliverymanRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	AvatarID *int64  `json:"avatar_id,omitempty" validate:"omitempty,gt=0"`
}

type recipientDTO struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Street       string    `json:"street"`
	StreetNumber int       `json:"number"`
	Complement   string    `json:"complement"`
	State        string    `json:"state"`
	City         string    `json:"city"`
	ZipCode      string    `json:"zip_code"`
	FullAddress  string    `json:"full_address"`
	CreatedAt    time.Time `json:"created_at"`
}

type createRecipientRequest struct {
	Name         string `json:"name" validate:"required"`
	Street       string `json:"street" validate:"required"`
	StreetNumber int    `json:"number" validate:"required,gt=0"`
	Complement   string `json:"complement"`
	State        string `json:"state" validate:"required"`
	City         string `json:"city" validate:"required"`
	ZipCode      string `json:"zip_code" validate:"required"`
}

type updateRecipientRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Street       *string `json:"street,omitempty" validate:"omitempty,min=1"`
	StreetNumber *int    `json:"number,omitempty" validate:"omitempty,gt=0"`
	Complement   *string `json:"complement,omitempty"`
	State        *string `json:"state,omitempty" validate:"omitempty,min=1"`
	City         *string `json:"city,omitempty" validate:"omitempty,min=1"`
	ZipCode      *string `json:"zip_code,omitempty" validate:"omitempty,min=1"`
}
