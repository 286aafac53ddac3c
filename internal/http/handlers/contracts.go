package handlers

import (
	"context"

	"parcel-delivery/internal/domain"
	"parcel-delivery/internal/service/delivery"
	"parcel-delivery/internal/service/deliveryman"
	"parcel-delivery/internal/service/recipient"
)

type deliveryUsecase interface {
	Create(ctx context.Context, in delivery.CreateInput) (domain.Delivery, error)
	Get(ctx context.Context, id int64) (domain.Delivery, error)
	Update(ctx context.Context, u domain.DeliveryUpdate) (domain.Delivery, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f domain.DeliveryFilter, page domain.Page) ([]domain.Delivery, int, error)
	ListForDeliveryman(ctx context.Context, deliverymanID int64, delivered bool, page domain.Page) ([]domain.Delivery, int, error)
	Retrieve(ctx context.Context, deliverymanID, deliveryID int64) (domain.Delivery, error)
	Deliver(ctx context.Context, deliverymanID, deliveryID, signatureID int64) (domain.Delivery, error)
	ReportProblem(ctx context.Context, deliveryID int64, description string) (domain.Problem, error)
	ListProblems(ctx context.Context, deliveryID int64, page domain.Page) ([]domain.Problem, int, error)
	CancelByProblem(ctx context.Context, problemID int64) (domain.Delivery, error)
}

// NewDeliveryUsecase wires a delivery Service into a deliveryUsecase.
func NewDeliveryUsecase(svc *delivery.Service) deliveryUsecase {
	return svc
}

type deliverymanUsecase interface {
	Get(ctx context.Context, id int64) (*domain.Deliveryman, error)
	List(ctx context.Context, f domain.PeopleFilter, p domain.Page) ([]domain.Deliveryman, int, error)
	Create(ctx context.Context, m *domain.Deliveryman) (int64, error)
	Update(ctx context.Context, u domain.DeliverymanUpdate) (*domain.Deliveryman, error)
	Delete(ctx context.Context, id int64) error
}

// NewDeliverymanUsecase wires a deliveryman Service into a deliverymanUsecase.
func NewDeliverymanUsecase(svc *deliveryman.Service) deliverymanUsecase {
	return svc
}

type recipientUsecase interface {
	Get(ctx context.Context, id int64) (*domain.Recipient, error)
	List(ctx context.Context, f domain.PeopleFilter, p domain.Page) ([]domain.Recipient, int, error)
	Create(ctx context.Context, r *domain.Recipient) (int64, error)
	Update(ctx context.Context, u domain.RecipientUpdate) (*domain.Recipient, error)
	Delete(ctx context.Context, id int64) error
}

// NewRecipientUsecase wires a recipient Service into a recipientUsecase.
func NewRecipientUsecase(svc *recipient.Service) recipientUsecase {
	return svc
}
