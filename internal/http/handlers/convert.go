package handlers

import "parcel-delivery/internal/domain"

func toDeliveryDTO(d domain.Delivery) deliveryDTO {
	return deliveryDTO{
		ID:            d.ID,
		Product:       d.Product,
		RecipientID:   d.RecipientID,
		DeliverymanID: d.DeliverymanID,
		SignatureID:   d.SignatureID,
		Status:        d.Status(),
		StartDate:     d.StartDate,
		EndDate:       d.EndDate,
		CancelledAt:   d.CancelledAt,
		CreatedAt:     d.CreatedAt,
	}
}

func toDeliveryDTOs(list []domain.Delivery) []deliveryDTO {
	out := make([]deliveryDTO, 0, len(list))
	for _, d := range list {
		out = append(out, toDeliveryDTO(d))
	}
	return out
}

func toProblemDTO(p domain.Problem) problemDTO {
	return problemDTO{ID: p.ID, DeliveryID: p.DeliveryID, Description: p.Description, CreatedAt: p.CreatedAt}
}

func toProblemDTOs(list []domain.Problem) []problemDTO {
	out := make([]problemDTO, 0, len(list))
	for _, p := range list {
		out = append(out, toProblemDTO(p))
	}
	return out
}

func (r updateDeliveryRequest) toModel(id int64) domain.DeliveryUpdate {
	return domain.DeliveryUpdate{
		ID:            id,
		Product:       r.Product,
		RecipientID:   r.RecipientID,
		DeliverymanID: r.DeliverymanID,
	}
}

func toDeliverymanDTO(m domain.Deliveryman) deliverymanDTO {
	return deliverymanDTO{ID: m.ID, Name: m.Name, Email: m.Email, AvatarID: m.AvatarID, CreatedAt: m.CreatedAt}
}

func toDeliverymanDTOs(list []domain.Deliveryman) []deliverymanDTO {
	out := make([]deliverymanDTO, 0, len(list))
	for _, m := range list {
		out = append(out, toDeliverymanDTO(m))
	}
	return out
}

func (r createDeliverymanRequest) toModel() *domain.Deliveryman {
	return &domain.Deliveryman{Name: r.Name, Email: r.Email, AvatarID: r.AvatarID}
}

func (r updateDeliverymanRequest) toModel(id int64) domain.DeliverymanUpdate {
	return domain.DeliverymanUpdate{ID: id, Name: r.Name, Email: r.Email, AvatarID: r.AvatarID}
}

func toRecipientDTO(rc domain.Recipient) recipientDTO {
	return recipientDTO{
		ID:           rc.ID,
		Name:         rc.Name,
		Street:       rc.Street,
		StreetNumber: rc.StreetNumber,
		Complement:   rc.Complement,
		State:        rc.State,
		City:         rc.City,
		ZipCode:      rc.ZipCode,
		FullAddress:  rc.FullAddress(),
		CreatedAt:    rc.CreatedAt,
	}
}

func toRecipientDTOs(list []domain.Recipient) []recipientDTO {
	out := make([]recipientDTO, 0, len(list))
	for _, rc := range list {
		out = append(out, toRecipientDTO(rc))
	}
	return out
}

func (r createRecipientRequest) toModel() *domain.Recipient {
	return &domain.Recipient{
		Name:         r.Name,
		Street:       r.Street,
		StreetNumber: r.StreetNumber,
		Complement:   r.Complement,
		State:        r.State,
		City:         r.City,
		ZipCode:      r.ZipCode,
	}
}

func (r updateRecipientRequest) toModel(id int64) domain.RecipientUpdate {
	return domain.RecipientUpdate{
		ID:           id,
		Name:         r.Name,
		Street:       r.Street,
		StreetNumber: r.StreetNumber,
		Complement:   r.Complement,
		State:        r.State,
		City:         r.City,
		ZipCode:      r.ZipCode,
	}
}
