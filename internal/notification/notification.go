package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"parcel-delivery/internal/domain"
	"parcel-delivery/internal/mailer"
	"parcel-delivery/internal/queue"
)

// Queue keys.
const (
	ConfirmationKey = "ConfirmationMail"
	CancellationKey = "CancellationMail"
)

const (
	confirmationSubject = "Package registered for delivery"
	cancellationSubject = "Package delivery cancelled"
)

// Payload is the job data of both mail queues.
type Payload struct {
	DeliverymanName string `json:"deliverymanName"`
	Email           string `json:"email"`
	RecipientName   string `json:"recipientName"`
	Product         string `json:"product"`
	FullAddress     string `json:"fullAddress"`
}

func NewPayload(dm domain.Deliveryman, r domain.Recipient, product string) Payload {
	return Payload{
		DeliverymanName: dm.Name,
		Email:           dm.Email,
		RecipientName:   r.Name,
		Product:         product,
		FullAddress:     r.FullAddress(),
	}
}

type mailHandler struct {
	key      string
	subject  string
	template string
	sender   mailer.Sender
}

// NewConfirmationMail handles ConfirmationMail jobs.
func NewConfirmationMail(s mailer.Sender) queue.Handler {
	return &mailHandler{key: ConfirmationKey, subject: confirmationSubject, template: "confirmation", sender: s}
}

// NewCancellationMail handles CancellationMail jobs.
func NewCancellationMail(s mailer.Sender) queue.Handler {
	return &mailHandler{key: CancellationKey, subject: cancellationSubject, template: "cancellation", sender: s}
}

// Handlers returns both mail handlers sharing one sender.
func Handlers(s mailer.Sender) []queue.Handler {
	return []queue.Handler{NewConfirmationMail(s), NewCancellationMail(s)}
}

func (h *mailHandler) Key() string { return h.key }

func (h *mailHandler) Handle(ctx context.Context, job queue.Job) error {
	var p Payload
	if err := json.Unmarshal(job.Data, &p); err != nil {
		return queue.Permanent(fmt.Errorf("decode %s payload: %w", h.key, err))
	}
	if strings.TrimSpace(p.Email) == "" {
		return queue.Permanent(errors.New("payload without recipient email"))
	}

	return h.sender.Send(ctx, mailer.Message{
		To:       mailer.Address{Name: p.DeliverymanName, Email: p.Email},
		Subject:  h.subject,
		Template: h.template,
		Context:  p,
	})
}
