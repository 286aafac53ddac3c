package recipient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"parcel-delivery/internal/apperr"
	"parcel-delivery/internal/domain"
	"parcel-delivery/internal/logx"
)

type recipientRepository interface {
	Get(ctx context.Context, id int64) (*domain.Recipient, error)
	List(ctx context.Context, f domain.PeopleFilter, p domain.Page) ([]domain.Recipient, int, error)
	Create(ctx context.Context, r *domain.Recipient) (int64, error)
	Update(ctx context.Context, u domain.RecipientUpdate) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// Service manages recipients and their postal addresses.
type Service struct {
	repo             recipientRepository
	operationTimeout time.Duration
	logger           logx.Logger
}

// NewService creates a recipient Service.
func NewService(r recipientRepository, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{repo: r, operationTimeout: timeout, logger: logger}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

func required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s is required", apperr.ErrInvalid, field)
	}
	return nil
}

func validateCreate(r *domain.Recipient) error {
	if r == nil {
		return apperr.ErrInvalid
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Street = strings.TrimSpace(r.Street)
	r.Complement = strings.TrimSpace(r.Complement)
	r.State = strings.TrimSpace(r.State)
	r.City = strings.TrimSpace(r.City)
	r.ZipCode = strings.TrimSpace(r.ZipCode)

	for _, c := range []struct{ field, v string }{
		{"name", r.Name},
		{"street", r.Street},
		{"state", r.State},
		{"city", r.City},
		{"zip_code", r.ZipCode},
	} {
		if err := required(c.field, c.v); err != nil {
			return err
		}
	}
	if r.StreetNumber <= 0 {
		return fmt.Errorf("%w: number must be positive", apperr.ErrInvalid)
	}
	return nil
}

func validateUpdate(u domain.RecipientUpdate) error {
	if u.ID <= 0 {
		return apperr.ErrInvalid
	}
	if u.Name == nil && u.Street == nil && u.StreetNumber == nil && u.Complement == nil &&
		u.State == nil && u.City == nil && u.ZipCode == nil {
		return fmt.Errorf("%w: nothing to update", apperr.ErrInvalid)
	}
	for _, c := range []struct {
		field string
		v     *string
	}{
		{"name", u.Name},
		{"street", u.Street},
		{"state", u.State},
		{"city", u.City},
		{"zip_code", u.ZipCode},
	} {
		if c.v == nil {
			continue
		}
		if err := required(c.field, *c.v); err != nil {
			return err
		}
	}
	if u.StreetNumber != nil && *u.StreetNumber <= 0 {
		return fmt.Errorf("%w: number must be positive", apperr.ErrInvalid)
	}
	return nil
}

// Get returns the recipient or apperr.ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Recipient, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apperr.ErrNotFound
	}
	return r, nil
}

func (s *Service) List(ctx context.Context, f domain.PeopleFilter, p domain.Page) ([]domain.Recipient, int, error) {
	f.Query = strings.TrimSpace(f.Query)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.List(ctx, f, p)
}

// Create validates and stores a recipient.
func (s *Service) Create(ctx context.Context, r *domain.Recipient) (int64, error) {
	if err := validateCreate(r); err != nil {
		return 0, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	id, err := s.repo.Create(ctx, r)
	if err != nil {
		return 0, err
	}
	s.logger.Info("recipient created", logx.Int64("recipient_id", id))
	return id, nil
}

// Update applies a partial update and returns the stored record.
func (s *Service) Update(ctx context.Context, u domain.RecipientUpdate) (*domain.Recipient, error) {
	if err := validateUpdate(u); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	ok, err := s.repo.Update(ctx, u)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrNotFound
	}
	r, err := s.repo.Get(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apperr.ErrNotFound
	}
	return r, nil
}

// Delete removes a recipient. Recipients referenced by deliveries are rejected
// by the store with apperr.ErrConflict.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperr.ErrInvalid
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotFound
	}
	s.logger.Info("recipient deleted", logx.Int64("recipient_id", id))
	return nil
}
