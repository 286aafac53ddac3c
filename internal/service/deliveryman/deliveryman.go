package deliveryman

import (
	"context"
	"strings"
	"time"

	"parcel-delivery/internal/apperr"
	"parcel-delivery/internal/domain"
	"parcel-delivery/internal/logx"
)

// deliverymanRepository defines storage operations required by the business layer.
type deliverymanRepository interface {
	Get(ctx context.Context, id int64) (*domain.Deliveryman, error)
	List(ctx context.Context, f domain.PeopleFilter, p domain.Page) ([]domain.Deliveryman, int, error)
	Create(ctx context.Context, m *domain.Deliveryman) (int64, error)
	Update(ctx context.Context, u domain.DeliverymanUpdate) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// Service coordinates deliveryman business logic and orchestrates repository calls.
type Service struct {
	repo             deliverymanRepository
	operationTimeout time.Duration
	logger           logx.Logger
}

// NewService creates and configures a deliveryman Service.
func NewService(r deliverymanRepository, timeout time.Duration, logger logx.Logger) *Service {
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

func validateCreate(m *domain.Deliveryman) error {
	if m == nil {
		return apperr.ErrInvalid
	}
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	if m.Name == "" {
		return apperr.ErrInvalid
	}
	if !domain.ValidateEmail(m.Email) {
		return apperr.ErrInvalid
	}
	return nil
}

func validateUpdate(u *domain.DeliverymanUpdate) error {
	if u.ID <= 0 {
		return apperr.ErrInvalid
	}
	if u.Name == nil && u.Email == nil && u.AvatarID == nil {
		return apperr.ErrInvalid
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return apperr.ErrInvalid
	}
	if u.Email != nil && !domain.ValidateEmail(strings.TrimSpace(*u.Email)) {
		return apperr.ErrInvalid
	}
	return nil
}

// Get retrieves a deliveryman by its ID.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Deliveryman, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperr.ErrNotFound
	}
	return m, nil
}

// List returns a page of deliverymen whose name contains the query.
func (s *Service) List(ctx context.Context, f domain.PeopleFilter, p domain.Page) ([]domain.Deliveryman, int, error) {
	f.Query = strings.TrimSpace(f.Query)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.List(ctx, f, p)
}

// Create persists a new deliveryman and returns its generated ID.
func (s *Service) Create(ctx context.Context, m *domain.Deliveryman) (int64, error) {
	if err := validateCreate(m); err != nil {
		return 0, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	id, err := s.repo.Create(ctx, m)
	if err != nil {
		return 0, err
	}
	s.logger.Info("deliveryman created", logx.Int64("deliveryman_id", id))
	return id, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, u domain.DeliverymanUpdate) (*domain.Deliveryman, error) {
	if err := validateUpdate(&u); err != nil {
		return nil, err
	}
	if u.Email != nil {
		e := strings.TrimSpace(*u.Email)
		u.Email = &e
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
	m, err := s.repo.Get(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperr.ErrNotFound
	}
	return m, nil
}

// Delete removes a deliveryman without deliveries.
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
	s.logger.Info("deliveryman deleted", logx.Int64("deliveryman_id", id))
	return nil
}
