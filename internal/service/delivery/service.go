package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"parcel-delivery/internal/apperr"
	"parcel-delivery/internal/domain"
	"parcel-delivery/internal/logx"
	"parcel-delivery/internal/notification"
	"parcel-delivery/internal/repository"
)

const defaultOperationTimeout = 3 * time.Second

// Deps groups the stores and collaborators of the Service.
type Deps struct {
	Deliveries  DeliveryStore
	Problems    ProblemStore
	Deliverymen DeliverymanLookup
	Recipients  RecipientLookup
	Notifier    Notifier
}

// Service runs the delivery lifecycle: validate, load, apply the transition,
// persist conditionally, then notify.
type Service struct {
	deliveries  DeliveryStore
	problems    ProblemStore
	deliverymen DeliverymanLookup
	recipients  RecipientLookup
	notifier    Notifier

	policy           domain.RetrievalPolicy
	operationTimeout time.Duration
	logger           logx.Logger
	transitions      *prometheus.CounterVec
	now              func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics counts transitions by event and result.
func WithMetrics(transitions *prometheus.CounterVec) Option {
	return func(s *Service) { s.transitions = transitions }
}

// NewService creates a delivery Service.
func NewService(d Deps, policy domain.RetrievalPolicy, timeout time.Duration, logger logx.Logger, opts ...Option) *Service {
	if timeout <= 0 {
		timeout = defaultOperationTimeout
	}
	if logger == nil {
		logger = logx.Nop()
	}
	s := &Service{
		deliveries:       d.Deliveries,
		problems:         d.Problems,
		deliverymen:      d.Deliverymen,
		recipients:       d.Recipients,
		notifier:         d.Notifier,
		policy:           policy,
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", apperr.ErrInvalid, msg)
}

// observe counts a transition attempt. Lifecycle guard failures are "rejected".
func (s *Service) observe(event string, err error) {
	if s.transitions == nil {
		return
	}
	result := "ok"
	switch {
	case err == nil:
	case isRejection(err):
		result = "rejected"
	default:
		result = "error"
	}
	s.transitions.WithLabelValues(event, result).Inc()
}

func isRejection(err error) bool {
	for _, target := range []error{
		apperr.ErrInvalid, apperr.ErrNotFound, apperr.ErrForbidden, apperr.ErrConflict,
		apperr.ErrAlreadyRetrieved, apperr.ErrAlreadyDelivered, apperr.ErrAlreadyCancelled,
		apperr.ErrNotYetRetrieved, apperr.ErrOutsideRetrievalWindow, apperr.ErrRateLimitExceeded,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// CreateInput describes a new delivery.
type CreateInput struct {
	Product       string
	RecipientID   int64
	DeliverymanID int64
}

// Create registers a delivery and enqueues the confirmation mail for its deliveryman.
func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Delivery, error) {
	in.Product = strings.TrimSpace(in.Product)
	if in.Product == "" {
		return domain.Delivery{}, invalid("product is required")
	}
	if in.RecipientID <= 0 || in.DeliverymanID <= 0 {
		return domain.Delivery{}, invalid("recipient_id and deliveryman_id are required")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	dm, err := s.deliveryman(ctx, in.DeliverymanID)
	if err != nil {
		return domain.Delivery{}, err
	}
	rc, err := s.recipient(ctx, in.RecipientID)
	if err != nil {
		return domain.Delivery{}, err
	}

	d := domain.Delivery{Product: in.Product, RecipientID: rc.ID, DeliverymanID: dm.ID}
	if err := s.deliveries.Create(ctx, &d); err != nil {
		return domain.Delivery{}, err
	}

	s.logger.Info("delivery created",
		logx.String("event", "delivery_created"),
		logx.Int64("delivery_id", d.ID),
		logx.Int64("deliveryman_id", d.DeliverymanID),
	)
	s.notify(ctx, notification.ConfirmationKey, notification.NewPayload(*dm, *rc, d.Product), d.ID)
	return d, nil
}

// Get returns one delivery.
func (s *Service) Get(ctx context.Context, id int64) (domain.Delivery, error) {
	if id <= 0 {
		return domain.Delivery{}, invalid("delivery id must be positive")
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d, err := s.deliveries.Get(ctx, id)
	if err != nil {
		return domain.Delivery{}, err
	}
	if d == nil {
		return domain.Delivery{}, apperr.ErrNotFound
	}
	return *d, nil
}

// Update changes the product or reassigns the recipient or deliveryman.
func (s *Service) Update(ctx context.Context, u domain.DeliveryUpdate) (domain.Delivery, error) {
	if u.ID <= 0 {
		return domain.Delivery{}, invalid("delivery id must be positive")
	}
	if u.Product == nil && u.RecipientID == nil && u.DeliverymanID == nil {
		return domain.Delivery{}, invalid("nothing to update")
	}
	if u.Product != nil {
		p := strings.TrimSpace(*u.Product)
		if p == "" {
			return domain.Delivery{}, invalid("product must not be empty")
		}
		u.Product = &p
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if u.DeliverymanID != nil {
		if _, err := s.deliveryman(ctx, *u.DeliverymanID); err != nil {
			return domain.Delivery{}, err
		}
	}
	if u.RecipientID != nil {
		if _, err := s.recipient(ctx, *u.RecipientID); err != nil {
			return domain.Delivery{}, err
		}
	}

	ok, err := s.deliveries.Update(ctx, u)
	if err != nil {
		return domain.Delivery{}, err
	}
	if !ok {
		return domain.Delivery{}, apperr.ErrNotFound
	}

	d, err := s.deliveries.Get(ctx, u.ID)
	if err != nil {
		return domain.Delivery{}, err
	}
	if d == nil {
		return domain.Delivery{}, apperr.ErrNotFound
	}
	return *d, nil
}

// Delete removes a delivery together with its problem reports.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalid("delivery id must be positive")
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ok, err := s.deliveries.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotFound
	}
	return nil
}

// List returns a page of deliveries matching f.
func (s *Service) List(ctx context.Context, f domain.DeliveryFilter, page domain.Page) ([]domain.Delivery, int, error) {
	f.Query = strings.TrimSpace(f.Query)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.deliveries.List(ctx, f, page)
}

// ListForDeliveryman returns the deliveryman's non-cancelled deliveries, either
// delivered or still open.
func (s *Service) ListForDeliveryman(ctx context.Context, deliverymanID int64, delivered bool, page domain.Page) ([]domain.Delivery, int, error) {
	if deliverymanID <= 0 {
		return nil, 0, invalid("deliveryman id must be positive")
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.deliveryman(ctx, deliverymanID); err != nil {
		return nil, 0, err
	}
	return s.deliveries.List(ctx, domain.DeliveryFilter{
		DeliverymanID: deliverymanID,
		Cancelled:     domain.Ptr(false),
		Delivered:     domain.Ptr(delivered),
	}, page)
}

// Retrieve records that the deliveryman picked up the package.
func (s *Service) Retrieve(ctx context.Context, deliverymanID, deliveryID int64) (d domain.Delivery, err error) {
	defer func() { s.observe("delivery_retrieved", err) }()
	if deliverymanID <= 0 || deliveryID <= 0 {
		return domain.Delivery{}, invalid("ids must be positive")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.now()
	updated, err := s.evalRetrieve(ctx, deliverymanID, deliveryID, now)
	if err != nil {
		return domain.Delivery{}, err
	}

	start, end := s.policy.Day(now)
	ok, err := s.deliveries.MarkRetrieved(ctx, deliveryID, deliverymanID, now, repository.RetrieveCond{
		DayStart: start,
		DayEnd:   end,
		Limit:    s.policy.DailyLimit,
	})
	if err != nil {
		return domain.Delivery{}, err
	}
	if !ok {
		return domain.Delivery{}, s.lost(func() error {
			_, err := s.evalRetrieve(ctx, deliverymanID, deliveryID, now)
			return err
		})
	}

	s.logger.Info("delivery retrieved",
		logx.String("event", "delivery_retrieved"),
		logx.Int64("delivery_id", deliveryID),
		logx.Int64("deliveryman_id", deliverymanID),
	)
	return updated, nil
}

func (s *Service) evalRetrieve(ctx context.Context, deliverymanID, deliveryID int64, now time.Time) (domain.Delivery, error) {
	start, end := s.policy.Day(now)
	count, err := s.deliveries.CountRetrievedBetween(ctx, deliverymanID, start, end)
	if err != nil {
		return domain.Delivery{}, err
	}
	cur, err := s.deliveries.Get(ctx, deliveryID)
	if err != nil {
		return domain.Delivery{}, err
	}
	return domain.Retrieve(cur, deliverymanID, count, now, s.policy)
}

// lost re-runs the guards after a conditional write matched no row, so the
// caller sees the precise failure.
func (s *Service) lost(recheck func() error) error {
	if err := recheck(); err != nil {
		return err
	}
	return apperr.ErrConflict
}

// Deliver records the hand-over with the recipient's signature.
func (s *Service) Deliver(ctx context.Context, deliverymanID, deliveryID, signatureID int64) (d domain.Delivery, err error) {
	defer func() { s.observe("delivery_delivered", err) }()
	if deliverymanID <= 0 || deliveryID <= 0 {
		return domain.Delivery{}, invalid("ids must be positive")
	}
	if signatureID <= 0 {
		return domain.Delivery{}, invalid("signature_id is required")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.now()
	eval := func() (domain.Delivery, error) {
		cur, err := s.deliveries.Get(ctx, deliveryID)
		if err != nil {
			return domain.Delivery{}, err
		}
		return domain.Deliver(cur, deliverymanID, signatureID, now)
	}

	updated, err := eval()
	if err != nil {
		return domain.Delivery{}, err
	}
	ok, err := s.deliveries.MarkDelivered(ctx, deliveryID, deliverymanID, signatureID, now)
	if err != nil {
		return domain.Delivery{}, err
	}
	if !ok {
		return domain.Delivery{}, s.lost(func() error {
			_, err := eval()
			return err
		})
	}

	s.logger.Info("delivery delivered",
		logx.String("event", "delivery_delivered"),
		logx.Int64("delivery_id", deliveryID),
		logx.Int64("deliveryman_id", deliverymanID),
		logx.Int64("signature_id", signatureID),
	)
	return updated, nil
}

// ReportProblem files a problem against a delivery in transit.
func (s *Service) ReportProblem(ctx context.Context, deliveryID int64, description string) (p domain.Problem, err error) {
	defer func() { s.observe("problem_reported", err) }()
	description = strings.TrimSpace(description)
	if deliveryID <= 0 {
		return domain.Problem{}, invalid("delivery id must be positive")
	}
	if description == "" {
		return domain.Problem{}, invalid("description is required")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.now()
	eval := func() (domain.Problem, error) {
		cur, err := s.deliveries.Get(ctx, deliveryID)
		if err != nil {
			return domain.Problem{}, err
		}
		return domain.ReportProblem(cur, description, now)
	}

	p, err = eval()
	if err != nil {
		return domain.Problem{}, err
	}
	ok, err := s.problems.Create(ctx, &p)
	if err != nil {
		return domain.Problem{}, err
	}
	if !ok {
		return domain.Problem{}, s.lost(func() error {
			_, err := eval()
			return err
		})
	}

	s.logger.Info("problem reported",
		logx.String("event", "problem_reported"),
		logx.Int64("delivery_id", deliveryID),
		logx.Int64("problem_id", p.ID),
	)
	return p, nil
}

// ListProblems returns the problem reports of a delivery.
func (s *Service) ListProblems(ctx context.Context, deliveryID int64, page domain.Page) ([]domain.Problem, int, error) {
	if deliveryID <= 0 {
		return nil, 0, invalid("delivery id must be positive")
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d, err := s.deliveries.Get(ctx, deliveryID)
	if err != nil {
		return nil, 0, err
	}
	if d == nil {
		return nil, 0, apperr.ErrNotFound
	}
	return s.problems.ListByDelivery(ctx, deliveryID, page)
}

// CancelByProblem cancels the delivery a problem was reported on and enqueues
// the cancellation mail.
func (s *Service) CancelByProblem(ctx context.Context, problemID int64) (d domain.Delivery, err error) {
	defer func() { s.observe("delivery_cancelled", err) }()
	if problemID <= 0 {
		return domain.Delivery{}, invalid("problem id must be positive")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	problem, err := s.problems.Get(ctx, problemID)
	if err != nil {
		return domain.Delivery{}, err
	}
	if problem == nil {
		return domain.Delivery{}, apperr.ErrNotFound
	}

	now := s.now()
	eval := func() (domain.Delivery, error) {
		cur, err := s.deliveries.Get(ctx, problem.DeliveryID)
		if err != nil {
			return domain.Delivery{}, err
		}
		return domain.Cancel(cur, now)
	}

	updated, err := eval()
	if err != nil {
		return domain.Delivery{}, err
	}
	ok, err := s.deliveries.MarkCancelled(ctx, updated.ID, now)
	if err != nil {
		return domain.Delivery{}, err
	}
	if !ok {
		return domain.Delivery{}, s.lost(func() error {
			_, err := eval()
			return err
		})
	}

	s.logger.Info("delivery cancelled",
		logx.String("event", "delivery_cancelled"),
		logx.Int64("delivery_id", updated.ID),
		logx.Int64("problem_id", problemID),
	)

	dm, dmErr := s.deliveryman(ctx, updated.DeliverymanID)
	rc, rcErr := s.recipient(ctx, updated.RecipientID)
	if err := errors.Join(dmErr, rcErr); err != nil {
		s.logger.Error("cancellation mail skipped",
			logx.Int64("delivery_id", updated.ID),
			logx.Err(err),
		)
		return updated, nil
	}
	s.notify(ctx, notification.CancellationKey, notification.NewPayload(*dm, *rc, updated.Product), updated.ID)
	return updated, nil
}

// notify enqueues a mail job. Failures are logged; the transition already happened.
func (s *Service) notify(ctx context.Context, key string, payload notification.Payload, deliveryID int64) {
	if s.notifier == nil {
		return
	}
	jobID, err := s.notifier.Enqueue(ctx, key, payload)
	if err != nil {
		s.logger.Error("enqueue notification failed",
			logx.String("queue", key),
			logx.Int64("delivery_id", deliveryID),
			logx.Err(err),
		)
		return
	}
	s.logger.Debug("notification enqueued",
		logx.String("queue", key),
		logx.String("job_id", jobID),
		logx.Int64("delivery_id", deliveryID),
	)
}

func (s *Service) deliveryman(ctx context.Context, id int64) (*domain.Deliveryman, error) {
	dm, err := s.deliverymen.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if dm == nil {
		return nil, fmt.Errorf("deliveryman %d: %w", id, apperr.ErrNotFound)
	}
	return dm, nil
}

func (s *Service) recipient(ctx context.Context, id int64) (*domain.Recipient, error) {
	rc, err := s.recipients.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, fmt.Errorf("recipient %d: %w", id, apperr.ErrNotFound)
	}
	return rc, nil
}
