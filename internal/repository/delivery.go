package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"parcel-delivery/internal/apperr"
	"parcel-delivery/internal/domain"
)

const deliveryColumns = "id, product, recipient_id, deliveryman_id, signature_id, start_date, end_date, cancelled_at, created_at"

// DeliveryRepo persists deliveries. The Mark* methods are conditional writes:
// they report false when the row no longer is in the expected prior state.
type DeliveryRepo struct {
	db DB
	sb sq.StatementBuilderType
}

// NewDeliveryRepo creates a new DeliveryRepo.
func NewDeliveryRepo(db DB) *DeliveryRepo {
	return &DeliveryRepo{db: db, sb: psql()}
}

func scanDelivery(row scanner) (domain.Delivery, error) {
	var d domain.Delivery
	err := row.Scan(&d.ID, &d.Product, &d.RecipientID, &d.DeliverymanID, &d.SignatureID,
		&d.StartDate, &d.EndDate, &d.CancelledAt, &d.CreatedAt)
	return d, err
}

// Get returns the delivery or nil when it does not exist.
func (r *DeliveryRepo) Get(ctx context.Context, id int64) (*domain.Delivery, error) {
	d, err := scanDelivery(r.db.QueryRow(ctx,
		`SELECT `+deliveryColumns+` FROM deliveries WHERE id = $1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery %d: %w", id, err)
	}
	return &d, nil
}

func applyDeliveryFilter(b sq.SelectBuilder, f domain.DeliveryFilter) sq.SelectBuilder {
	if f.Query != "" {
		b = b.Where(sq.ILike{"product": containsPattern(f.Query)})
	}
	if f.DeliverymanID > 0 {
		b = b.Where(sq.Eq{"deliveryman_id": f.DeliverymanID})
	}
	if f.RecipientID > 0 {
		b = b.Where(sq.Eq{"recipient_id": f.RecipientID})
	}
	b = whereSet(b, "start_date", f.Retrieved)
	b = whereSet(b, "end_date", f.Delivered)
	b = whereSet(b, "cancelled_at", f.Cancelled)
	if f.OnlyWithProblem {
		b = b.Where("EXISTS (SELECT 1 FROM delivery_problems p WHERE p.delivery_id = deliveries.id)")
	}
	return b
}

// whereSet adds "col IS NOT NULL" for true and "col IS NULL" for false.
func whereSet(b sq.SelectBuilder, col string, set *bool) sq.SelectBuilder {
	if set == nil {
		return b
	}
	if *set {
		return b.Where(sq.NotEq{col: nil})
	}
	return b.Where(sq.Eq{col: nil})
}

// List returns one page of deliveries matching f ordered by id, plus the total match count.
func (r *DeliveryRepo) List(ctx context.Context, f domain.DeliveryFilter, p domain.Page) ([]domain.Delivery, int, error) {
	countSQL, countArgs, err := applyDeliveryFilter(r.sb.Select("COUNT(*)").From("deliveries"), f).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count deliveries sql: %w", err)
	}
	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count deliveries: %w", err)
	}
	if total == 0 {
		return []domain.Delivery{}, 0, nil
	}

	listSQL, listArgs, err := applyDeliveryFilter(r.sb.Select(deliveryColumns).From("deliveries"), f).
		OrderBy("id").
		Limit(uint64(p.Limit())).
		Offset(uint64(p.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list deliveries sql: %w", err)
	}

	rows, err := r.db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Delivery, 0, p.Limit())
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan delivery: %w", err)
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

// Create inserts d and fills its ID and CreatedAt.
func (r *DeliveryRepo) Create(ctx context.Context, d *domain.Delivery) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO deliveries (product, recipient_id, deliveryman_id)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `, d.Product, d.RecipientID, d.DeliverymanID).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("create delivery: %w", err)
	}
	return nil
}

// Update applies the non-nil attributes of u and returns true if a row was affected.
func (r *DeliveryRepo) Update(ctx context.Context, u domain.DeliveryUpdate) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE deliveries
        SET
            product        = COALESCE($2, product),
            recipient_id   = COALESCE($3, recipient_id),
            deliveryman_id = COALESCE($4, deliveryman_id),
            updated_at     = now()
        WHERE id = $1
    `, u.ID, u.Product, u.RecipientID, u.DeliverymanID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return false, apperr.ErrNotFound
		}
		return false, fmt.Errorf("update delivery %d: %w", u.ID, err)
	}
	return ct.RowsAffected() > 0, nil
}

// Delete removes the delivery and its problems. It returns false if nothing was deleted.
func (r *DeliveryRepo) Delete(ctx context.Context, id int64) (bool, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM deliveries WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete delivery %d: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}

// CountRetrievedBetween counts deliveries the deliveryman picked up in [from, to).
func (r *DeliveryRepo) CountRetrievedBetween(ctx context.Context, deliverymanID int64, from, to time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM deliveries
        WHERE deliveryman_id = $1
          AND start_date >= $2
          AND start_date < $3
    `, deliverymanID, from, to).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count retrieved deliveries: %w", err)
	}
	return n, nil
}

// RetrieveCond bounds a conditional retrieval by the deliveryman's daily cap.
type RetrieveCond struct {
	DayStart time.Time
	DayEnd   time.Time
	Limit    int
}

// MarkRetrieved sets start_date if the delivery belongs to deliverymanID, has not been
// retrieved yet, and the deliveryman is still under the daily cap.
//
// The deliveryman row is locked first so that retrievals of different deliveries
// by the same deliveryman are counted one after another.
func (r *DeliveryRepo) MarkRetrieved(ctx context.Context, id, deliverymanID int64, at time.Time, c RetrieveCond) (bool, error) {
	var applied bool
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT 1 FROM deliverymen WHERE id = $1 FOR UPDATE`, deliverymanID); err != nil {
			return fmt.Errorf("lock deliveryman %d: %w", deliverymanID, err)
		}
		ct, err := tx.Exec(ctx, `
            UPDATE deliveries
            SET start_date = $3, updated_at = now()
            WHERE id = $1
              AND deliveryman_id = $2
              AND start_date IS NULL
              AND (
                  SELECT COUNT(*) FROM deliveries d
                  WHERE d.deliveryman_id = $2
                    AND d.start_date >= $4
                    AND d.start_date < $5
              ) < $6
        `, id, deliverymanID, at, c.DayStart, c.DayEnd, c.Limit)
		if err != nil {
			return err
		}
		applied = ct.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("mark delivery %d retrieved: %w", id, err)
	}
	return applied, nil
}

// MarkDelivered sets end_date and signature_id on a retrieved, open delivery.
func (r *DeliveryRepo) MarkDelivered(ctx context.Context, id, deliverymanID, signatureID int64, at time.Time) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE deliveries
        SET end_date = $4, signature_id = $3, updated_at = now()
        WHERE id = $1
          AND deliveryman_id = $2
          AND start_date IS NOT NULL
          AND end_date IS NULL
          AND cancelled_at IS NULL
    `, id, deliverymanID, signatureID, at)
	if err != nil {
		return false, fmt.Errorf("mark delivery %d delivered: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}

// MarkCancelled sets cancelled_at on a delivery that is neither delivered nor cancelled.
func (r *DeliveryRepo) MarkCancelled(ctx context.Context, id int64, at time.Time) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE deliveries
        SET cancelled_at = $2, updated_at = now()
        WHERE id = $1
          AND end_date IS NULL
          AND cancelled_at IS NULL
    `, id, at)
	if err != nil {
		return false, fmt.Errorf("mark delivery %d cancelled: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}
