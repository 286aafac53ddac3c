package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"parcel-delivery/internal/apperr"
	"parcel-delivery/internal/domain"
)

// DeliverymanRepo represents deliveryman repository.
type DeliverymanRepo struct {
	db DB
	sb sq.StatementBuilderType
}

// NewDeliverymanRepo creates a new DeliverymanRepo.
func NewDeliverymanRepo(db DB) *DeliverymanRepo {
	return &DeliverymanRepo{db: db, sb: psql()}
}

// Get - returns deliveryman by its ID, nil if absent.
func (r *DeliverymanRepo) Get(ctx context.Context, id int64) (*domain.Deliveryman, error) {
	var m domain.Deliveryman
	err := r.db.QueryRow(ctx,
		`SELECT id, name, email, avatar_id, created_at FROM deliverymen WHERE id = $1`, id,
	).Scan(&m.ID, &m.Name, &m.Email, &m.AvatarID, &m.CreatedAt)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get deliveryman %d: %w", id, err)
	}
	return &m, nil
}

// List returns a page of deliverymen whose name contains f.Query, plus the total.
func (r *DeliverymanRepo) List(ctx context.Context, f domain.PeopleFilter, p domain.Page) ([]domain.Deliveryman, int, error) {
	where := sq.And{}
	if f.Query != "" {
		where = append(where, sq.ILike{"name": containsPattern(f.Query)})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("deliverymen").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count deliverymen sql: %w", err)
	}
	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count deliverymen: %w", err)
	}

	listSQL, listArgs, err := r.sb.Select("id, name, email, avatar_id, created_at").
		From("deliverymen").
		Where(where).
		OrderBy("id").
		Limit(uint64(p.Limit())).
		Offset(uint64(p.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list deliverymen sql: %w", err)
	}

	rows, err := r.db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list deliverymen: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Deliveryman, 0, p.Limit())
	for rows.Next() {
		var m domain.Deliveryman
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.AvatarID, &m.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan deliveryman: %w", err)
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

// Create - creates a new deliveryman.
func (r *DeliverymanRepo) Create(ctx context.Context, m *domain.Deliveryman) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO deliverymen (name, email, avatar_id) VALUES ($1, $2, $3) RETURNING id`,
		m.Name, m.Email, m.AvatarID).Scan(&id)
	if err != nil {
		if IsDuplicate(err) {
			return 0, apperr.ErrConflict
		}
		return 0, fmt.Errorf("create deliveryman: %w", err)
	}
	return id, nil
}

// Update applies a partial update and returns true if a row was affected.
func (r *DeliverymanRepo) Update(ctx context.Context, u domain.DeliverymanUpdate) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE deliverymen
        SET
            name       = COALESCE($2, name),
            email      = COALESCE($3, email),
            avatar_id  = COALESCE($4, avatar_id),
            updated_at = now()
        WHERE id = $1
    `, u.ID, u.Name, u.Email, u.AvatarID)
	if err != nil {
		if IsDuplicate(err) {
			return false, apperr.ErrConflict
		}
		return false, fmt.Errorf("update deliveryman %d: %w", u.ID, err)
	}
	return ct.RowsAffected() > 0, nil
}

// Delete removes a deliveryman without deliveries.
func (r *DeliverymanRepo) Delete(ctx context.Context, id int64) (bool, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM deliverymen WHERE id = $1`, id)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return false, apperr.ErrConflict
		}
		return false, fmt.Errorf("delete deliveryman %d: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}
