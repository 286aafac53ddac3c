package repository

import (
	"context"
	"fmt"

	"parcel-delivery/internal/domain"
)

// ProblemRepo persists delivery problem reports.
type ProblemRepo struct{ db DB }

// NewProblemRepo creates a new ProblemRepo.
func NewProblemRepo(db DB) *ProblemRepo { return &ProblemRepo{db: db} }

// Get returns the problem or nil when it does not exist.
func (r *ProblemRepo) Get(ctx context.Context, id int64) (*domain.Problem, error) {
	var p domain.Problem
	err := r.db.QueryRow(ctx,
		`SELECT id, delivery_id, description, created_at FROM delivery_problems WHERE id = $1`, id,
	).Scan(&p.ID, &p.DeliveryID, &p.Description, &p.CreatedAt)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get problem %d: %w", id, err)
	}
	return &p, nil
}

// ListByDelivery returns one page of problems reported for a delivery, oldest first.
func (r *ProblemRepo) ListByDelivery(ctx context.Context, deliveryID int64, page domain.Page) ([]domain.Problem, int, error) {
	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM delivery_problems WHERE delivery_id = $1`, deliveryID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count problems: %w", err)
	}
	if total == 0 {
		return []domain.Problem{}, 0, nil
	}

	rows, err := r.db.Query(ctx, `
        SELECT id, delivery_id, description, created_at
        FROM delivery_problems
        WHERE delivery_id = $1
        ORDER BY id
        LIMIT $2 OFFSET $3
    `, deliveryID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list problems: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Problem, 0, page.Limit())
	for rows.Next() {
		var p domain.Problem
		if err := rows.Scan(&p.ID, &p.DeliveryID, &p.Description, &p.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan problem: %w", err)
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// Create inserts p only while its delivery is retrieved and not cancelled.
// It returns false when that condition no longer holds.
func (r *ProblemRepo) Create(ctx context.Context, p *domain.Problem) (bool, error) {
	err := r.db.QueryRow(ctx, `
        INSERT INTO delivery_problems (delivery_id, description, created_at)
        SELECT d.id, $2, $3
        FROM deliveries d
        WHERE d.id = $1
          AND d.start_date IS NOT NULL
          AND d.cancelled_at IS NULL
        RETURNING id
    `, p.DeliveryID, p.Description, p.CreatedAt).Scan(&p.ID)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("create problem: %w", err)
	}
	return true, nil
}
