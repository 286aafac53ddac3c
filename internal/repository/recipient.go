package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"parcel-delivery/internal/apperr"
	"parcel-delivery/internal/domain"
)

const recipientColumns = "id, name, street, street_number, complement, state, city, zip_code, created_at"

// RecipientRepo represents recipient repository.
type RecipientRepo struct {
	db DB
	sb sq.StatementBuilderType
}

// NewRecipientRepo creates a new RecipientRepo.
func NewRecipientRepo(db DB) *RecipientRepo {
	return &RecipientRepo{db: db, sb: psql()}
}

func scanRecipient(row scanner) (domain.Recipient, error) {
	var rc domain.Recipient
	err := row.Scan(&rc.ID, &rc.Name, &rc.Street, &rc.StreetNumber, &rc.Complement,
		&rc.State, &rc.City, &rc.ZipCode, &rc.CreatedAt)
	return rc, err
}

// Get - returns recipient by its ID, nil if absent.
func (r *RecipientRepo) Get(ctx context.Context, id int64) (*domain.Recipient, error) {
	rc, err := scanRecipient(r.db.QueryRow(ctx,
		`SELECT `+recipientColumns+` FROM recipients WHERE id = $1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recipient %d: %w", id, err)
	}
	return &rc, nil
}

// List returns a page of recipients whose name contains f.Query, plus the total.
func (r *RecipientRepo) List(ctx context.Context, f domain.PeopleFilter, p domain.Page) ([]domain.Recipient, int, error) {
	where := sq.And{}
	if f.Query != "" {
		where = append(where, sq.ILike{"name": containsPattern(f.Query)})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("recipients").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count recipients sql: %w", err)
	}
	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count recipients: %w", err)
	}

	listSQL, listArgs, err := r.sb.Select(recipientColumns).
		From("recipients").
		Where(where).
		OrderBy("id").
		Limit(uint64(p.Limit())).
		Offset(uint64(p.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list recipients sql: %w", err)
	}

	rows, err := r.db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list recipients: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Recipient, 0, p.Limit())
	for rows.Next() {
		rc, err := scanRecipient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan recipient: %w", err)
		}
		out = append(out, rc)
	}
	return out, total, rows.Err()
}

// Create - creates a new recipient.
func (r *RecipientRepo) Create(ctx context.Context, rc *domain.Recipient) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
        INSERT INTO recipients (name, street, street_number, complement, state, city, zip_code)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `, rc.Name, rc.Street, rc.StreetNumber, rc.Complement, rc.State, rc.City, rc.ZipCode).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create recipient: %w", err)
	}
	return id, nil
}

// Update applies a partial update and returns true if a row was affected.
func (r *RecipientRepo) Update(ctx context.Context, u domain.RecipientUpdate) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE recipients
        SET
            name          = COALESCE($2, name),
            street        = COALESCE($3, street),
            street_number = COALESCE($4, street_number),
            complement    = COALESCE($5, complement),
            state         = COALESCE($6, state),
            city          = COALESCE($7, city),
            zip_code      = COALESCE($8, zip_code),
            updated_at    = now()
        WHERE id = $1
    `, u.ID, u.Name, u.Street, u.StreetNumber, u.Complement, u.State, u.City, u.ZipCode)
	if err != nil {
		return false, fmt.Errorf("update recipient %d: %w", u.ID, err)
	}
	return ct.RowsAffected() > 0, nil
}

// Delete removes a recipient without deliveries.
func (r *RecipientRepo) Delete(ctx context.Context, id int64) (bool, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM recipients WHERE id = $1`, id)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return false, apperr.ErrConflict
		}
		return false, fmt.Errorf("delete recipient %d: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}
