package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"hosting-billing-engine/internal/domain"
	"hosting-billing-engine/internal/domain/model"
	"hosting-billing-engine/internal/domain/ports/repository"
)

// Ensure customerRepo implements repository.CustomerRepository
var _ repository.CustomerRepository = (*customerRepo)(nil)

type customerRepo struct {
	pool *pgxpool.Pool
}

func NewCustomerRepo(pool *pgxpool.Pool) *customerRepo {
	return &customerRepo{pool: pool}
}

func (r *customerRepo) Save(ctx context.Context, tx repository.Tx, c *model.Customer) error {
	const q = `
INSERT INTO customers (id, name, email, company, region, payment_method, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  name=$2, email=$3, company=$4, region=$5, payment_method=$6, status=$7;`
	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.Name, c.Email, c.Company, c.Region, c.PaymentMethod, c.Status, c.CreatedAt)
	if err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *customerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Customer, error) {
	const q = `
SELECT id, name, email, company, region, payment_method, status, created_at
  FROM customers WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	c := &model.Customer{}
	var pm string
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Company, &c.Region, &pm, &c.Status, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	c.PaymentMethod = model.PaymentMethodPreference(pm)
	return c, nil
}

func (r *customerRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Customer, error) {
	const q = `
SELECT id, name, email, company, region, payment_method, status, created_at
  FROM customers ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Customer
	for rows.Next() {
		c := &model.Customer{}
		var pm string
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Company, &c.Region, &pm, &c.Status, &c.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		c.PaymentMethod = model.PaymentMethodPreference(pm)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *customerRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM customers WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *customerRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	const q = `SELECT COUNT(*) FROM customers;`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}
