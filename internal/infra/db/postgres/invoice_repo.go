package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"hosting-billing-engine/internal/domain"
	"hosting-billing-engine/internal/domain/model"
	"hosting-billing-engine/internal/domain/ports/repository"
)

// Ensure invoiceRepo implements repository.InvoiceRepository
var _ repository.InvoiceRepository = (*invoiceRepo)(nil)

type invoiceRepo struct {
	pool *pgxpool.Pool
}

func NewInvoiceRepo(pool *pgxpool.Pool) *invoiceRepo {
	return &invoiceRepo{pool: pool}
}

func (r *invoiceRepo) Save(ctx context.Context, tx repository.Tx, inv *model.Invoice) error {
	const q = `
INSERT INTO invoices (id, customer_id, subscription_id, amount_cents, currency, status, transaction_id, issued_at, due_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET status=$6, transaction_id=$7;`
	_, err := execSQL(ctx, r.pool, tx, q,
		inv.ID, inv.CustomerID, inv.SubscriptionID, inv.AmountCents, inv.Currency,
		inv.Status, inv.TransactionID, inv.IssuedAt, inv.DueAt)
	if err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *invoiceRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Invoice, error) {
	const q = `
SELECT id, customer_id, subscription_id, amount_cents, currency, status, transaction_id, issued_at, due_at
  FROM invoices ORDER BY issued_at DESC OFFSET $1 LIMIT $2;`
	return r.queryMany(ctx, tx, q, offset, limit)
}

func (r *invoiceRepo) ListByCustomer(ctx context.Context, tx repository.Tx, customerID string) ([]*model.Invoice, error) {
	const q = `
SELECT id, customer_id, subscription_id, amount_cents, currency, status, transaction_id, issued_at, due_at
  FROM invoices WHERE customer_id=$1 ORDER BY issued_at DESC;`
	return r.queryMany(ctx, tx, q, customerID)
}

func (r *invoiceRepo) SumByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	var interval string
	switch period {
	case "week":
		interval = "7 days"
	case "month":
		interval = "1 month"
	case "year":
		interval = "1 year"
	default:
		return 0, fmt.Errorf("%w: period %q", domain.ErrInvalidArgument, period)
	}
	q := `SELECT COALESCE(SUM(amount_cents),0) FROM invoices WHERE status='paid' AND issued_at >= NOW() - INTERVAL '` + interval + `';`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *invoiceRepo) queryMany(ctx context.Context, tx repository.Tx, sql string, args ...any) ([]*model.Invoice, error) {
	rows, err := queryRows(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Invoice
	for rows.Next() {
		inv := &model.Invoice{}
		var status string
		if err := rows.Scan(&inv.ID, &inv.CustomerID, &inv.SubscriptionID, &inv.AmountCents, &inv.Currency,
			&status, &inv.TransactionID, &inv.IssuedAt, &inv.DueAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		inv.Status = model.InvoiceStatus(status)
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}
