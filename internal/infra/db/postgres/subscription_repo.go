package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"hosting-billing-engine/internal/domain"
	"hosting-billing-engine/internal/domain/model"
	"hosting-billing-engine/internal/domain/ports/repository"
)

// Ensure subscriptionRepo implements repository.SubscriptionRepository
var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

const subColumns = `id, customer_id, plan_id, billing_cycle, amount_cents, currency, status,
payment_status, payment_method, mandate_id, last_transaction_id, last_payment_date,
next_payment_date, renewal_date, payment_failure_reason, created_at, updated_at`

func (r *subscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if err := s.Validate(); err != nil {
		return err
	}
	const q = `
INSERT INTO subscriptions (
  id, customer_id, plan_id, billing_cycle, amount_cents, currency, status,
  payment_status, payment_method, mandate_id, last_transaction_id, last_payment_date,
  next_payment_date, renewal_date, payment_failure_reason, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
ON CONFLICT (id) DO UPDATE SET
  plan_id=$3, billing_cycle=$4, amount_cents=$5, currency=$6, status=$7,
  payment_status=$8, mandate_id=$10, last_transaction_id=$11, last_payment_date=$12,
  next_payment_date=$13, renewal_date=$14, payment_failure_reason=$15, updated_at=$17;`

	_, err := execSQL(ctx, r.pool, tx, q,
		s.ID, s.CustomerID, s.PlanID, s.BillingCycle, s.AmountCents, s.Currency, s.Status,
		s.PaymentStatus, s.PaymentMethod, s.MandateID, s.LastTransactionID, s.LastPaymentDate,
		s.NextPaymentDate, s.RenewalDate, s.PaymentFailureReason, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *subscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	q := `SELECT ` + subColumns + ` FROM subscriptions WHERE id=$1;`
	return r.queryOne(ctx, tx, q, id)
}

func (r *subscriptionRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Subscription, error) {
	q := `SELECT ` + subColumns + ` FROM subscriptions ORDER BY created_at DESC;`
	return r.queryMany(ctx, tx, q)
}

func (r *subscriptionRepo) FindDue(ctx context.Context, tx repository.Tx, due time.Time, limit int) ([]*model.Subscription, error) {
	q := `SELECT ` + subColumns + `
  FROM subscriptions
 WHERE status='active' AND next_payment_date <= $1
 ORDER BY next_payment_date ASC
 LIMIT $2;`
	return r.queryMany(ctx, tx, q, due, limit)
}

func (r *subscriptionRepo) FindPendingOlderThan(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.Subscription, error) {
	q := `SELECT ` + subColumns + `
  FROM subscriptions
 WHERE payment_status='pending' AND last_transaction_id <> '' AND updated_at <= $1
 ORDER BY updated_at ASC
 LIMIT $2;`
	return r.queryMany(ctx, tx, q, cutoff, limit)
}

func (r *subscriptionRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM subscriptions WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.SubscriptionStatus]int, error) {
	const q = `SELECT status, COUNT(*) FROM subscriptions GROUP BY status;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	counts := make(map[model.SubscriptionStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		counts[model.SubscriptionStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return counts, nil
}

func (r *subscriptionRepo) queryOne(ctx context.Context, tx repository.Tx, sql string, args ...any) (*model.Subscription, error) {
	row, err := pickRow(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, err
	}
	s, err := scanSub(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return s, nil
}

func (r *subscriptionRepo) queryMany(ctx context.Context, tx repository.Tx, sql string, args ...any) ([]*model.Subscription, error) {
	rows, err := queryRows(ctx, r.pool, tx, sql, args...)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Subscription
	for rows.Next() {
		s, err := scanSub(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSub(row rowScanner) (*model.Subscription, error) {
	s := &model.Subscription{}
	var status, payStatus, cycle, method string
	if err := row.Scan(
		&s.ID, &s.CustomerID, &s.PlanID, &cycle, &s.AmountCents, &s.Currency, &status,
		&payStatus, &method, &s.MandateID, &s.LastTransactionID, &s.LastPaymentDate,
		&s.NextPaymentDate, &s.RenewalDate, &s.PaymentFailureReason, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.BillingCycle = model.BillingCycle(cycle)
	s.Status = model.SubscriptionStatus(status)
	s.PaymentStatus = model.PaymentState(payStatus)
	s.PaymentMethod = model.ProviderID(method)
	return s, nil
}
