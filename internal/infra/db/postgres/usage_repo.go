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

// Ensure usageRepo implements repository.UsageRepository
var _ repository.UsageRepository = (*usageRepo)(nil)

type usageRepo struct {
	pool *pgxpool.Pool
}

func NewUsageRepo(pool *pgxpool.Pool) *usageRepo {
	return &usageRepo{pool: pool}
}

func (r *usageRepo) Save(ctx context.Context, tx repository.Tx, rec *model.UsageRecord) error {
	const q = `
INSERT INTO usage_records (subscription_id, period, storage_used_gb, bandwidth_used_gb, updated_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (subscription_id, period) DO UPDATE SET
  storage_used_gb=$3, bandwidth_used_gb=$4, updated_at=$5;`
	_, err := execSQL(ctx, r.pool, tx, q,
		rec.SubscriptionID, rec.Period, rec.StorageUsedGB, rec.BandwidthUsedGB, rec.UpdatedAt)
	if err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *usageRepo) FindByPeriod(ctx context.Context, tx repository.Tx, subscriptionID, period string) (*model.UsageRecord, error) {
	const q = `
SELECT subscription_id, period, storage_used_gb, bandwidth_used_gb, updated_at
  FROM usage_records WHERE subscription_id=$1 AND period=$2;`
	row, err := pickRow(ctx, r.pool, tx, q, subscriptionID, period)
	if err != nil {
		return nil, err
	}
	return scanUsage(row)
}

func (r *usageRepo) ListBySubscription(ctx context.Context, tx repository.Tx, subscriptionID string) ([]*model.UsageRecord, error) {
	const q = `
SELECT subscription_id, period, storage_used_gb, bandwidth_used_gb, updated_at
  FROM usage_records WHERE subscription_id=$1 ORDER BY period DESC;`
	return r.queryMany(ctx, tx, q, subscriptionID)
}

func (r *usageRepo) List(ctx context.Context, tx repository.Tx) ([]*model.UsageRecord, error) {
	const q = `
SELECT subscription_id, period, storage_used_gb, bandwidth_used_gb, updated_at
  FROM usage_records ORDER BY period DESC, subscription_id;`
	return r.queryMany(ctx, tx, q)
}

func (r *usageRepo) queryMany(ctx context.Context, tx repository.Tx, sql string, args ...any) ([]*model.UsageRecord, error) {
	rows, err := queryRows(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.UsageRecord
	for rows.Next() {
		rec, err := scanUsage(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func scanUsage(row rowScanner) (*model.UsageRecord, error) {
	rec := &model.UsageRecord{}
	if err := row.Scan(&rec.SubscriptionID, &rec.Period, &rec.StorageUsedGB, &rec.BandwidthUsedGB, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}
