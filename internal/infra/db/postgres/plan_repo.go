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

// Ensure planRepo implements repository.PlanRepository
var _ repository.PlanRepository = (*planRepo)(nil)

type planRepo struct {
	pool *pgxpool.Pool
}

func NewPlanRepo(pool *pgxpool.Pool) *planRepo {
	return &planRepo{pool: pool}
}

func (r *planRepo) Save(ctx context.Context, tx repository.Tx, p *model.HostingPlan) error {
	const q = `
INSERT INTO hosting_plans (id, name, price_cents, currency, billing_cycle, storage_gb, bandwidth_gb, active)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  name=$2, price_cents=$3, currency=$4, billing_cycle=$5, storage_gb=$6, bandwidth_gb=$7, active=$8;`
	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.Name, p.PriceCents, p.Currency, p.Cycle, p.StorageGB, p.BandwidthGB, p.Active)
	if err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *planRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.HostingPlan, error) {
	const q = `
SELECT id, name, price_cents, currency, billing_cycle, storage_gb, bandwidth_gb, active
  FROM hosting_plans WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPlan(row)
}

func (r *planRepo) List(ctx context.Context, tx repository.Tx) ([]*model.HostingPlan, error) {
	const q = `
SELECT id, name, price_cents, currency, billing_cycle, storage_gb, bandwidth_gb, active
  FROM hosting_plans ORDER BY price_cents ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.HostingPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *planRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM hosting_plans WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanPlan(row rowScanner) (*model.HostingPlan, error) {
	p := &model.HostingPlan{}
	var cycle string
	if err := row.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Currency, &cycle, &p.StorageGB, &p.BandwidthGB, &p.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.Cycle = model.BillingCycle(cycle)
	return p, nil
}
