package repository

import (
	"context"

	"hosting-billing-engine/internal/domain/model"
)

// PlanRepository is the lookup collection for hosting plans.
type PlanRepository interface {
	List(ctx context.Context, tx Tx) ([]*model.HostingPlan, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.HostingPlan, error)
	Save(ctx context.Context, tx Tx, p *model.HostingPlan) error
	Delete(ctx context.Context, tx Tx, id string) error
}
