package usecase

import (
	"context"

	"github.com/google/uuid"

	"hosting-billing-engine/internal/domain"
	"hosting-billing-engine/internal/domain/model"
	"hosting-billing-engine/internal/domain/ports/repository"
)

// Compile-time check
var _ PlanUseCase = (*planUC)(nil)

type PlanUseCase interface {
	Create(ctx context.Context, name string, priceCents int64, cycle model.BillingCycle, storageGB, bandwidthGB int) (*model.HostingPlan, error)
	Get(ctx context.Context, id string) (*model.HostingPlan, error)
	List(ctx context.Context) ([]*model.HostingPlan, error)
	Update(ctx context.Context, p *model.HostingPlan) (*model.HostingPlan, error)
	Delete(ctx context.Context, id string) error
}

type planUC struct {
	plans repository.PlanRepository
}

func NewPlanUseCase(plans repository.PlanRepository) *planUC {
	return &planUC{plans: plans}
}

func (u *planUC) Create(ctx context.Context, name string, priceCents int64, cycle model.BillingCycle, storageGB, bandwidthGB int) (*model.HostingPlan, error) {
	if name == "" || priceCents <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if cycle == "" {
		cycle = model.BillingCycleMonthly
	}
	p := &model.HostingPlan{
		ID:          uuid.NewString(),
		Name:        name,
		PriceCents:  priceCents,
		Currency:    "USD",
		Cycle:       cycle,
		StorageGB:   storageGB,
		BandwidthGB: bandwidthGB,
		Active:      true,
	}
	if err := u.plans.Save(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (u *planUC) Get(ctx context.Context, id string) (*model.HostingPlan, error) {
	return u.plans.FindByID(ctx, repository.NoTX, id)
}

func (u *planUC) List(ctx context.Context) ([]*model.HostingPlan, error) {
	return u.plans.List(ctx, repository.NoTX)
}

func (u *planUC) Update(ctx context.Context, p *model.HostingPlan) (*model.HostingPlan, error) {
	if p == nil || p.ID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if _, err := u.plans.FindByID(ctx, repository.NoTX, p.ID); err != nil {
		return nil, err
	}
	if err := u.plans.Save(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (u *planUC) Delete(ctx context.Context, id string) error {
	return u.plans.Delete(ctx, repository.NoTX, id)
}
