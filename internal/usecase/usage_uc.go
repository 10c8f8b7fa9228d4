package usecase

import (
	"context"
	"fmt"
	"time"

	"hosting-billing-engine/internal/domain"
	"hosting-billing-engine/internal/domain/model"
	"hosting-billing-engine/internal/domain/ports/repository"
)

// Compile-time check
var _ UsageUseCase = (*usageUC)(nil)

// UsageUseCase tracks metered consumption per subscription. The hosting
// side reports numbers into the current period; the dashboard reads them
// back next to the plan quota.
type UsageUseCase interface {
	// Report upserts consumption for the current calendar month.
	Report(ctx context.Context, subscriptionID string, storageGB, bandwidthGB float64) (*model.UsageRecord, error)
	BySubscription(ctx context.Context, subscriptionID string) ([]*model.UsageReport, error)
	List(ctx context.Context) ([]*model.UsageRecord, error)
}

type usageUC struct {
	usage repository.UsageRepository
	subs  repository.SubscriptionRepository
	plans repository.PlanRepository
}

func NewUsageUseCase(usage repository.UsageRepository, subs repository.SubscriptionRepository, plans repository.PlanRepository) *usageUC {
	return &usageUC{usage: usage, subs: subs, plans: plans}
}

func (u *usageUC) Report(ctx context.Context, subscriptionID string, storageGB, bandwidthGB float64) (*model.UsageRecord, error) {
	if storageGB < 0 || bandwidthGB < 0 {
		return nil, fmt.Errorf("%w: usage cannot be negative", domain.ErrInvalidArgument)
	}
	if _, err := u.subs.FindByID(ctx, repository.NoTX, subscriptionID); err != nil {
		return nil, fmt.Errorf("lookup subscription %s: %w", subscriptionID, err)
	}
	rec := &model.UsageRecord{
		SubscriptionID:  subscriptionID,
		Period:          time.Now().Format(model.UsagePeriodLayout),
		StorageUsedGB:   storageGB,
		BandwidthUsedGB: bandwidthGB,
		UpdatedAt:       time.Now(),
	}
	if err := u.usage.Save(ctx, repository.NoTX, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// BySubscription joins each month's record with the subscribed plan's
// quota so the caller can render utilization.
func (u *usageUC) BySubscription(ctx context.Context, subscriptionID string) ([]*model.UsageReport, error) {
	sub, err := u.subs.FindByID(ctx, repository.NoTX, subscriptionID)
	if err != nil {
		return nil, err
	}
	plan, err := u.plans.FindByID(ctx, repository.NoTX, sub.PlanID)
	if err != nil {
		return nil, fmt.Errorf("lookup plan %s: %w", sub.PlanID, err)
	}
	records, err := u.usage.ListBySubscription(ctx, repository.NoTX, subscriptionID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.UsageReport, 0, len(records))
	for _, rec := range records {
		out = append(out, &model.UsageReport{
			UsageRecord:      *rec,
			StorageQuotaGB:   plan.StorageGB,
			BandwidthQuotaGB: plan.BandwidthGB,
		})
	}
	return out, nil
}

func (u *usageUC) List(ctx context.Context) ([]*model.UsageRecord, error) {
	return u.usage.List(ctx, repository.NoTX)
}
