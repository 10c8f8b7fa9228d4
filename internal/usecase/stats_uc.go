package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"hosting-billing-engine/internal/domain/model"
	"hosting-billing-engine/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// StatsUseCase aggregates the dashboard headline numbers.
type StatsUseCase interface {
	Totals(ctx context.Context) (customers int, byStatus map[model.SubscriptionStatus]int, err error)
	// MonthlyRecurringRevenue sums the cycle-normalized amount of active
	// subscriptions, in cents per month.
	MonthlyRecurringRevenue(ctx context.Context) (int64, error)
	Revenue(ctx context.Context) (week, month, year int64, err error)
}

type statsUC struct {
	customers repository.CustomerRepository
	subs      repository.SubscriptionRepository
	invoices  repository.InvoiceRepository
	log       *zerolog.Logger
}

func NewStatsUseCase(customers repository.CustomerRepository, subs repository.SubscriptionRepository, invoices repository.InvoiceRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{customers: customers, subs: subs, invoices: invoices, log: logger}
}

func (s *statsUC) Totals(ctx context.Context) (int, map[model.SubscriptionStatus]int, error) {
	customers, err := s.customers.Count(ctx, repository.NoTX)
	if err != nil {
		return 0, nil, err
	}
	byStatus, err := s.subs.CountByStatus(ctx, repository.NoTX)
	if err != nil {
		return 0, nil, err
	}
	return customers, byStatus, nil
}

func (s *statsUC) MonthlyRecurringRevenue(ctx context.Context) (int64, error) {
	subs, err := s.subs.List(ctx, repository.NoTX)
	if err != nil {
		return 0, err
	}
	var mrr int64
	for _, sub := range subs {
		if sub.Status != model.SubscriptionStatusActive {
			continue
		}
		if sub.BillingCycle == model.BillingCycleYearly {
			mrr += sub.AmountCents / 12
		} else {
			mrr += sub.AmountCents
		}
	}
	return mrr, nil
}

func (s *statsUC) Revenue(ctx context.Context) (int64, int64, int64, error) {
	w, err := s.invoices.SumByPeriod(ctx, repository.NoTX, "week")
	if err != nil {
		return 0, 0, 0, err
	}
	m, err := s.invoices.SumByPeriod(ctx, repository.NoTX, "month")
	if err != nil {
		return 0, 0, 0, err
	}
	y, err := s.invoices.SumByPeriod(ctx, repository.NoTX, "year")
	if err != nil {
		return 0, 0, 0, err
	}
	return w, m, y, nil
}
