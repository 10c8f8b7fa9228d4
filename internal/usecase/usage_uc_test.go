//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"hosting-billing-engine/internal/domain"
	"hosting-billing-engine/internal/domain/model"
	"hosting-billing-engine/internal/usecase"
)

type usageFixture struct {
	usage *MockUsageRepo
	subs  *MockSubscriptionRepo
	plans *MockPlanRepo
	uc    usecase.UsageUseCase
}

func newUsageFixture(t *testing.T) *usageFixture {
	t.Helper()
	f := &usageFixture{
		usage: NewMockUsageRepo(),
		subs:  NewMockSubscriptionRepo(),
		plans: NewMockPlanRepo(),
	}
	f.uc = usecase.NewUsageUseCase(f.usage, f.subs, f.plans)
	return f
}

func (f *usageFixture) seed(ctx context.Context) {
	f.plans.Save(ctx, nil, &model.HostingPlan{
		ID: "plan-business", Name: "Business", PriceCents: 2999, Currency: "USD",
		Cycle: model.BillingCycleMonthly, StorageGB: 100, BandwidthGB: 1000, Active: true,
	})
	f.subs.Save(ctx, nil, &model.Subscription{
		ID: "sub-1", CustomerID: "cust-1", PlanID: "plan-business",
		BillingCycle: model.BillingCycleMonthly, AmountCents: 2999, Currency: "USD",
		Status: model.SubscriptionStatusActive, PaymentStatus: model.PaymentStatePaid,
		PaymentMethod: model.ProviderCard, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	})
}

func TestUsageReport(t *testing.T) {
	ctx := context.Background()

	t.Run("stamps the current month", func(t *testing.T) {
		f := newUsageFixture(t)
		f.seed(ctx)

		rec, err := f.uc.Report(ctx, "sub-1", 42.5, 310)
		if err != nil {
			t.Fatalf("Report: %v", err)
		}
		want := time.Now().Format(model.UsagePeriodLayout)
		if rec.Period != want {
			t.Errorf("period = %s, want %s", rec.Period, want)
		}
		stored, err := f.usage.FindByPeriod(ctx, nil, "sub-1", want)
		if err != nil {
			t.Fatalf("record not stored: %v", err)
		}
		if stored.StorageUsedGB != 42.5 || stored.BandwidthUsedGB != 310 {
			t.Errorf("stored = %+v", stored)
		}
	})

	t.Run("a later report for the same month replaces the earlier one", func(t *testing.T) {
		f := newUsageFixture(t)
		f.seed(ctx)

		if _, err := f.uc.Report(ctx, "sub-1", 10, 100); err != nil {
			t.Fatalf("first report: %v", err)
		}
		if _, err := f.uc.Report(ctx, "sub-1", 20, 200); err != nil {
			t.Fatalf("second report: %v", err)
		}
		all, _ := f.uc.List(ctx)
		if len(all) != 1 {
			t.Fatalf("records = %d, want 1", len(all))
		}
		if all[0].StorageUsedGB != 20 || all[0].BandwidthUsedGB != 200 {
			t.Errorf("record = %+v, want the later numbers", all[0])
		}
	})

	t.Run("unknown subscription is rejected", func(t *testing.T) {
		f := newUsageFixture(t)
		if _, err := f.uc.Report(ctx, "nope", 1, 1); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("negative usage is rejected", func(t *testing.T) {
		f := newUsageFixture(t)
		f.seed(ctx)
		if _, err := f.uc.Report(ctx, "sub-1", -1, 0); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("err = %v, want ErrInvalidArgument", err)
		}
	})
}

func TestUsageBySubscription(t *testing.T) {
	ctx := context.Background()

	t.Run("joins the plan quota onto each record", func(t *testing.T) {
		f := newUsageFixture(t)
		f.seed(ctx)
		if _, err := f.uc.Report(ctx, "sub-1", 42.5, 310); err != nil {
			t.Fatalf("Report: %v", err)
		}

		reports, err := f.uc.BySubscription(ctx, "sub-1")
		if err != nil {
			t.Fatalf("BySubscription: %v", err)
		}
		if len(reports) != 1 {
			t.Fatalf("reports = %d, want 1", len(reports))
		}
		got := reports[0]
		if got.StorageQuotaGB != 100 || got.BandwidthQuotaGB != 1000 {
			t.Errorf("quota = %d/%d, want 100/1000", got.StorageQuotaGB, got.BandwidthQuotaGB)
		}
		if got.StorageUsedGB != 42.5 {
			t.Errorf("storage used = %v, want 42.5", got.StorageUsedGB)
		}
	})

	t.Run("unknown subscription is ErrNotFound", func(t *testing.T) {
		f := newUsageFixture(t)
		if _, err := f.uc.BySubscription(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}
