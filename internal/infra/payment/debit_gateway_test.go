//go:build !integration

package payment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"hosting-billing-engine/internal/domain"
	"hosting-billing-engine/internal/domain/model"
)

func TestDebitGateway_Charge(t *testing.T) {
	ctx := context.Background()

	t.Run("accepted charge is pending, not completed", func(t *testing.T) {
		g := NewDebitGateway(0.95, testLogger(),
			WithDebitLatency(time.Millisecond),
			WithDebitOutcomeSource(fixedSource(0.10)))

		res, err := g.Charge(ctx, 2999, "EUR")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if res.Outcome != model.OutcomePending {
			t.Errorf("outcome = %s, want pending", res.Outcome)
		}
		if !strings.HasPrefix(res.TransactionID, "dd_") {
			t.Errorf("transaction ID %q lacks dd_ prefix", res.TransactionID)
		}
	})

	t.Run("rejected charge reports an invalid mandate", func(t *testing.T) {
		g := NewDebitGateway(0.95, testLogger(),
			WithDebitLatency(time.Millisecond),
			WithDebitOutcomeSource(fixedSource(0.99)))

		_, err := g.Charge(ctx, 2999, "EUR")
		if !errors.Is(err, domain.ErrInvalidMandate) {
			t.Fatalf("expected ErrInvalidMandate, got: %v", err)
		}
		if !strings.Contains(err.Error(), "mandate rejected by bank") {
			t.Errorf("error %q lacks rejection reason", err)
		}
	})
}

func TestDebitGateway_Mandates(t *testing.T) {
	ctx := context.Background()
	g := NewDebitGateway(0.95, testLogger(), WithDebitLatency(time.Millisecond))

	res, err := g.CreateMandate(ctx, &model.Customer{ID: "c1"}, "Business")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if res.Status != model.MandateStatusPendingApproval {
		t.Errorf("status = %s, want pending_customer_approval", res.Status)
	}
	if !strings.HasPrefix(res.MandateID, "mnd_dd_") {
		t.Errorf("mandate ID %q lacks mnd_dd_ prefix", res.MandateID)
	}

	if err := g.CancelMandate(ctx, res.MandateID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := g.CancelMandate(ctx, "mnd_dd_unknown"); !errors.Is(err, domain.ErrMandateNotFound) {
		t.Fatalf("expected ErrMandateNotFound, got: %v", err)
	}
}

func TestDebitGateway_QueryStatus(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		roll float64
		want model.PaymentOutcome
	}{
		{"low roll settles", 0.10, model.OutcomeCompleted},
		{"mid roll still in flight", 0.80, model.OutcomePending},
		{"high roll bounces", 0.95, model.OutcomeFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewDebitGateway(0.95, testLogger(),
				WithDebitLatency(time.Millisecond),
				WithDebitOutcomeSource(fixedSource(tc.roll)))

			res, err := g.QueryStatus(ctx, "dd_42")
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if res.Outcome != tc.want {
				t.Errorf("outcome = %s, want %s", res.Outcome, tc.want)
			}
			if res.TransactionID != "dd_42" {
				t.Errorf("transaction ID not echoed: %q", res.TransactionID)
			}
		})
	}
}
