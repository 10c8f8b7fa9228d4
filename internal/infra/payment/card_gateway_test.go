//go:build !integration

package payment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"hosting-billing-engine/internal/domain"
	"hosting-billing-engine/internal/domain/model"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func fixedSource(v float64) OutcomeSource {
	return func() float64 { return v }
}

func TestCardGateway_Charge(t *testing.T) {
	ctx := context.Background()

	t.Run("successful charge is immediately completed", func(t *testing.T) {
		g := NewCardGateway(0.90, testLogger(),
			WithCardLatency(time.Millisecond),
			WithCardOutcomeSource(fixedSource(0.10)))

		res, err := g.Charge(ctx, 2999, "USD")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if res.Outcome != model.OutcomeCompleted {
			t.Errorf("outcome = %s, want completed", res.Outcome)
		}
		if !strings.HasPrefix(res.TransactionID, "card_") {
			t.Errorf("transaction ID %q lacks card_ prefix", res.TransactionID)
		}
		if res.AmountCents != 2999 || res.Currency != "USD" {
			t.Errorf("amount/currency echo mismatch: %d %s", res.AmountCents, res.Currency)
		}
	})

	t.Run("declined charge is a hard decline with the card reason", func(t *testing.T) {
		g := NewCardGateway(0.90, testLogger(),
			WithCardLatency(time.Millisecond),
			WithCardOutcomeSource(fixedSource(0.99)))

		_, err := g.Charge(ctx, 2999, "USD")
		if !errors.Is(err, domain.ErrPaymentDeclined) {
			t.Fatalf("expected ErrPaymentDeclined, got: %v", err)
		}
		if !strings.Contains(err.Error(), "insufficient funds") {
			t.Errorf("error %q lacks decline reason", err)
		}
	})

	t.Run("cancelled context aborts the simulated latency", func(t *testing.T) {
		g := NewCardGateway(0.90, testLogger(),
			WithCardLatency(10*time.Second),
			WithCardOutcomeSource(fixedSource(0.10)))

		cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := g.Charge(cctx, 2999, "USD")
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected DeadlineExceeded, got: %v", err)
		}
		if time.Since(start) > time.Second {
			t.Error("charge did not honor the context deadline")
		}
	})
}

func TestCardGateway_Mandates(t *testing.T) {
	ctx := context.Background()
	g := NewCardGateway(0.90, testLogger(), WithCardLatency(time.Millisecond))

	t.Run("mandate is active without customer approval", func(t *testing.T) {
		res, err := g.CreateMandate(ctx, &model.Customer{ID: "c1"}, "Business")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if res.Status != model.MandateStatusActive {
			t.Errorf("status = %s, want active", res.Status)
		}
		if !strings.HasPrefix(res.MandateID, "mnd_card_") {
			t.Errorf("mandate ID %q lacks mnd_card_ prefix", res.MandateID)
		}

		if err := g.CancelMandate(ctx, res.MandateID); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		// Second cancel of the same mandate must fail.
		if err := g.CancelMandate(ctx, res.MandateID); !errors.Is(err, domain.ErrMandateNotFound) {
			t.Fatalf("expected ErrMandateNotFound, got: %v", err)
		}
	})

	t.Run("nil customer is rejected", func(t *testing.T) {
		if _, err := g.CreateMandate(ctx, nil, "Business"); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got: %v", err)
		}
	})
}

func TestCardGateway_QueryStatus(t *testing.T) {
	g := NewCardGateway(0.90, testLogger(), WithCardLatency(time.Millisecond))

	res, err := g.QueryStatus(context.Background(), "card_known")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if res.Outcome != model.OutcomeCompleted {
		t.Errorf("card settlement must be synchronous; outcome = %s", res.Outcome)
	}
}
