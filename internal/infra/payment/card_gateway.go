package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hosting-billing-engine/internal/domain"
	"hosting-billing-engine/internal/domain/model"
	"hosting-billing-engine/internal/domain/ports/adapter"
	"hosting-billing-engine/internal/infra/metrics"
)

// Ensure CardGateway implements the port
var _ adapter.PaymentGateway = (*CardGateway)(nil)

// CardGateway simulates a card payment backend: a fast channel where a
// successful charge is immediately terminal. Failures are hard declines.
type CardGateway struct {
	successRate float64
	latency     time.Duration
	source      OutcomeSource
	log         *zerolog.Logger

	mu       sync.Mutex
	mandates map[string]struct{}
}

type CardOption func(*CardGateway)

// WithCardOutcomeSource replaces the random outcome source; the test seam.
func WithCardOutcomeSource(src OutcomeSource) CardOption {
	return func(g *CardGateway) { g.source = src }
}

// WithCardLatency overrides the simulated network delay.
func WithCardLatency(d time.Duration) CardOption {
	return func(g *CardGateway) { g.latency = d }
}

func NewCardGateway(successRate float64, logger *zerolog.Logger, opts ...CardOption) *CardGateway {
	if successRate <= 0 || successRate > 1 {
		successRate = 0.90
	}
	g := &CardGateway{
		successRate: successRate,
		latency:     800 * time.Millisecond,
		source:      defaultSource,
		log:         logger,
		mandates:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *CardGateway) Name() model.ProviderID { return model.ProviderCard }

func (g *CardGateway) Charge(ctx context.Context, amountCents int64, currency string) (model.ChargeResult, error) {
	start := time.Now()
	if err := wait(ctx, g.latency); err != nil {
		metrics.ObserveGatewayCall(string(model.ProviderCard), "charge", time.Since(start), false)
		return model.ChargeResult{}, err
	}

	if g.source() >= g.successRate {
		metrics.ObserveGatewayCall(string(model.ProviderCard), "charge", time.Since(start), false)
		metrics.IncPayment(string(model.ProviderCard), string(model.OutcomeFailed))
		return model.ChargeResult{}, fmt.Errorf("%w: insufficient funds", domain.ErrPaymentDeclined)
	}

	res := model.ChargeResult{
		TransactionID: newTransactionID("card_"),
		Provider:      model.ProviderCard,
		AmountCents:   amountCents,
		Currency:      currency,
		Outcome:       model.OutcomeCompleted,
		Timestamp:     time.Now(),
	}
	metrics.ObserveGatewayCall(string(model.ProviderCard), "charge", time.Since(start), true)
	metrics.IncPayment(string(model.ProviderCard), string(res.Outcome))
	metrics.AddPaymentRevenue(currency, amountCents)
	g.log.Debug().Str("transaction_id", res.TransactionID).Int64("amount_cents", amountCents).Msg("card charge completed")
	return res, nil
}

func (g *CardGateway) CreateMandate(ctx context.Context, customer *model.Customer, planName string) (model.MandateResult, error) {
	if customer == nil {
		return model.MandateResult{}, domain.ErrInvalidArgument
	}
	if err := wait(ctx, g.latency*3/4); err != nil {
		return model.MandateResult{}, err
	}

	id := "mnd_card_" + uuid.NewString()
	g.mu.Lock()
	g.mandates[id] = struct{}{}
	g.mu.Unlock()

	// Card mandates need no customer-side approval step.
	return model.MandateResult{
		MandateID: id,
		Provider:  model.ProviderCard,
		Status:    model.MandateStatusActive,
	}, nil
}

func (g *CardGateway) CancelMandate(ctx context.Context, mandateID string) error {
	if err := wait(ctx, g.latency/2); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.mandates[mandateID]; !ok {
		metrics.IncGatewayCancelFailure(string(model.ProviderCard))
		return fmt.Errorf("%w: %s", domain.ErrMandateNotFound, mandateID)
	}
	delete(g.mandates, mandateID)
	return nil
}

func (g *CardGateway) QueryStatus(ctx context.Context, transactionID string) (model.ChargeResult, error) {
	if err := wait(ctx, g.latency/4); err != nil {
		return model.ChargeResult{}, err
	}
	// Card settlement is synchronous: anything that got a transaction id is
	// already final.
	return model.ChargeResult{
		TransactionID: transactionID,
		Provider:      model.ProviderCard,
		Outcome:       model.OutcomeCompleted,
		Timestamp:     time.Now(),
	}, nil
}
