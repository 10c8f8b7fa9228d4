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

// Ensure DebitGateway implements the port
var _ adapter.PaymentGateway = (*DebitGateway)(nil)

// DebitGateway simulates a direct-debit backend: slower and with a higher
// acceptance rate than card, but acceptance is NOT finality — a charge
// comes back pending and settles (or bounces) asynchronously, observable
// only through QueryStatus.
type DebitGateway struct {
	successRate float64
	latency     time.Duration
	source      OutcomeSource
	log         *zerolog.Logger

	mu       sync.Mutex
	mandates map[string]struct{}
}

type DebitOption func(*DebitGateway)

func WithDebitOutcomeSource(src OutcomeSource) DebitOption {
	return func(g *DebitGateway) { g.source = src }
}

func WithDebitLatency(d time.Duration) DebitOption {
	return func(g *DebitGateway) { g.latency = d }
}

func NewDebitGateway(successRate float64, logger *zerolog.Logger, opts ...DebitOption) *DebitGateway {
	if successRate <= 0 || successRate > 1 {
		successRate = 0.95
	}
	g := &DebitGateway{
		successRate: successRate,
		latency:     time.Second,
		source:      defaultSource,
		log:         logger,
		mandates:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *DebitGateway) Name() model.ProviderID { return model.ProviderDebit }

func (g *DebitGateway) Charge(ctx context.Context, amountCents int64, currency string) (model.ChargeResult, error) {
	start := time.Now()
	if err := wait(ctx, g.latency); err != nil {
		metrics.ObserveGatewayCall(string(model.ProviderDebit), "charge", time.Since(start), false)
		return model.ChargeResult{}, err
	}

	if g.source() >= g.successRate {
		metrics.ObserveGatewayCall(string(model.ProviderDebit), "charge", time.Since(start), false)
		metrics.IncPayment(string(model.ProviderDebit), string(model.OutcomeFailed))
		return model.ChargeResult{}, fmt.Errorf("%w: mandate rejected by bank", domain.ErrInvalidMandate)
	}

	res := model.ChargeResult{
		TransactionID: newTransactionID("dd_"),
		Provider:      model.ProviderDebit,
		AmountCents:   amountCents,
		Currency:      currency,
		// Acceptance only; settlement happens days later on the bank side.
		Outcome:   model.OutcomePending,
		Timestamp: time.Now(),
	}
	metrics.ObserveGatewayCall(string(model.ProviderDebit), "charge", time.Since(start), true)
	metrics.IncPayment(string(model.ProviderDebit), string(res.Outcome))
	g.log.Debug().Str("transaction_id", res.TransactionID).Int64("amount_cents", amountCents).Msg("debit charge accepted")
	return res, nil
}

func (g *DebitGateway) CreateMandate(ctx context.Context, customer *model.Customer, planName string) (model.MandateResult, error) {
	if customer == nil {
		return model.MandateResult{}, domain.ErrInvalidArgument
	}
	if err := wait(ctx, g.latency*4/5); err != nil {
		return model.MandateResult{}, err
	}

	id := "mnd_dd_" + uuid.NewString()
	g.mu.Lock()
	g.mandates[id] = struct{}{}
	g.mu.Unlock()

	return model.MandateResult{
		MandateID: id,
		Provider:  model.ProviderDebit,
		Status:    model.MandateStatusPendingApproval,
	}, nil
}

func (g *DebitGateway) CancelMandate(ctx context.Context, mandateID string) error {
	if err := wait(ctx, g.latency/2); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.mandates[mandateID]; !ok {
		metrics.IncGatewayCancelFailure(string(model.ProviderDebit))
		return fmt.Errorf("%w: %s", domain.ErrMandateNotFound, mandateID)
	}
	delete(g.mandates, mandateID)
	return nil
}

// QueryStatus simulates the bank's settlement progress for an accepted
// charge: most have settled by the time anyone asks, some are still in
// flight, a few bounce.
func (g *DebitGateway) QueryStatus(ctx context.Context, transactionID string) (model.ChargeResult, error) {
	if err := wait(ctx, g.latency/5); err != nil {
		return model.ChargeResult{}, err
	}
	res := model.ChargeResult{
		TransactionID: transactionID,
		Provider:      model.ProviderDebit,
		Timestamp:     time.Now(),
	}
	switch roll := g.source(); {
	case roll < 0.70:
		res.Outcome = model.OutcomeCompleted
	case roll < 0.90:
		res.Outcome = model.OutcomePending
	default:
		res.Outcome = model.OutcomeFailed
	}
	return res, nil
}
