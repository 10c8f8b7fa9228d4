package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"hosting-billing-engine/internal/domain"
	"hosting-billing-engine/internal/domain/model"
	"hosting-billing-engine/internal/domain/ports/adapter"
)

// Compile-time check
var _ PaymentOrchestrator = (*paymentUC)(nil)

// PaymentOrchestrator unifies the two gateway adapters behind one interface.
// It applies the router per operation and owns the per-call timeout; it never
// retries on its own — retry policy belongs to the caller.
type PaymentOrchestrator interface {
	// ProcessPayment charges the full amount via the customer's routed
	// provider and returns the gateway outcome or the gateway's failure.
	ProcessPayment(ctx context.Context, subscriptionID string, amountCents int64, currency string, customer *model.Customer) (model.ChargeResult, error)

	// CreateSubscriptionMandate routes and creates a recurring mandate,
	// computing the first billing timestamp from the plan's cycle.
	CreateSubscriptionMandate(ctx context.Context, cycle model.BillingCycle, customer *model.Customer, planName string) (model.MandateResult, error)

	// CancelSubscription is best-effort: gateway failures are logged and
	// swallowed so the local record can always be removed.
	CancelSubscription(ctx context.Context, subscriptionID, mandateID string, provider model.ProviderID)

	// RetryPayment re-invokes ProcessPayment. Back-off between retries is a
	// caller decision.
	RetryPayment(ctx context.Context, subscriptionID string, amountCents int64, currency string, customer *model.Customer) (model.ChargeResult, error)

	// QueryStatus asks the provider for its current view of a transaction;
	// used to reconcile pending direct-debit payments.
	QueryStatus(ctx context.Context, provider model.ProviderID, transactionID string) (model.ChargeResult, error)
}

type paymentUC struct {
	gateways    map[model.ProviderID]adapter.PaymentGateway
	callTimeout time.Duration
	log         *zerolog.Logger
}

func NewPaymentOrchestrator(gateways map[model.ProviderID]adapter.PaymentGateway, callTimeout time.Duration, logger *zerolog.Logger) *paymentUC {
	if callTimeout <= 0 {
		callTimeout = 15 * time.Second
	}
	return &paymentUC{gateways: gateways, callTimeout: callTimeout, log: logger}
}

func (u *paymentUC) gateway(id model.ProviderID) (adapter.PaymentGateway, error) {
	gw, ok := u.gateways[id]
	if !ok {
		return nil, fmt.Errorf("%w: no gateway registered for provider %q", domain.ErrInvalidArgument, id)
	}
	return gw, nil
}

func (u *paymentUC) ProcessPayment(ctx context.Context, subscriptionID string, amountCents int64, currency string, customer *model.Customer) (model.ChargeResult, error) {
	provider := SelectProvider(customer)
	gw, err := u.gateway(provider)
	if err != nil {
		return model.ChargeResult{}, err
	}

	cctx, cancel := context.WithTimeout(ctx, u.callTimeout)
	defer cancel()

	res, err := gw.Charge(cctx, amountCents, currency)
	if err != nil {
		if cctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("%w: charge for subscription %s", domain.ErrGatewayTimeout, subscriptionID)
		}
		u.log.Warn().
			Str("subscription_id", subscriptionID).
			Str("provider", string(provider)).
			Err(err).
			Msg("payment failed")
		return model.ChargeResult{}, err
	}

	u.log.Info().
		Str("subscription_id", subscriptionID).
		Str("provider", string(provider)).
		Str("transaction_id", res.TransactionID).
		Str("outcome", string(res.Outcome)).
		Msg("payment processed")
	return res, nil
}

func (u *paymentUC) CreateSubscriptionMandate(ctx context.Context, cycle model.BillingCycle, customer *model.Customer, planName string) (model.MandateResult, error) {
	provider := SelectProvider(customer)
	gw, err := u.gateway(provider)
	if err != nil {
		return model.MandateResult{}, err
	}

	cctx, cancel := context.WithTimeout(ctx, u.callTimeout)
	defer cancel()

	res, err := gw.CreateMandate(cctx, customer, planName)
	if err != nil {
		return model.MandateResult{}, fmt.Errorf("create mandate via %s: %w", provider, err)
	}

	res.NextBilling = cycle.Next(time.Now())
	return res, nil
}

func (u *paymentUC) CancelSubscription(ctx context.Context, subscriptionID, mandateID string, provider model.ProviderID) {
	gw, err := u.gateway(provider)
	if err != nil {
		u.log.Error().Str("subscription_id", subscriptionID).Err(err).Msg("gateway cancel skipped")
		return
	}

	cctx, cancel := context.WithTimeout(ctx, u.callTimeout)
	defer cancel()

	if err := gw.CancelMandate(cctx, mandateID); err != nil {
		// Losing track of a mandate cancellation must never block removing
		// the local record; orphaned records that can never be deleted are
		// worse than an orphaned mandate.
		u.log.Warn().
			Str("subscription_id", subscriptionID).
			Str("mandate_id", mandateID).
			Str("provider", string(provider)).
			Err(err).
			Msg("gateway-side cancellation failed; removing local record anyway")
		return
	}
	u.log.Info().
		Str("subscription_id", subscriptionID).
		Str("mandate_id", mandateID).
		Str("provider", string(provider)).
		Msg("gateway mandate cancelled")
}

func (u *paymentUC) RetryPayment(ctx context.Context, subscriptionID string, amountCents int64, currency string, customer *model.Customer) (model.ChargeResult, error) {
	return u.ProcessPayment(ctx, subscriptionID, amountCents, currency, customer)
}

func (u *paymentUC) QueryStatus(ctx context.Context, provider model.ProviderID, transactionID string) (model.ChargeResult, error) {
	gw, err := u.gateway(provider)
	if err != nil {
		return model.ChargeResult{}, err
	}

	cctx, cancel := context.WithTimeout(ctx, u.callTimeout)
	defer cancel()

	return gw.QueryStatus(cctx, transactionID)
}
