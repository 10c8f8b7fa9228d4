package adapter

import (
	"context"

	"hosting-billing-engine/internal/domain/model"
)

// PaymentGateway is the hex port for payment providers. The two simulated
// backends (card, direct debit) implement it with their own latency and
// settlement semantics; the orchestrator never branches on which one it
// holds beyond the router's selection.
type PaymentGateway interface {
	Name() model.ProviderID

	// Charge initiates a single payment. A nil error with OutcomePending
	// means the provider accepted the charge but settlement is
	// asynchronous; finality is only known via a later QueryStatus call.
	Charge(ctx context.Context, amountCents int64, currency string) (model.ChargeResult, error)

	// CreateMandate registers a recurring-payment mandate for the customer.
	CreateMandate(ctx context.Context, customer *model.Customer, planName string) (model.MandateResult, error)

	// CancelMandate revokes a mandate. Unknown mandate ids fail with
	// domain.ErrMandateNotFound.
	CancelMandate(ctx context.Context, mandateID string) error

	// QueryStatus returns the provider's current view of a transaction.
	QueryStatus(ctx context.Context, transactionID string) (model.ChargeResult, error)
}
