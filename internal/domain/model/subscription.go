package model

import (
	"time"

	"hosting-billing-engine/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusTrial     SubscriptionStatus = "trial"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusSuspended SubscriptionStatus = "suspended"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

type PaymentState string

const (
	PaymentStatePaid    PaymentState = "paid"
	PaymentStatePending PaymentState = "pending"
	PaymentStateFailed  PaymentState = "failed"
)

type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

// Next returns t advanced by one billing cycle. Anything other than
// monthly bills yearly.
func (c BillingCycle) Next(t time.Time) time.Time {
	if c == BillingCycleMonthly {
		return t.AddDate(0, 1, 0)
	}
	return t.AddDate(1, 0, 0)
}

// Subscription is the authoritative recurring-billing record for one
// customer/plan pair. The lifecycle manager is its sole writer.
type Subscription struct {
	ID           string // UUID
	CustomerID   string
	PlanID       string
	BillingCycle BillingCycle
	AmountCents  int64  // minor units, to avoid float errors
	Currency     string // ISO code, e.g. "USD"

	Status        SubscriptionStatus
	PaymentStatus PaymentState

	// PaymentMethod is the provider selected at creation time. It is
	// immutable: switching providers requires cancel + recreate, because
	// the gateway-side mandate is bound to it.
	PaymentMethod ProviderID
	MandateID     string

	// LastTransactionID keeps the most recent charge reference so that a
	// pending direct-debit payment can later be reconciled against the
	// gateway.
	LastTransactionID string

	LastPaymentDate *time.Time // nil until the first settled payment
	NextPaymentDate time.Time
	RenewalDate     time.Time

	// PaymentFailureReason is non-nil if and only if PaymentStatus is
	// failed. It holds the gateway's reason verbatim for the operator.
	PaymentFailureReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MarkPaymentFailed records a failed payment outcome, keeping the
// reason/state invariant intact.
func (s *Subscription) MarkPaymentFailed(reason string, at time.Time) {
	s.PaymentStatus = PaymentStateFailed
	s.PaymentFailureReason = &reason
	s.UpdatedAt = at
}

// MarkPaid clears any previous failure and records a settled payment.
func (s *Subscription) MarkPaid(at time.Time) {
	s.PaymentStatus = PaymentStatePaid
	s.PaymentFailureReason = nil
	s.LastPaymentDate = &at
	s.UpdatedAt = at
}

// MarkPending records an accepted-but-unsettled payment (direct debit).
func (s *Subscription) MarkPending(at time.Time) {
	s.PaymentStatus = PaymentStatePending
	s.PaymentFailureReason = nil
	s.UpdatedAt = at
}

// Activate transitions the record to active. A record cannot be activated
// while its payment state is a known failure.
func (s *Subscription) Activate(at time.Time) error {
	if s.PaymentStatus == PaymentStateFailed {
		return domain.ErrInvalidStatusChange
	}
	s.Status = SubscriptionStatusActive
	s.UpdatedAt = at
	return nil
}

// Validate checks the record's internal invariants. It is used by tests and
// by the repository before persisting.
func (s *Subscription) Validate() error {
	if s.ID == "" || s.CustomerID == "" || s.PlanID == "" {
		return domain.ErrInvalidArgument
	}
	if (s.PaymentFailureReason != nil) != (s.PaymentStatus == PaymentStateFailed) {
		return domain.ErrInvalidArgument
	}
	return nil
}
