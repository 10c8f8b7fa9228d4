package model

import "time"

// ProviderID identifies one of the two payment backends.
type ProviderID string

const (
	ProviderCard  ProviderID = "card"
	ProviderDebit ProviderID = "debit"
)

// PaymentOutcome is the gateway-reported state of a single charge.
type PaymentOutcome string

const (
	OutcomeCompleted PaymentOutcome = "completed" // terminal success
	OutcomePending   PaymentOutcome = "pending"   // accepted, settlement in flight
	OutcomeFailed    PaymentOutcome = "failed"    // terminal failure
)

// ChargeResult is the transient result of one gateway charge or status
// query. It is owned by the call that produced it, folded into the
// subscription record, and then discarded.
type ChargeResult struct {
	TransactionID string
	Provider      ProviderID
	AmountCents   int64
	Currency      string
	Outcome       PaymentOutcome
	Timestamp     time.Time
}

// MandateStatus is the provider-side state of a recurring-payment mandate.
type MandateStatus string

const (
	MandateStatusActive          MandateStatus = "active"
	MandateStatusPendingApproval MandateStatus = "pending_customer_approval"
	MandateStatusCancelled       MandateStatus = "cancelled"
)

// MandateResult is returned by mandate creation: the provider chosen by the
// router, the mandate reference, its initial status, and the first scheduled
// billing timestamp.
type MandateResult struct {
	MandateID   string
	Provider    ProviderID
	Status      MandateStatus
	NextBilling time.Time
}
