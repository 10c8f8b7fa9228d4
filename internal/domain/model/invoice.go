package model

import "time"

type InvoiceStatus string

const (
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusFailed  InvoiceStatus = "failed"
)

// Invoice is the historical trail written for each renewal charge. It is
// separate from the Subscription (entitlement) and the transient
// ChargeResult (money movement).
type Invoice struct {
	ID             string // UUID
	CustomerID     string
	SubscriptionID string
	AmountCents    int64
	Currency       string
	Status         InvoiceStatus
	TransactionID  string
	IssuedAt       time.Time
	DueAt          time.Time
}
