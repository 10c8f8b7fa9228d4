package model

// HostingPlan is an external read-only lookup entity: the billing core only
// reads price and name off it.
type HostingPlan struct {
	ID          string
	Name        string
	PriceCents  int64
	Currency    string
	Cycle       BillingCycle
	StorageGB   int
	BandwidthGB int
	Active      bool
}
