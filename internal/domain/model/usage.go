package model

import "time"

// UsagePeriodLayout is the month key usage is bucketed by, e.g. "2026-09".
const UsagePeriodLayout = "2006-01"

// UsageRecord is one subscription's metered consumption for one calendar
// month. Records are reported by the hosting side and read back by the
// dashboard next to the plan's quota.
type UsageRecord struct {
	SubscriptionID  string
	Period          string // UsagePeriodLayout
	StorageUsedGB   float64
	BandwidthUsedGB float64
	UpdatedAt       time.Time
}

// UsageReport pairs a month's consumption with the plan quota it counts
// against, for utilization display.
type UsageReport struct {
	UsageRecord
	StorageQuotaGB   int
	BandwidthQuotaGB int
}
