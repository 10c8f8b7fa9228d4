package model

import "time"

// PaymentMethodPreference is the customer's stated charging preference,
// used only by the gateway router.
type PaymentMethodPreference string

const (
	PreferenceCard        PaymentMethodPreference = "card"
	PreferenceDirectDebit PaymentMethodPreference = "direct_debit"
)

// Customer is an external read-only lookup entity. The billing core only
// reads the payment preference and region off it.
type Customer struct {
	ID            string
	Name          string
	Email         string
	Company       string
	Region        string // ISO-ish region tag, e.g. "EU", "US"
	PaymentMethod PaymentMethodPreference
	Status        string
	CreatedAt     time.Time
}
