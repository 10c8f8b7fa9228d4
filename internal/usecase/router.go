package usecase

import (
	"strings"

	"hosting-billing-engine/internal/domain/model"
)

// SelectProvider picks the payment backend for a customer. Deterministic and
// side-effect free: direct-debit preference or an EU region routes to the
// debit provider, everything else (including unknown or missing preferences)
// defaults to card. There is no error path.
func SelectProvider(customer *model.Customer) model.ProviderID {
	if customer == nil {
		return model.ProviderCard
	}
	if customer.PaymentMethod == model.PreferenceDirectDebit {
		return model.ProviderDebit
	}
	if strings.EqualFold(customer.Region, "EU") {
		return model.ProviderDebit
	}
	return model.ProviderCard
}
