//go:build !integration

package usecase_test

import (
	"testing"

	"hosting-billing-engine/internal/domain/model"
	"hosting-billing-engine/internal/usecase"
)

func TestSelectProvider(t *testing.T) {
	cases := []struct {
		name     string
		customer *model.Customer
		want     model.ProviderID
	}{
		{"nil customer defaults to card", nil, model.ProviderCard},
		{"explicit direct debit preference routes to debit",
			&model.Customer{PaymentMethod: model.PreferenceDirectDebit, Region: "US"}, model.ProviderDebit},
		{"EU region routes to debit regardless of preference",
			&model.Customer{PaymentMethod: model.PreferenceCard, Region: "EU"}, model.ProviderDebit},
		{"EU region is matched case-insensitively",
			&model.Customer{PaymentMethod: model.PreferenceCard, Region: "eu"}, model.ProviderDebit},
		{"US card customer routes to card",
			&model.Customer{PaymentMethod: model.PreferenceCard, Region: "US"}, model.ProviderCard},
		{"no preference and no region defaults to card",
			&model.Customer{}, model.ProviderCard},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := usecase.SelectProvider(tc.customer); got != tc.want {
				t.Errorf("SelectProvider() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestSelectProvider_Deterministic(t *testing.T) {
	c := &model.Customer{PaymentMethod: model.PreferenceCard, Region: "EU"}
	first := usecase.SelectProvider(c)
	for i := 0; i < 100; i++ {
		if got := usecase.SelectProvider(c); got != first {
			t.Fatalf("routing changed between identical calls: %s then %s", first, got)
		}
	}
}
