package usecase

import (
	"context"

	"hosting-billing-engine/internal/domain/model"
	"hosting-billing-engine/internal/domain/ports/repository"
)

// Compile-time check
var _ InvoiceUseCase = (*invoiceUC)(nil)

// InvoiceUseCase is read-only for callers: invoices are written exclusively
// by the lifecycle manager as renewals are processed.
type InvoiceUseCase interface {
	List(ctx context.Context, offset, limit int) ([]*model.Invoice, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*model.Invoice, error)
}

type invoiceUC struct {
	invoices repository.InvoiceRepository
}

func NewInvoiceUseCase(invoices repository.InvoiceRepository) *invoiceUC {
	return &invoiceUC{invoices: invoices}
}

func (u *invoiceUC) List(ctx context.Context, offset, limit int) ([]*model.Invoice, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return u.invoices.List(ctx, repository.NoTX, offset, limit)
}

func (u *invoiceUC) ListByCustomer(ctx context.Context, customerID string) ([]*model.Invoice, error) {
	return u.invoices.ListByCustomer(ctx, repository.NoTX, customerID)
}
