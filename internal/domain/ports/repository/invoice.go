package repository

import (
	"context"

	"hosting-billing-engine/internal/domain/model"
)

// InvoiceRepository stores the historical trail of renewal charges.
type InvoiceRepository interface {
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.Invoice, error)
	ListByCustomer(ctx context.Context, tx Tx, customerID string) ([]*model.Invoice, error)
	Save(ctx context.Context, tx Tx, inv *model.Invoice) error

	// SumByPeriod returns the total of paid invoices issued within the
	// period ("week" | "month" | "year"), for dashboard revenue stats.
	SumByPeriod(ctx context.Context, tx Tx, period string) (int64, error)
}
