package repository

import (
	"context"

	"hosting-billing-engine/internal/domain/model"
)

// CustomerRepository is a plain lookup collection; the billing core only
// reads from it.
type CustomerRepository interface {
	List(ctx context.Context, tx Tx) ([]*model.Customer, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.Customer, error)
	Save(ctx context.Context, tx Tx, c *model.Customer) error
	Delete(ctx context.Context, tx Tx, id string) error
	Count(ctx context.Context, tx Tx) (int, error)
}
