package repository

import (
	"context"

	"hosting-billing-engine/internal/domain/model"
)

// UsageRepository stores monthly consumption records, keyed by
// (subscription id, period).
type UsageRepository interface {
	// Save upserts the record for its (subscription, period) key.
	Save(ctx context.Context, tx Tx, rec *model.UsageRecord) error
	FindByPeriod(ctx context.Context, tx Tx, subscriptionID, period string) (*model.UsageRecord, error)
	ListBySubscription(ctx context.Context, tx Tx, subscriptionID string) ([]*model.UsageRecord, error)
	List(ctx context.Context, tx Tx) ([]*model.UsageRecord, error)
}
