package repository

import (
	"context"
	"time"

	"hosting-billing-engine/internal/domain/model"
)

// SubscriptionRepository is the storage port for subscription records.
// The lifecycle manager is the sole writer.
type SubscriptionRepository interface {
	List(ctx context.Context, tx Tx) ([]*model.Subscription, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.Subscription, error)
	Save(ctx context.Context, tx Tx, sub *model.Subscription) error
	Delete(ctx context.Context, tx Tx, id string) error

	// FindDue returns active subscriptions whose next payment date is at or
	// before `due`, for the renewal worker.
	FindDue(ctx context.Context, tx Tx, due time.Time, limit int) ([]*model.Subscription, error)

	// FindPendingOlderThan returns subscriptions stuck in a pending payment
	// state since before `cutoff`, for the settlement reconciler.
	FindPendingOlderThan(ctx context.Context, tx Tx, cutoff time.Time, limit int) ([]*model.Subscription, error)

	// CountByStatus feeds the dashboard gauge.
	CountByStatus(ctx context.Context, tx Tx) (map[model.SubscriptionStatus]int, error)
}
