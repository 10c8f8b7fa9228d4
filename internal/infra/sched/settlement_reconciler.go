package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"hosting-billing-engine/internal/domain"
	"hosting-billing-engine/internal/domain/model"
	"hosting-billing-engine/internal/domain/ports/repository"
	"hosting-billing-engine/internal/infra/metrics"
	"hosting-billing-engine/internal/usecase"
)

// SettlementReconciler periodically scans for subscriptions stuck with a
// pending payment and asks the gateway what actually happened to the
// charge. Direct debit settles asynchronously; without this loop a record
// whose settlement notification was lost stays pending forever.
type SettlementReconciler struct {
	subs       repository.SubscriptionRepository
	uc         usecase.SubscriptionLifecycle
	interval   time.Duration
	staleAfter time.Duration
	batch      int
	log        *zerolog.Logger
}

func NewSettlementReconciler(
	subs repository.SubscriptionRepository,
	uc usecase.SubscriptionLifecycle,
	interval, staleAfter time.Duration,
	logger *zerolog.Logger,
) *SettlementReconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	rlog := logger.With().Str("component", "SettlementReconciler").Logger()
	return &SettlementReconciler{
		subs:       subs,
		uc:         uc,
		interval:   interval,
		staleAfter: staleAfter,
		batch:      200,
		log:        &rlog,
	}
}

func (w *SettlementReconciler) Start(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping settlement reconciler")
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *SettlementReconciler) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	stale, err := w.subs.FindPendingOlderThan(ctx, repository.NoTX, cutoff, w.batch)
	if err != nil {
		w.log.Error().Err(err).Msg("scan for stale pending payments failed")
		return
	}
	for _, sub := range stale {
		if sub.LastTransactionID == "" {
			continue
		}
		after, rerr := w.uc.ReconcilePending(ctx, sub.ID)
		if rerr != nil {
			// Transient gateway trouble resolves itself on a later pass;
			// anything else deserves attention.
			if domain.IsTransient(rerr) {
				w.log.Debug().Str("subscription_id", sub.ID).Err(rerr).Msg("reconcile deferred")
			} else {
				w.log.Warn().Str("subscription_id", sub.ID).Err(rerr).Msg("reconcile failed")
			}
			continue
		}
		metrics.IncReconciled(string(after.PaymentStatus))
		if after.PaymentStatus != model.PaymentStatePending {
			w.log.Info().
				Str("subscription_id", sub.ID).
				Str("payment_status", string(after.PaymentStatus)).
				Msg("pending settlement resolved")
		}
	}
}
