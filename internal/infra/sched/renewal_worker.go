package sched

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"hosting-billing-engine/internal/domain/ports/repository"
	"hosting-billing-engine/internal/infra/metrics"
	"hosting-billing-engine/internal/infra/worker"
	"hosting-billing-engine/internal/usecase"
)

// RenewalWorker scans for subscriptions whose next payment date has passed
// and charges each one through the lifecycle manager. The scan runs on a
// cron schedule; individual renewals fan out to the worker pool so a slow
// gateway call never blocks the whole batch.
type RenewalWorker struct {
	subs  repository.SubscriptionRepository
	uc    usecase.SubscriptionLifecycle
	pool  *worker.Pool
	cron  *cron.Cron
	spec  string
	batch int
	log   *zerolog.Logger
}

func NewRenewalWorker(
	spec string,
	batch int,
	subs repository.SubscriptionRepository,
	uc usecase.SubscriptionLifecycle,
	pool *worker.Pool,
	logger *zerolog.Logger,
) *RenewalWorker {
	if spec == "" {
		spec = "@hourly"
	}
	if batch <= 0 {
		batch = 200
	}
	wlog := logger.With().Str("component", "RenewalWorker").Logger()
	return &RenewalWorker{
		subs:  subs,
		uc:    uc,
		pool:  pool,
		cron:  cron.New(),
		spec:  spec,
		batch: batch,
		log:   &wlog,
	}
}

// Start registers the cron entry and begins scheduling. It returns
// immediately; Stop drains the scheduler.
func (w *RenewalWorker) Start(ctx context.Context) error {
	_, err := w.cron.AddFunc(w.spec, func() { w.tick(ctx) })
	if err != nil {
		return err
	}
	w.cron.Start()
	w.log.Info().Str("schedule", w.spec).Msg("renewal worker started")
	return nil
}

func (w *RenewalWorker) Stop() {
	<-w.cron.Stop().Done()
}

func (w *RenewalWorker) tick(ctx context.Context) {
	due, err := w.subs.FindDue(ctx, repository.NoTX, time.Now(), w.batch)
	if err != nil {
		w.log.Error().Err(err).Msg("scan for due subscriptions failed")
		return
	}
	for _, sub := range due {
		id := sub.ID
		task := func(ctx context.Context) error {
			_, rerr := w.uc.ProcessRenewal(ctx, id)
			metrics.IncRenewal(rerr == nil)
			if rerr != nil {
				return rerr
			}
			return nil
		}
		if serr := w.pool.Submit(task); serr != nil {
			w.log.Warn().Str("subscription_id", id).Err(serr).Msg("renewal not scheduled")
		}
	}
	if len(due) > 0 {
		w.log.Info().Int("count", len(due)).Msg("renewals scheduled")
	}

	// Refresh the status gauge on each scan.
	counts, cerr := w.subs.CountByStatus(ctx, repository.NoTX)
	if cerr != nil {
		w.log.Warn().Err(cerr).Msg("status counts unavailable")
		return
	}
	metrics.SetSubscriptionsTotal(counts)
}
