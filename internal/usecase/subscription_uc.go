package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"hosting-billing-engine/internal/domain"
	"hosting-billing-engine/internal/domain/model"
	"hosting-billing-engine/internal/domain/ports/adapter"
	"hosting-billing-engine/internal/domain/ports/repository"
	"hosting-billing-engine/internal/infra/logging"
)

// Compile-time check
var _ SubscriptionLifecycle = (*subscriptionUC)(nil)

// CreateSubscriptionInput is the caller-supplied part of a new record.
type CreateSubscriptionInput struct {
	CustomerID   string
	PlanID       string
	BillingCycle model.BillingCycle
}

// UpdateSubscriptionInput carries optional partial updates; nil fields are
// left untouched. PaymentMethod is deliberately absent: the provider is
// immutable once a mandate exists.
type UpdateSubscriptionInput struct {
	PlanID          *string
	BillingCycle    *model.BillingCycle
	AmountCents     *int64
	Status          *model.SubscriptionStatus
	NextPaymentDate *time.Time
	RenewalDate     *time.Time
	PaymentMethod   *model.ProviderID // rejected if it differs from the record
}

// SubscriptionLifecycle owns the authoritative subscription record and
// drives its state transitions from orchestrator outcomes.
type SubscriptionLifecycle interface {
	Create(ctx context.Context, in CreateSubscriptionInput) (*model.Subscription, error)
	Update(ctx context.Context, id string, in UpdateSubscriptionInput) (*model.Subscription, error)
	Suspend(ctx context.Context, id string) (*model.Subscription, error)
	Reactivate(ctx context.Context, id string) (*model.Subscription, error)
	RetryPayment(ctx context.Context, id string) (*model.Subscription, error)
	ProcessRenewal(ctx context.Context, id string) (*model.Subscription, error)
	ReconcilePending(ctx context.Context, id string) (*model.Subscription, error)
	Delete(ctx context.Context, id string) (*model.Subscription, error)
	GetByID(ctx context.Context, id string) (*model.Subscription, error)
	GetAll(ctx context.Context) ([]*model.Subscription, error)
}

type subscriptionUC struct {
	subs      repository.SubscriptionRepository
	customers repository.CustomerRepository
	plans     repository.PlanRepository
	invoices  repository.InvoiceRepository
	orch      PaymentOrchestrator
	tm        repository.TransactionManager // optional; nil means single-statement writes
	locker    adapter.Locker                // optional per-record lock; nil in single-writer tests
	lockTTL   time.Duration
	log       *zerolog.Logger
}

func NewSubscriptionLifecycle(
	subs repository.SubscriptionRepository,
	customers repository.CustomerRepository,
	plans repository.PlanRepository,
	invoices repository.InvoiceRepository,
	orch PaymentOrchestrator,
	tm repository.TransactionManager,
	locker adapter.Locker,
	logger *zerolog.Logger,
) *subscriptionUC {
	return &subscriptionUC{
		subs:      subs,
		customers: customers,
		plans:     plans,
		invoices:  invoices,
		orch:      orch,
		tm:        tm,
		locker:    locker,
		lockTTL:   30 * time.Second,
		log:       logger,
	}
}

// withRecordLock serializes mutations of one subscription record. Two
// concurrent retries interleaving their read-modify-write cycles would
// corrupt the (status, paymentStatus, reason) triple.
func (uc *subscriptionUC) withRecordLock(ctx context.Context, id string, fn func(ctx context.Context) error) error {
	ctx = logging.WithSubscriptionID(ctx, id)
	if uc.locker == nil {
		return fn(ctx)
	}
	key := "billing:sub-lock:" + id
	token, err := uc.locker.TryLock(ctx, key, uc.lockTTL)
	if err != nil {
		return err
	}
	defer func() {
		if uerr := uc.locker.Unlock(ctx, key, token); uerr != nil {
			uc.log.Warn().Str("subscription_id", id).Err(uerr).Msg("unlock failed")
		}
	}()
	return fn(ctx)
}

func (uc *subscriptionUC) Create(ctx context.Context, in CreateSubscriptionInput) (*model.Subscription, error) {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.Create")()
	if in.CustomerID == "" || in.PlanID == "" {
		return nil, domain.ErrInvalidArgument
	}
	ctx = logging.WithCustomerID(ctx, in.CustomerID)
	customer, err := uc.customers.FindByID(ctx, repository.NoTX, in.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("lookup customer %s: %w", in.CustomerID, err)
	}
	plan, err := uc.plans.FindByID(ctx, repository.NoTX, in.PlanID)
	if err != nil {
		return nil, fmt.Errorf("lookup plan %s: %w", in.PlanID, err)
	}
	cycle := in.BillingCycle
	if cycle == "" {
		cycle = plan.Cycle
	}
	if cycle != model.BillingCycleMonthly && cycle != model.BillingCycleYearly {
		return nil, fmt.Errorf("%w: billing cycle %q", domain.ErrInvalidArgument, cycle)
	}

	mandate, err := uc.orch.CreateSubscriptionMandate(ctx, cycle, customer, plan.Name)
	if err != nil {
		return nil, fmt.Errorf("create subscription mandate: %w", err)
	}

	now := time.Now()
	currency := plan.Currency
	if currency == "" {
		currency = "USD"
	}
	sub := &model.Subscription{
		ID:              uuid.NewString(),
		CustomerID:      customer.ID,
		PlanID:          plan.ID,
		BillingCycle:    cycle,
		AmountCents:     plan.PriceCents,
		Currency:        currency,
		Status:          model.SubscriptionStatusActive,
		PaymentMethod:   mandate.Provider,
		MandateID:       mandate.MandateID,
		NextPaymentDate: mandate.NextBilling,
		RenewalDate:     mandate.NextBilling,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	switch mandate.Status {
	case model.MandateStatusActive:
		// Card mandates settle immediately.
		sub.MarkPaid(now)
	default:
		// Direct-debit approval is asynchronous; the record is active with
		// payment pending until the mandate settles.
		sub.MarkPending(now)
	}

	if err := uc.subs.Save(ctx, repository.NoTX, sub); err != nil {
		return nil, err
	}
	logging.With(ctx, uc.log).Info().
		Str("subscription_id", sub.ID).
		Str("provider", string(sub.PaymentMethod)).
		Str("mandate_status", string(mandate.Status)).
		Msg("subscription created")
	return sub, nil
}

func (uc *subscriptionUC) Update(ctx context.Context, id string, in UpdateSubscriptionInput) (*model.Subscription, error) {
	var out *model.Subscription
	err := uc.withRecordLock(ctx, id, func(ctx context.Context) error {
		sub, err := uc.subs.FindByID(ctx, repository.NoTX, id)
		if err != nil {
			return err
		}
		if in.PaymentMethod != nil && *in.PaymentMethod != sub.PaymentMethod {
			return domain.ErrPaymentMethodImmutable
		}
		if in.PlanID != nil {
			if _, err := uc.plans.FindByID(ctx, repository.NoTX, *in.PlanID); err != nil {
				return fmt.Errorf("lookup plan %s: %w", *in.PlanID, err)
			}
			sub.PlanID = *in.PlanID
		}
		if in.BillingCycle != nil {
			sub.BillingCycle = *in.BillingCycle
		}
		if in.AmountCents != nil {
			sub.AmountCents = *in.AmountCents
		}
		if in.NextPaymentDate != nil {
			sub.NextPaymentDate = *in.NextPaymentDate
		}
		if in.RenewalDate != nil {
			sub.RenewalDate = *in.RenewalDate
		}
		if in.Status != nil {
			if err := uc.applyStatus(sub, *in.Status); err != nil {
				return err
			}
		}
		sub.UpdatedAt = time.Now()
		if err := uc.subs.Save(ctx, repository.NoTX, sub); err != nil {
			return err
		}
		out = sub
		return nil
	})
	return out, err
}

// applyStatus validates a manual status edit from the dashboard.
func (uc *subscriptionUC) applyStatus(sub *model.Subscription, status model.SubscriptionStatus) error {
	switch status {
	case model.SubscriptionStatusActive:
		return sub.Activate(time.Now())
	case model.SubscriptionStatusTrial, model.SubscriptionStatusSuspended, model.SubscriptionStatusCancelled:
		sub.Status = status
		return nil
	default:
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatusChange, status)
	}
}

// Suspend is a manual operator action, e.g. for abuse or manual dunning.
// It never touches the gateway, so manual overrides carry no network
// failure modes.
func (uc *subscriptionUC) Suspend(ctx context.Context, id string) (*model.Subscription, error) {
	var out *model.Subscription
	err := uc.withRecordLock(ctx, id, func(ctx context.Context) error {
		sub, err := uc.subs.FindByID(ctx, repository.NoTX, id)
		if err != nil {
			return err
		}
		if sub.Status != model.SubscriptionStatusActive {
			return fmt.Errorf("%w: suspend requires an active subscription", domain.ErrInvalidStatusChange)
		}
		sub.Status = model.SubscriptionStatusSuspended
		sub.UpdatedAt = time.Now()
		if err := uc.subs.Save(ctx, repository.NoTX, sub); err != nil {
			return err
		}
		out = sub
		return nil
	})
	return out, err
}

// Reactivate undoes a manual suspension. Like Suspend it is purely local.
func (uc *subscriptionUC) Reactivate(ctx context.Context, id string) (*model.Subscription, error) {
	var out *model.Subscription
	err := uc.withRecordLock(ctx, id, func(ctx context.Context) error {
		sub, err := uc.subs.FindByID(ctx, repository.NoTX, id)
		if err != nil {
			return err
		}
		if sub.Status != model.SubscriptionStatusSuspended {
			return fmt.Errorf("%w: reactivate requires a suspended subscription", domain.ErrInvalidStatusChange)
		}
		if err := sub.Activate(time.Now()); err != nil {
			return err
		}
		if err := uc.subs.Save(ctx, repository.NoTX, sub); err != nil {
			return err
		}
		out = sub
		return nil
	})
	return out, err
}

// RetryPayment re-charges the subscription once, at operator request.
// Failure state is persisted BEFORE the error is returned, so the record is
// never stale relative to the error the caller sees. The status field is
// left untouched on failure: which action to take next (suspend, another
// retry) stays an operator decision.
func (uc *subscriptionUC) RetryPayment(ctx context.Context, id string) (*model.Subscription, error) {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.RetryPayment")()
	var out *model.Subscription
	err := uc.withRecordLock(ctx, id, func(ctx context.Context) error {
		sub, err := uc.subs.FindByID(ctx, repository.NoTX, id)
		if err != nil {
			return err
		}
		customer, err := uc.customers.FindByID(ctx, repository.NoTX, sub.CustomerID)
		if err != nil {
			return fmt.Errorf("lookup customer %s: %w", sub.CustomerID, err)
		}

		res, payErr := uc.orch.RetryPayment(ctx, sub.ID, sub.AmountCents, sub.Currency, customer)
		now := time.Now()
		if payErr != nil {
			sub.MarkPaymentFailed(payErr.Error(), now)
			if err := uc.subs.Save(ctx, repository.NoTX, sub); err != nil {
				return err
			}
			return payErr
		}

		sub.LastTransactionID = res.TransactionID
		switch res.Outcome {
		case model.OutcomeCompleted:
			sub.MarkPaid(now)
			if err := sub.Activate(now); err != nil {
				return err
			}
		case model.OutcomePending:
			sub.MarkPending(now)
		}
		if err := uc.subs.Save(ctx, repository.NoTX, sub); err != nil {
			return err
		}
		out = sub
		return nil
	})
	return out, err
}

// ProcessRenewal charges the full cycle amount for a scheduled renewal.
// A renewal failure is more severe than a manual retry failure: a failed
// scheduled charge indicates a standing payment problem, so the record is
// demoted to suspended before the error propagates.
func (uc *subscriptionUC) ProcessRenewal(ctx context.Context, id string) (*model.Subscription, error) {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.ProcessRenewal")()
	var out *model.Subscription
	err := uc.withRecordLock(ctx, id, func(ctx context.Context) error {
		sub, err := uc.subs.FindByID(ctx, repository.NoTX, id)
		if err != nil {
			return err
		}
		customer, err := uc.customers.FindByID(ctx, repository.NoTX, sub.CustomerID)
		if err != nil {
			return fmt.Errorf("lookup customer %s: %w", sub.CustomerID, err)
		}

		res, payErr := uc.orch.ProcessPayment(ctx, sub.ID, sub.AmountCents, sub.Currency, customer)
		now := time.Now()
		if payErr != nil {
			sub.Status = model.SubscriptionStatusSuspended
			sub.MarkPaymentFailed(payErr.Error(), now)
			if err := uc.persistRenewal(ctx, sub, uc.invoiceFor(sub, "", model.InvoiceStatusFailed, now)); err != nil {
				return err
			}
			return payErr
		}

		sub.LastTransactionID = res.TransactionID
		sub.RenewalDate = sub.BillingCycle.Next(sub.RenewalDate)
		sub.NextPaymentDate = sub.BillingCycle.Next(sub.NextPaymentDate)

		invStatus := model.InvoiceStatusPaid
		switch res.Outcome {
		case model.OutcomeCompleted:
			sub.MarkPaid(now)
		case model.OutcomePending:
			sub.MarkPending(now)
			invStatus = model.InvoiceStatusPending
		}
		if err := sub.Activate(now); err != nil {
			return err
		}
		if err := uc.persistRenewal(ctx, sub, uc.invoiceFor(sub, res.TransactionID, invStatus, now)); err != nil {
			return err
		}
		out = sub
		return nil
	})
	return out, err
}

func (uc *subscriptionUC) invoiceFor(sub *model.Subscription, txID string, status model.InvoiceStatus, now time.Time) *model.Invoice {
	due := now
	if status != model.InvoiceStatusPaid {
		due = now.AddDate(0, 0, 14)
	}
	return &model.Invoice{
		ID:             uuid.NewString(),
		CustomerID:     sub.CustomerID,
		SubscriptionID: sub.ID,
		AmountCents:    sub.AmountCents,
		Currency:       sub.Currency,
		Status:         status,
		TransactionID:  txID,
		IssuedAt:       now,
		DueAt:          due,
	}
}

// persistRenewal writes the subscription and its invoice together, in one
// transaction when a TransactionManager is available.
func (uc *subscriptionUC) persistRenewal(ctx context.Context, sub *model.Subscription, inv *model.Invoice) error {
	if uc.tm == nil {
		if err := uc.subs.Save(ctx, repository.NoTX, sub); err != nil {
			return err
		}
		return uc.invoices.Save(ctx, repository.NoTX, inv)
	}
	return uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.subs.Save(ctx, tx, sub); err != nil {
			return err
		}
		return uc.invoices.Save(ctx, tx, inv)
	})
}

// ReconcilePending polls the provider for a pending payment's settlement
// outcome and folds it into the record. The original dashboard left pending
// direct-debit payments as a dead end; this is the reconciliation path that
// closes it.
func (uc *subscriptionUC) ReconcilePending(ctx context.Context, id string) (*model.Subscription, error) {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.ReconcilePending")()
	var out *model.Subscription
	err := uc.withRecordLock(ctx, id, func(ctx context.Context) error {
		sub, err := uc.subs.FindByID(ctx, repository.NoTX, id)
		if err != nil {
			return err
		}
		if sub.PaymentStatus != model.PaymentStatePending || sub.LastTransactionID == "" {
			out = sub
			return nil
		}

		res, err := uc.orch.QueryStatus(ctx, sub.PaymentMethod, sub.LastTransactionID)
		if err != nil {
			// No outcome; the next reconciler pass will ask again.
			return err
		}

		now := time.Now()
		switch res.Outcome {
		case model.OutcomeCompleted:
			sub.MarkPaid(now)
			if sub.Status != model.SubscriptionStatusCancelled {
				if err := sub.Activate(now); err != nil {
					return err
				}
			}
		case model.OutcomeFailed:
			// A settlement failure means a scheduled charge bounced after
			// acceptance; treat it with renewal-failure severity.
			sub.Status = model.SubscriptionStatusSuspended
			sub.MarkPaymentFailed("direct debit settlement failed", now)
		default:
			out = sub
			return nil // still pending
		}
		if err := uc.subs.Save(ctx, repository.NoTX, sub); err != nil {
			return err
		}
		logging.With(ctx, uc.log).Info().
			Str("transaction_id", sub.LastTransactionID).
			Str("outcome", string(res.Outcome)).
			Msg("pending payment reconciled")
		out = sub
		return nil
	})
	return out, err
}

// Delete cancels the gateway mandate best-effort and removes the record.
// Gateway-side failures are swallowed: the record must always be removable.
func (uc *subscriptionUC) Delete(ctx context.Context, id string) (*model.Subscription, error) {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.Delete")()
	var out *model.Subscription
	err := uc.withRecordLock(ctx, id, func(ctx context.Context) error {
		sub, err := uc.subs.FindByID(ctx, repository.NoTX, id)
		if err != nil {
			return err
		}
		uc.orch.CancelSubscription(ctx, sub.ID, sub.MandateID, sub.PaymentMethod)
		if err := uc.subs.Delete(ctx, repository.NoTX, id); err != nil {
			return err
		}
		logging.With(ctx, uc.log).Info().Msg("subscription deleted")
		out = sub
		return nil
	})
	return out, err
}

func (uc *subscriptionUC) GetByID(ctx context.Context, id string) (*model.Subscription, error) {
	return uc.subs.FindByID(ctx, repository.NoTX, id)
}

func (uc *subscriptionUC) GetAll(ctx context.Context) ([]*model.Subscription, error) {
	return uc.subs.List(ctx, repository.NoTX)
}
