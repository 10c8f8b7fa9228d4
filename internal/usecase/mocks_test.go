//go:build !integration

package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"hosting-billing-engine/internal/domain"
	"hosting-billing-engine/internal/domain/model"
	"hosting-billing-engine/internal/domain/ports/adapter"
	"hosting-billing-engine/internal/domain/ports/repository"
	"hosting-billing-engine/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// =============================
// Repositories
// =============================

// MockSubscriptionRepo is an in-memory SubscriptionRepository with optional
// Func hooks tests can override per case.
type MockSubscriptionRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Subscription

	SaveFunc     func(ctx context.Context, tx repository.Tx, sub *model.Subscription) error
	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error)
	DeleteFunc   func(ctx context.Context, tx repository.Tx, id string) error
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{store: make(map[string]*model.Subscription)}
}

func (m *MockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, sub *model.Subscription) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, sub)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sub
	m.store[sub.ID] = &cp
	return nil
}

func (m *MockSubscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockSubscriptionRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Subscription, 0, len(m.store))
	for _, s := range m.store {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockSubscriptionRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *MockSubscriptionRepo) FindDue(ctx context.Context, tx repository.Tx, due time.Time, limit int) ([]*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Subscription
	for _, s := range m.store {
		if s.Status == model.SubscriptionStatusActive && !s.NextPaymentDate.After(due) {
			cp := *s
			out = append(out, &cp)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MockSubscriptionRepo) FindPendingOlderThan(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Subscription
	for _, s := range m.store {
		if s.PaymentStatus == model.PaymentStatePending && s.LastTransactionID != "" && !s.UpdatedAt.After(cutoff) {
			cp := *s
			out = append(out, &cp)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MockSubscriptionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.SubscriptionStatus]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[model.SubscriptionStatus]int)
	for _, s := range m.store {
		counts[s.Status]++
	}
	return counts, nil
}

// ---- customers ----

type MockCustomerRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Customer
}

var _ repository.CustomerRepository = (*MockCustomerRepo)(nil)

func NewMockCustomerRepo() *MockCustomerRepo {
	return &MockCustomerRepo{store: make(map[string]*model.Customer)}
}

func (m *MockCustomerRepo) Save(ctx context.Context, tx repository.Tx, c *model.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *MockCustomerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockCustomerRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Customer, 0, len(m.store))
	for _, c := range m.store {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockCustomerRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *MockCustomerRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

// ---- plans ----

type MockPlanRepo struct {
	mu    sync.RWMutex
	store map[string]*model.HostingPlan
}

var _ repository.PlanRepository = (*MockPlanRepo)(nil)

func NewMockPlanRepo() *MockPlanRepo {
	return &MockPlanRepo{store: make(map[string]*model.HostingPlan)}
}

func (m *MockPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.HostingPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.HostingPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPlanRepo) List(ctx context.Context, tx repository.Tx) ([]*model.HostingPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.HostingPlan, 0, len(m.store))
	for _, p := range m.store {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockPlanRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

// ---- invoices ----

type MockInvoiceRepo struct {
	mu    sync.RWMutex
	store []*model.Invoice

	SaveFunc func(ctx context.Context, tx repository.Tx, inv *model.Invoice) error
}

var _ repository.InvoiceRepository = (*MockInvoiceRepo)(nil)

func NewMockInvoiceRepo() *MockInvoiceRepo { return &MockInvoiceRepo{} }

func (m *MockInvoiceRepo) Save(ctx context.Context, tx repository.Tx, inv *model.Invoice) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, inv)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *inv
	m.store = append(m.store, &cp)
	return nil
}

func (m *MockInvoiceRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if offset >= len(m.store) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(m.store) {
		end = len(m.store)
	}
	out := make([]*model.Invoice, 0, end-offset)
	for _, inv := range m.store[offset:end] {
		cp := *inv
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockInvoiceRepo) ListByCustomer(ctx context.Context, tx repository.Tx, customerID string) ([]*model.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Invoice
	for _, inv := range m.store {
		if inv.CustomerID == customerID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockInvoiceRepo) SumByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total int64
	for _, inv := range m.store {
		if inv.Status == model.InvoiceStatusPaid {
			total += inv.AmountCents
		}
	}
	return total, nil
}

// =============================
// Transaction manager / locker
// =============================

type MockTxManager struct{}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

func (m *MockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, struct{}{})
}

// MockLocker records lock traffic so tests can assert the critical section
// was actually guarded.
type MockLocker struct {
	mu       sync.Mutex
	Acquired []string
	Released []string

	TryLockFunc func(ctx context.Context, key string, ttl time.Duration) (string, error)
}

var _ adapter.Locker = (*MockLocker)(nil)

func (m *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if m.TryLockFunc != nil {
		return m.TryLockFunc(ctx, key, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Acquired = append(m.Acquired, key)
	return "tok", nil
}

func (m *MockLocker) Unlock(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Released = append(m.Released, key)
	return nil
}

// =============================
// Orchestrator / gateways
// =============================

// MockOrchestrator implements usecase.PaymentOrchestrator with Func hooks.
type MockOrchestrator struct {
	mu    sync.Mutex
	Calls struct {
		Process  int
		Mandates int
		Cancels  []string
		Retries  int
		Statuses []string
	}

	ProcessPaymentFunc func(ctx context.Context, subscriptionID string, amountCents int64, currency string, customer *model.Customer) (model.ChargeResult, error)
	CreateMandateFunc  func(ctx context.Context, cycle model.BillingCycle, customer *model.Customer, planName string) (model.MandateResult, error)
	RetryPaymentFunc   func(ctx context.Context, subscriptionID string, amountCents int64, currency string, customer *model.Customer) (model.ChargeResult, error)
	QueryStatusFunc    func(ctx context.Context, provider model.ProviderID, transactionID string) (model.ChargeResult, error)
}

var _ usecase.PaymentOrchestrator = (*MockOrchestrator)(nil)

func (m *MockOrchestrator) ProcessPayment(ctx context.Context, subscriptionID string, amountCents int64, currency string, customer *model.Customer) (model.ChargeResult, error) {
	m.mu.Lock()
	m.Calls.Process++
	m.mu.Unlock()
	if m.ProcessPaymentFunc != nil {
		return m.ProcessPaymentFunc(ctx, subscriptionID, amountCents, currency, customer)
	}
	return model.ChargeResult{TransactionID: "card_test", Provider: model.ProviderCard, AmountCents: amountCents, Currency: currency, Outcome: model.OutcomeCompleted, Timestamp: time.Now()}, nil
}

func (m *MockOrchestrator) CreateSubscriptionMandate(ctx context.Context, cycle model.BillingCycle, customer *model.Customer, planName string) (model.MandateResult, error) {
	m.mu.Lock()
	m.Calls.Mandates++
	m.mu.Unlock()
	if m.CreateMandateFunc != nil {
		return m.CreateMandateFunc(ctx, cycle, customer, planName)
	}
	return model.MandateResult{MandateID: "mnd_test", Provider: model.ProviderCard, Status: model.MandateStatusActive, NextBilling: cycle.Next(time.Now())}, nil
}

func (m *MockOrchestrator) CancelSubscription(ctx context.Context, subscriptionID, mandateID string, provider model.ProviderID) {
	m.mu.Lock()
	m.Calls.Cancels = append(m.Calls.Cancels, mandateID)
	m.mu.Unlock()
}

func (m *MockOrchestrator) RetryPayment(ctx context.Context, subscriptionID string, amountCents int64, currency string, customer *model.Customer) (model.ChargeResult, error) {
	m.mu.Lock()
	m.Calls.Retries++
	m.mu.Unlock()
	if m.RetryPaymentFunc != nil {
		return m.RetryPaymentFunc(ctx, subscriptionID, amountCents, currency, customer)
	}
	return model.ChargeResult{TransactionID: "card_retry", Provider: model.ProviderCard, AmountCents: amountCents, Currency: currency, Outcome: model.OutcomeCompleted, Timestamp: time.Now()}, nil
}

func (m *MockOrchestrator) QueryStatus(ctx context.Context, provider model.ProviderID, transactionID string) (model.ChargeResult, error) {
	m.mu.Lock()
	m.Calls.Statuses = append(m.Calls.Statuses, transactionID)
	m.mu.Unlock()
	if m.QueryStatusFunc != nil {
		return m.QueryStatusFunc(ctx, provider, transactionID)
	}
	return model.ChargeResult{TransactionID: transactionID, Provider: provider, Outcome: model.OutcomeCompleted, Timestamp: time.Now()}, nil
}

// MockGateway implements adapter.PaymentGateway for orchestrator tests.
type MockGateway struct {
	NameVal model.ProviderID

	ChargeFunc        func(ctx context.Context, amountCents int64, currency string) (model.ChargeResult, error)
	CreateMandateFunc func(ctx context.Context, customer *model.Customer, planName string) (model.MandateResult, error)
	CancelMandateFunc func(ctx context.Context, mandateID string) error
	QueryStatusFunc   func(ctx context.Context, transactionID string) (model.ChargeResult, error)
}

var _ adapter.PaymentGateway = (*MockGateway)(nil)

func (g *MockGateway) Name() model.ProviderID { return g.NameVal }

func (g *MockGateway) Charge(ctx context.Context, amountCents int64, currency string) (model.ChargeResult, error) {
	if g.ChargeFunc != nil {
		return g.ChargeFunc(ctx, amountCents, currency)
	}
	return model.ChargeResult{TransactionID: "tx", Outcome: model.OutcomeCompleted, AmountCents: amountCents, Currency: currency, Timestamp: time.Now()}, nil
}

func (g *MockGateway) CreateMandate(ctx context.Context, customer *model.Customer, planName string) (model.MandateResult, error) {
	if g.CreateMandateFunc != nil {
		return g.CreateMandateFunc(ctx, customer, planName)
	}
	return model.MandateResult{MandateID: "mnd", Status: model.MandateStatusActive}, nil
}

func (g *MockGateway) CancelMandate(ctx context.Context, mandateID string) error {
	if g.CancelMandateFunc != nil {
		return g.CancelMandateFunc(ctx, mandateID)
	}
	return nil
}

func (g *MockGateway) QueryStatus(ctx context.Context, transactionID string) (model.ChargeResult, error) {
	if g.QueryStatusFunc != nil {
		return g.QueryStatusFunc(ctx, transactionID)
	}
	return model.ChargeResult{TransactionID: transactionID, Outcome: model.OutcomeCompleted, Timestamp: time.Now()}, nil
}

// =============================
// Usage
// =============================

type MockUsageRepo struct {
	mu    sync.RWMutex
	store map[string]*model.UsageRecord // key: subscription/period

	SaveFunc func(ctx context.Context, tx repository.Tx, rec *model.UsageRecord) error
}

var _ repository.UsageRepository = (*MockUsageRepo)(nil)

func NewMockUsageRepo() *MockUsageRepo {
	return &MockUsageRepo{store: map[string]*model.UsageRecord{}}
}

func (m *MockUsageRepo) Save(ctx context.Context, tx repository.Tx, rec *model.UsageRecord) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, rec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.store[rec.SubscriptionID+"/"+rec.Period] = &cp
	return nil
}

func (m *MockUsageRepo) FindByPeriod(ctx context.Context, tx repository.Tx, subscriptionID, period string) (*model.UsageRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.store[subscriptionID+"/"+period]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *MockUsageRepo) ListBySubscription(ctx context.Context, tx repository.Tx, subscriptionID string) ([]*model.UsageRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.UsageRecord
	for _, rec := range m.store {
		if rec.SubscriptionID == subscriptionID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockUsageRepo) List(ctx context.Context, tx repository.Tx) ([]*model.UsageRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.UsageRecord, 0, len(m.store))
	for _, rec := range m.store {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}
