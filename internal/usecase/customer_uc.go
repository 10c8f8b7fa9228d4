package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"hosting-billing-engine/internal/domain"
	"hosting-billing-engine/internal/domain/model"
	"hosting-billing-engine/internal/domain/ports/repository"
)

// Compile-time check
var _ CustomerUseCase = (*customerUC)(nil)

// CustomerUseCase is the plain CRUD boundary for customer records. The
// billing core only reads the payment preference and region off them.
type CustomerUseCase interface {
	Create(ctx context.Context, name, email, company, region string, pm model.PaymentMethodPreference) (*model.Customer, error)
	Get(ctx context.Context, id string) (*model.Customer, error)
	List(ctx context.Context) ([]*model.Customer, error)
	Update(ctx context.Context, c *model.Customer) (*model.Customer, error)
	Delete(ctx context.Context, id string) error
}

type customerUC struct {
	customers repository.CustomerRepository
}

func NewCustomerUseCase(customers repository.CustomerRepository) *customerUC {
	return &customerUC{customers: customers}
}

func (u *customerUC) Create(ctx context.Context, name, email, company, region string, pm model.PaymentMethodPreference) (*model.Customer, error) {
	if name == "" || email == "" {
		return nil, domain.ErrInvalidArgument
	}
	if pm == "" {
		pm = model.PreferenceCard
	}
	c := &model.Customer{
		ID:            uuid.NewString(),
		Name:          name,
		Email:         email,
		Company:       company,
		Region:        region,
		PaymentMethod: pm,
		Status:        "active",
		CreatedAt:     time.Now(),
	}
	if err := u.customers.Save(ctx, repository.NoTX, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (u *customerUC) Get(ctx context.Context, id string) (*model.Customer, error) {
	return u.customers.FindByID(ctx, repository.NoTX, id)
}

func (u *customerUC) List(ctx context.Context) ([]*model.Customer, error) {
	return u.customers.List(ctx, repository.NoTX)
}

func (u *customerUC) Update(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	if c == nil || c.ID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if _, err := u.customers.FindByID(ctx, repository.NoTX, c.ID); err != nil {
		return nil, err
	}
	if err := u.customers.Save(ctx, repository.NoTX, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (u *customerUC) Delete(ctx context.Context, id string) error {
	return u.customers.Delete(ctx, repository.NoTX, id)
}
