// Package customerservice manages business logic layer of customers.
package customerservice

import (
	"context"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/pkg/currencypkg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repo provides data access layer interface needed by customer service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package customerservice
type Repo interface {
	CreateWithAccounts(ctx context.Context, arg domain.CreateCustomerParams, seeds []domain.AccountSeed) (domain.CustomerWithAccounts, error)
	Get(ctx context.Context, id int64) (domain.CustomerWithAccounts, error)
	List(ctx context.Context, limit, offset int32) ([]domain.CustomerWithAccounts, error)
}

// Service facilitates customer service layer logic.
type Service struct {
	repo Repo
}

// New returns customer service struct to manage customer bussines logic.
func New(cr Repo) *Service {
	return &Service{
		repo: cr,
	}
}

// InitialAccounts returns the accounts every new customer is provisioned with.
func InitialAccounts() []domain.AccountSeed {
	return []domain.AccountSeed{
		{UUID: uuid.New(), Currency: currencypkg.USD, Balance: decimal.New(10000, -2)},
		{UUID: uuid.New(), Currency: currencypkg.EUR, Balance: decimal.New(0, -2)},
		{UUID: uuid.New(), Currency: currencypkg.CNY, Balance: decimal.New(0, -2)},
	}
}

// Create provisions a customer with its initial accounts.
func (s *Service) Create(ctx context.Context, firstName, lastName string) (domain.CustomerWithAccounts, error) {
	l := zerolog.Ctx(ctx)

	arg := domain.CreateCustomerParams{
		FirstName: firstName,
		LastName:  lastName,
	}

	customer, err := s.repo.CreateWithAccounts(ctx, arg, InitialAccounts())
	if err != nil {
		return domain.CustomerWithAccounts{}, err
	}

	l.Info().Int64("customer", customer.ID).Int("accounts", len(customer.Accounts)).Msg("customer provisioned")

	return customer, nil
}

// Get returns the customer with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.CustomerWithAccounts, error) {
	return s.repo.Get(ctx, id)
}

// List returns the given page of customers.
func (s *Service) List(ctx context.Context, pageSize, pageID int32) ([]domain.CustomerWithAccounts, error) {
	limit := pageSize
	offset := (pageID - 1) * pageSize

	customers, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	return customers, nil
}
