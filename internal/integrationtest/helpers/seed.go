// Package helpers provides database seeding helpers used in integration tests.
package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/go-petr/pet-wallet/internal/accountrepo"
	"github.com/go-petr/pet-wallet/internal/customerrepo"
	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/internal/operatorrepo"
	"github.com/go-petr/pet-wallet/internal/sessionrepo"
	"github.com/go-petr/pet-wallet/pkg/currencypkg"
	"github.com/go-petr/pet-wallet/pkg/dbpkg"
	"github.com/go-petr/pet-wallet/pkg/passpkg"
	"github.com/go-petr/pet-wallet/pkg/randompkg"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SeedOperator creates random Operator with the given password.
func SeedOperator(t *testing.T, db dbpkg.SQLInterface, password string) domain.Operator {
	t.Helper()

	hashedPassword, err := passpkg.Hash(password)
	if err != nil {
		t.Fatalf("passpkg.Hash(%q) returned error: %v", password, err)
	}

	arg := domain.CreateOperatorParams{
		Username:       randompkg.Owner(),
		HashedPassword: hashedPassword,
		FullName:       randompkg.Name() + " " + randompkg.Name(),
		Email:          randompkg.Email(),
	}

	operator, err := operatorrepo.NewRepoPGS(db).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("operatorRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return operator
}

// SeedSession creates Session of the given operator expiring in a day.
func SeedSession(t *testing.T, db dbpkg.SQLInterface, username string) domain.Session {
	t.Helper()

	arg := domain.CreateSessionParams{
		ID:           uuid.New(),
		Username:     username,
		RefreshToken: randompkg.String(32),
		UserAgent:    randompkg.String(10),
		ClientIP:     randompkg.String(10),
		ExpiresAt:    time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second),
	}

	session, err := sessionrepo.NewRepoPGS(db).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("sessionRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return session
}

// SeedCustomer creates random Customer without accounts.
func SeedCustomer(t *testing.T, db dbpkg.SQLInterface) domain.Customer {
	t.Helper()

	arg := domain.CreateCustomerParams{
		FirstName: randompkg.Name(),
		LastName:  randompkg.Name(),
	}

	c, err := customerrepo.NewRepoPGS(db).CreateWithAccounts(context.Background(), arg, nil)
	if err != nil {
		t.Fatalf("customerRepo.CreateWithAccounts(context.Background(), %+v, nil) returned error: %v", arg, err)
	}

	return c.Customer
}

// SeedAccount creates Account of the given customer with the given balance.
func SeedAccount(t *testing.T, db dbpkg.SQLInterface, customerID int64, currency, balance string) domain.Account {
	t.Helper()

	arg := domain.CreateAccountParams{
		UUID:       uuid.New(),
		CustomerID: customerID,
		Currency:   currency,
		Balance:    decimal.RequireFromString(balance),
	}

	a, err := accountrepo.NewRepoPGS(db).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("accountRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return a
}

// SeedWallet creates random Customer provisioned like a new customer:
// USD 100.00, EUR 0.00 and CNY 0.00 accounts with their INITIAL ledger entries.
func SeedWallet(t *testing.T, db dbpkg.SQLInterface) domain.CustomerWithAccounts {
	t.Helper()

	arg := domain.CreateCustomerParams{
		FirstName: randompkg.Name(),
		LastName:  randompkg.Name(),
	}

	seeds := []domain.AccountSeed{
		{UUID: uuid.New(), Currency: currencypkg.USD, Balance: decimal.NewFromInt(100)},
		{UUID: uuid.New(), Currency: currencypkg.EUR, Balance: decimal.Zero},
		{UUID: uuid.New(), Currency: currencypkg.CNY, Balance: decimal.Zero},
	}

	c, err := customerrepo.NewRepoPGS(db).CreateWithAccounts(context.Background(), arg, seeds)
	if err != nil {
		t.Fatalf("customerRepo.CreateWithAccounts(context.Background(), %+v) returned error: %v", arg, err)
	}

	return c
}
