// Package transferservice manages business logic layer of transfers.
package transferservice

import (
	"context"
	"errors"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/internal/feepolicy"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repo provides data access layer interface needed by transfer service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transferservice
type Repo interface {
	Transfer(ctx context.Context, arg domain.TransferTxParams, check domain.TransferCheck) (domain.TransferTxResult, error)
}

// Service facilitates transfer service layer logic.
type Service struct {
	repo   Repo
	policy feepolicy.Policy
}

// New return transfer service struct to manage transfer bussines logic.
func New(tr Repo, policy feepolicy.Policy) *Service {
	return &Service{
		repo:   tr,
		policy: policy,
	}
}

// maxAmount is the first amount that doesn't fit into NUMERIC(10, 2).
var maxAmount = decimal.New(1, 8)

// ParseRequest validates the raw amount and derives the transfer kind.
func ParseRequest(arg domain.CreateTransferParams) (domain.TransferRequest, error) {
	amount, err := decimal.NewFromString(arg.Amount)
	if err != nil {
		return domain.TransferRequest{}, domain.ErrInvalidAmount
	}

	if !amount.IsPositive() {
		return domain.TransferRequest{}, domain.ErrNegativeAmount
	}

	if !amount.Equal(amount.Round(2)) || amount.GreaterThanOrEqual(maxAmount) {
		return domain.TransferRequest{}, domain.ErrInvalidAmount
	}

	req := domain.TransferRequest{
		Kind:         domain.SelfTransfer,
		CustomerFrom: arg.CustomerFrom,
		AccountFrom:  arg.AccountFrom,
		AccountTo:    arg.AccountTo,
		Amount:       amount,
	}

	if arg.CustomerTo != nil {
		req.Kind = domain.InterCustomerTransfer
		req.CustomerTo = *arg.CustomerTo
	}

	return req, nil
}

// Transfer validates the request on locked accounts and then moves the money.
//
// A broken rule is returned as *domain.ValidationError and nothing is written.
func (s *Service) Transfer(ctx context.Context, arg domain.CreateTransferParams) (domain.TransferReceipt, error) {
	l := zerolog.Ctx(ctx)

	req, err := ParseRequest(arg)
	if err != nil {
		l.Info().Err(err).Str("amount", arg.Amount).Send()
		return domain.TransferReceipt{}, err
	}

	check := func(from, to domain.Account) (decimal.Decimal, error) {
		if violations := Validate(s.policy, from, to, req); len(violations) > 0 {
			return decimal.Zero, &domain.ValidationError{Violations: violations}
		}

		return s.policy.Calculate(req.Amount, req.Kind), nil
	}

	txArg := domain.TransferTxParams{
		AccountFrom: req.AccountFrom,
		AccountTo:   req.AccountTo,
		Amount:      req.Amount,
	}

	result, err := s.repo.Transfer(ctx, txArg, check)
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			l.Info().Err(err).Stringer("kind", req.Kind).Send()
		}

		return domain.TransferReceipt{}, err
	}

	l.Info().
		Stringer("kind", req.Kind).
		Stringer("from", result.From.Account.UUID).
		Stringer("to", result.To.Account.UUID).
		Str("amount", req.Amount.StringFixed(2)).
		Str("fee", result.Entry.Fee.StringFixed(2)).
		Msg("transfer completed")

	return domain.TransferReceipt{
		From: domain.NewParty(result.From),
		To:   domain.NewParty(result.To),
	}, nil
}
