// Package operatorservice registers operators and verifies their credentials.
package operatorservice

import (
	"context"
	"strings"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/pkg/errorspkg"
	"github.com/go-petr/pet-wallet/pkg/passpkg"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by operator service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package operatorservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateOperatorParams) (domain.Operator, error)
	Get(ctx context.Context, username string) (domain.Operator, error)
}

// Service facilitates operator service layer logic.
type Service struct {
	repo Repo
}

// New returns operator service backed by the given repo.
func New(or Repo) *Service {
	return &Service{
		repo: or,
	}
}

// NormalizeEmail lower-cases and trims the email so that uniqueness does not depend on letter case.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeFullName collapses runs of whitespace in the full name into single spaces.
func NormalizeFullName(fullName string) string {
	return strings.Join(strings.Fields(fullName), " ")
}

// Create registers an operator and returns it without password data.
func (s *Service) Create(ctx context.Context, username, password, fullName, email string) (domain.OperatorWithoutPassword, error) {
	l := zerolog.Ctx(ctx).With().Str("username", username).Logger()

	hashedPassword, err := passpkg.Hash(password)
	if err != nil {
		l.Error().Err(err).Msg("hash operator password")
		return domain.OperatorWithoutPassword{}, errorspkg.ErrInternal
	}

	operator, err := s.repo.Create(ctx, domain.CreateOperatorParams{
		Username:       username,
		HashedPassword: hashedPassword,
		FullName:       NormalizeFullName(fullName),
		Email:          NormalizeEmail(email),
	})
	if err != nil {
		return domain.OperatorWithoutPassword{}, err
	}

	l.Info().Msg("operator registered")

	return operator.WithoutPassword(), nil
}

// CheckPassword returns the operator when pass matches its stored hash.
func (s *Service) CheckPassword(ctx context.Context, username, pass string) (domain.OperatorWithoutPassword, error) {
	operator, err := s.repo.Get(ctx, username)
	if err != nil {
		return domain.OperatorWithoutPassword{}, err
	}

	if err := passpkg.Check(pass, operator.HashedPassword); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("username", username).Msg("rejected operator login")
		return domain.OperatorWithoutPassword{}, domain.ErrWrongPassword
	}

	return operator.WithoutPassword(), nil
}
