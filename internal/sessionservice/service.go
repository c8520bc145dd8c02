// Package sessionservice manages business logic layer of operator sessions.
package sessionservice

import (
	"context"
	"errors"
	"time"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/pkg/configpkg"
	"github.com/go-petr/pet-wallet/pkg/tokenpkg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by session service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package sessionservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateSessionParams) (domain.Session, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Session, error)
	Block(ctx context.Context, id uuid.UUID, username string) (domain.Session, error)
}

// Service facilitates session service layer logic.
type Service struct {
	repo       Repo
	TokenMaker tokenpkg.Maker
	config     configpkg.Config
}

// New returns session service struct to issue and renew operator tokens.
func New(sr Repo, config configpkg.Config, tm tokenpkg.Maker) (*Service, error) {
	if tm == nil {
		return nil, errors.New("token maker is required")
	}

	return &Service{
		repo:       sr,
		TokenMaker: tm,
		config:     config,
	}, nil
}

// Create issues an access token and stores a new refresh session for the operator.
func (s *Service) Create(ctx context.Context, arg domain.CreateSessionParams) (string, time.Time, domain.Session, error) {
	l := zerolog.Ctx(ctx)

	accessToken, accessPayload, err := s.TokenMaker.CreateToken(arg.Username, s.config.AccessTokenDuration)
	if err != nil {
		l.Error().Err(err).Send()
		return "", time.Time{}, domain.Session{}, err
	}

	refreshToken, refreshPayload, err := s.TokenMaker.CreateToken(arg.Username, s.config.RefreshTokenDuration)
	if err != nil {
		l.Error().Err(err).Send()
		return "", time.Time{}, domain.Session{}, err
	}

	arg.ID = refreshPayload.ID
	arg.RefreshToken = refreshToken
	arg.ExpiresAt = refreshPayload.ExpiredAt

	session, err := s.repo.Create(ctx, arg)
	if err != nil {
		return "", time.Time{}, domain.Session{}, err
	}

	return accessToken, accessPayload.ExpiredAt, session, nil
}

// RenewAccessToken issues a new access token for a valid refresh token.
func (s *Service) RenewAccessToken(ctx context.Context, refreshToken string) (string, time.Time, error) {
	l := zerolog.Ctx(ctx)

	refreshPayload, err := s.TokenMaker.VerifyToken(refreshToken)
	if err != nil {
		l.Info().Err(err).Send()
		return "", time.Time{}, err
	}

	session, err := s.repo.Get(ctx, refreshPayload.ID)
	if err != nil {
		return "", time.Time{}, err
	}

	switch {
	case session.IsBlocked:
		err = domain.ErrBlockedSession
	case session.Username != refreshPayload.Username:
		err = domain.ErrInvalidOperator
	case session.RefreshToken != refreshToken:
		err = domain.ErrMismatchedRefreshToken
	case time.Now().After(session.ExpiresAt):
		err = domain.ErrExpiredSession
	}

	if err != nil {
		l.Warn().Err(err).Str("session", session.ID.String()).Send()
		return "", time.Time{}, err
	}

	accessToken, accessPayload, err := s.TokenMaker.CreateToken(refreshPayload.Username, s.config.AccessTokenDuration)
	if err != nil {
		l.Error().Err(err).Send()
		return "", time.Time{}, err
	}

	return accessToken, accessPayload.ExpiredAt, nil
}

// Revoke blocks the session behind refreshToken so it can no longer renew access tokens.
// Only the operator named in the token can revoke it.
func (s *Service) Revoke(ctx context.Context, refreshToken string) error {
	l := zerolog.Ctx(ctx)

	refreshPayload, err := s.TokenMaker.VerifyToken(refreshToken)
	if err != nil {
		l.Info().Err(err).Send()
		return err
	}

	session, err := s.repo.Block(ctx, refreshPayload.ID, refreshPayload.Username)
	if err != nil {
		return err
	}

	l.Info().Str("session", session.ID.String()).Str("username", session.Username).Msg("session revoked")

	return nil
}
