// Package ledgerservice manages business logic layer of the ledger.
package ledgerservice

import (
	"context"

	"github.com/go-petr/pet-wallet/internal/domain"
)

// Repo provides data access layer interface needed by ledger service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package ledgerservice
type Repo interface {
	List(ctx context.Context, arg domain.ListLedgerEntriesParams) ([]domain.LedgerEntry, error)
}

// Service facilitates ledger service layer logic.
type Service struct {
	repo Repo
}

// New returns ledger service struct to read the ledger.
func New(lr Repo) *Service {
	return &Service{repo: lr}
}

// List returns the given page of ledger entries matching filter.
// Entries come in the filter order, newest first when none is given.
func (s *Service) List(ctx context.Context, filter domain.LedgerFilter, pageSize, pageID int32) ([]domain.LedgerEntry, error) {
	arg := domain.ListLedgerEntriesParams{
		LedgerFilter: filter,
		Limit:        pageSize,
		Offset:       (pageID - 1) * pageSize,
	}

	entries, err := s.repo.List(ctx, arg)
	if err != nil {
		return nil, err
	}

	return entries, nil
}
