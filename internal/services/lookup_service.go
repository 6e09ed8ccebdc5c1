package services

import (
	"context"
	"time"

	"coopsave/internal/utils"
	"coopsave/pkg/banking"
	"coopsave/pkg/geo"
	"coopsave/pkg/logger"
)

const directoryTTL = 24 * time.Hour

// LookupService serves the reference directories behind registration and
// KYC forms: the bank list, account resolution, and the state/LGA feed.
// Directories change rarely, so results sit in Redis for a day.
type LookupService interface {
	ListBanks(ctx context.Context) ([]*banking.Bank, error)
	ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*banking.AccountDetail, error)
	ListStates(ctx context.Context) ([]*geo.State, error)
}

type lookupService struct {
	bankVerifier  banking.BankVerifier
	stateProvider geo.StateProvider
	cache         CacheService
	logger        *logger.Logger
}

func NewLookupService(
	bankVerifier banking.BankVerifier,
	stateProvider geo.StateProvider,
	cache CacheService,
	logger *logger.Logger,
) LookupService {
	return &lookupService{
		bankVerifier:  bankVerifier,
		stateProvider: stateProvider,
		cache:         cache,
		logger:        logger,
	}
}

func (s *lookupService) ListBanks(ctx context.Context) ([]*banking.Bank, error) {
	if s.cache != nil {
		var banks []*banking.Bank
		if err := s.cache.Get(ctx, utils.CacheBankDirectoryKey, &banks); err == nil {
			return banks, nil
		}
	}

	banks, err := s.bankVerifier.ListBanks(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, utils.CacheBankDirectoryKey, banks, directoryTTL); err != nil {
			s.logger.WithError(err).Warn("failed to cache bank directory")
		}
	}

	return banks, nil
}

func (s *lookupService) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*banking.AccountDetail, error) {
	return s.bankVerifier.ResolveAccount(ctx, accountNumber, bankCode)
}

func (s *lookupService) ListStates(ctx context.Context) ([]*geo.State, error) {
	if s.cache != nil {
		var states []*geo.State
		if err := s.cache.Get(ctx, utils.CacheStateDirectoryKey, &states); err == nil {
			return states, nil
		}
	}

	states, err := s.stateProvider.ListStates(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, utils.CacheStateDirectoryKey, states, directoryTTL); err != nil {
			s.logger.WithError(err).Warn("failed to cache state directory")
		}
	}

	return states, nil
}
