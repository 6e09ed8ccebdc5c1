package services

import (
	"context"
	"errors"
	"time"

	"coopsave/internal/models"
	"coopsave/internal/repositories/interfaces"
	"coopsave/pkg/logger"

	"github.com/robfig/cron/v3"
)

// SweepService is the reconciliation loop behind the non-atomic
// workflows. On each tick it re-drives stalled activations and retries
// half-finished prospect conversions. It also surfaces long-pending
// transactions so operators notice an approval backlog.
type SweepService interface {
	Start() error
	Stop()
	RunOnce(ctx context.Context) error
}

type sweepService struct {
	userRepo        interfaces.UserRepository
	prospectRepo    interfaces.ProspectRepository
	transactionRepo interfaces.TransactionRepository
	onboarding      OnboardingService
	cache           CacheService
	schedule        string
	staleAfter      time.Duration
	cron            *cron.Cron
	logger          *logger.Logger
}

const sweepLockKey = "sweep:leader"

func NewSweepService(
	userRepo interfaces.UserRepository,
	prospectRepo interfaces.ProspectRepository,
	transactionRepo interfaces.TransactionRepository,
	onboarding OnboardingService,
	cache CacheService,
	schedule string,
	staleAfter time.Duration,
	logger *logger.Logger,
) SweepService {
	return &sweepService{
		userRepo:        userRepo,
		prospectRepo:    prospectRepo,
		transactionRepo: transactionRepo,
		onboarding:      onboarding,
		cache:           cache,
		schedule:        schedule,
		staleAfter:      staleAfter,
		cron:            cron.New(),
		logger:          logger,
	}
}

func (s *sweepService) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := s.RunOnce(ctx); err != nil {
			s.logger.WithError(err).Error("reconciliation sweep failed")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.WithField("schedule", s.schedule).Info("reconciliation sweep started")

	return nil
}

func (s *sweepService) Stop() {
	s.cron.Stop()
}

func (s *sweepService) RunOnce(ctx context.Context) error {
	// One instance sweeps at a time; the lock expires on its own if the
	// holder dies mid-run.
	if s.cache != nil {
		acquired, err := s.cache.SetNX(ctx, sweepLockKey, time.Now().Unix(), s.staleAfter)
		if err != nil {
			s.logger.WithError(err).Warn("sweep lock unavailable, proceeding unguarded")
		} else if !acquired {
			return nil
		} else {
			defer s.cache.Delete(ctx, sweepLockKey)
		}
	}

	cutoff := time.Now().Add(-s.staleAfter)

	s.resumeStalledActivations(ctx, cutoff)
	s.finishStalledConversions(ctx)
	s.reportPendingBacklog(ctx, cutoff)

	return nil
}

func (s *sweepService) resumeStalledActivations(ctx context.Context, cutoff time.Time) {
	users, err := s.userRepo.GetStaleActivations(ctx, cutoff)
	if err != nil {
		s.logger.WithError(err).Error("failed to list stale activations")
		return
	}

	for _, user := range users {
		if err := s.onboarding.ResumeActivation(ctx, user); err != nil {
			s.logger.WithUserID(user.ID).WithError(err).Error("failed to resume activation")
			continue
		}
		s.logger.WithUserID(user.ID).Info("resumed stalled activation")
	}
}

// finishStalledConversions deletes prospects whose converted user already
// exists. The conversion marker on the user makes the check cheap.
func (s *sweepService) finishStalledConversions(ctx context.Context) {
	prospects, err := s.prospectRepo.GetAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to list prospects")
		return
	}

	for _, prospect := range prospects {
		user, err := s.userRepo.GetByConvertedFrom(ctx, prospect.ID)
		if err != nil {
			if !errors.Is(err, interfaces.ErrNotFound) {
				s.logger.WithError(err).Error("failed to check conversion marker")
			}
			continue
		}

		if err := s.prospectRepo.Delete(ctx, prospect.ID); err != nil && !errors.Is(err, interfaces.ErrNotFound) {
			s.logger.WithUserID(user.ID).WithError(err).Error("failed to delete converted prospect")
			continue
		}
		s.logger.WithUserID(user.ID).WithField("prospect_id", prospect.ID.Hex()).Info("finished stalled conversion")
	}
}

func (s *sweepService) reportPendingBacklog(ctx context.Context, cutoff time.Time) {
	txns, err := s.transactionRepo.GetPendingOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.WithError(err).Error("failed to list pending backlog")
		return
	}
	if len(txns) == 0 {
		return
	}

	byType := map[models.TransactionType]int{}
	for _, txn := range txns {
		byType[txn.Type]++
	}

	s.logger.WithFields(map[string]interface{}{
		"total":       len(txns),
		"deposits":    byType[models.TransactionTypeDeposit],
		"withdrawals": byType[models.TransactionTypeWithdraw],
	}).Warn("transactions pending past threshold")
}
