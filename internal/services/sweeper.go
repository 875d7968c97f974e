package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	discoveryrepos "github.com/yungbote/pulsefeed-backend/internal/data/repos/discovery"
	"github.com/yungbote/pulsefeed-backend/internal/pkg/dbctx"
	"github.com/yungbote/pulsefeed-backend/internal/platform/logger"
)

const defaultSweepInterval = time.Hour

// SweeperService purges expired seen records on a fixed interval so the
// exclusion sets read at feed time stay small.
type SweeperService interface {
	// Start blocks until ctx is cancelled, sweeping once immediately and then
	// on every interval tick.
	Start(ctx context.Context)
	SweepOnce(ctx context.Context) (int64, error)
}

type sweeperService struct {
	db       *gorm.DB
	log      *logger.Logger
	seen     discoveryrepos.SeenRecordRepo
	interval time.Duration
}

func NewSweeperService(db *gorm.DB, baseLog *logger.Logger, seen discoveryrepos.SeenRecordRepo, interval time.Duration) SweeperService {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &sweeperService{
		db:       db,
		log:      baseLog.With("service", "SweeperService"),
		seen:     seen,
		interval: interval,
	}
}

func (s *sweeperService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("seen record sweeper stopping", "reason", ctx.Err())
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *sweeperService) SweepOnce(ctx context.Context) (int64, error) {
	return s.seen.DeleteExpired(dbctx.New(ctx))
}

func (s *sweeperService) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	n, err := s.SweepOnce(ctx)
	if err != nil {
		s.log.Warn("seen record sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.log.Info("seen records purged", "count", n)
	}
}
