// Package sweeper cancels provisional reservations that were neither
// verified nor reviewed within the grace period.
package sweeper

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
	"venuebook/pkg/config"
	apperrors "venuebook/pkg/errors"
	"venuebook/pkg/logger"
	"venuebook/pkg/model"

	"github.com/robfig/cron/v3"
)

type Expirer interface {
	ListStale(ctx context.Context, limit int) ([]*model.Reservation, error)
	Expire(ctx context.Context, reservation *model.Reservation) error
}

type Result struct {
	Examined int
	Expired  int
	Skipped  int
	Failed   int
}

type Sweeper struct {
	expirer   Expirer
	log       *logger.Logger
	batchSize int
	cron      *cron.Cron
	running   atomic.Bool
}

func New(expirer Expirer, cfg *config.Config) (*Sweeper, error) {
	s := &Sweeper{
		expirer:   expirer,
		log:       cfg.Log.Component("sweeper"),
		batchSize: cfg.SweepBatchSize,
	}

	cl := cronLogger{log: s.log}
	s.cron = cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	if _, err := s.cron.AddFunc(cfg.SweepSchedule, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", cfg.SweepSchedule, err)
	}
	return s, nil
}

func (s *Sweeper) Start() {
	s.cron.Start()
	s.log.Info("Expiry sweeper started")
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("Expiry sweeper stopped")
}

// RunOnce performs one sweep. It reports false without doing anything when
// another sweep is still in progress. A failure on one reservation never
// stops the rest of the batch.
func (s *Sweeper) RunOnce(ctx context.Context) (Result, bool) {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn("Sweep already in progress, skipping")
		return Result{}, false
	}
	defer s.running.Store(false)

	start := time.Now()
	var res Result

	stale, err := s.expirer.ListStale(ctx, s.batchSize)
	if err != nil {
		s.log.Error("Failed to list stale reservations", "error", err)
		return res, true
	}

	for _, r := range stale {
		res.Examined++
		err := s.expirer.Expire(ctx, r)
		switch {
		case err == nil:
			res.Expired++
			s.log.Info("Expired provisional reservation", "id", r.ID, "venue_id", r.VenueID, "date", r.Date)
		case apperrors.HasCode(err, apperrors.CodeInvalidState), apperrors.HasCode(err, apperrors.CodeNotFound):
			res.Skipped++
			s.log.Debug("Reservation left the provisional state before expiry", "id", r.ID)
		default:
			res.Failed++
			s.log.Error("Failed to expire reservation", "id", r.ID, "error", err)
		}
	}

	s.log.Info("Sweep completed",
		"examined", res.Examined,
		"expired", res.Expired,
		"skipped", res.Skipped,
		"failed", res.Failed,
		"duration", time.Since(start),
	)
	return res, true
}

// cronLogger adapts the service logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
