package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/teamboard/domain"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// Repairer detaches tasks that reference missing teams.
type Repairer interface {
	Repair(ctx context.Context, actor domain.Actor) (int, error)
}

// SchedulerConfig controls how often the orphan repair runs.
type SchedulerConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// RepairScheduler runs the orphan repair on a cron schedule as the system actor.
type RepairScheduler struct {
	repairer Repairer
	monitor  ConnectionHealth
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      SchedulerConfig
}

func NewRepairScheduler(repairer Repairer, monitor ConnectionHealth, logger *zap.Logger, cfg SchedulerConfig) (*RepairScheduler, error) {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rs := &RepairScheduler{
		repairer: repairer,
		monitor:  monitor,
		logger:   logger,
		cfg:      cfg,
		cron:     cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	if _, err := rs.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		if _, err := rs.RunOnce(ctx); err != nil {
			rs.logger.Error("scheduled orphan repair failed", zap.Error(err))
		}
	}); err != nil {
		return nil, err
	}

	return rs, nil
}

// Start launches the cron scheduler.
func (rs *RepairScheduler) Start() {
	if rs == nil || rs.cron == nil {
		return
	}
	rs.cron.Start()
	rs.logger.Info("repair scheduler started", zap.Duration("interval", rs.cfg.Interval))
}

// Stop waits for a running repair to finish or for ctx to expire.
func (rs *RepairScheduler) Stop(ctx context.Context) {
	if rs == nil || rs.cron == nil {
		return
	}
	stopCtx := rs.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	rs.logger.Info("repair scheduler stopped")
}

// RunOnce performs one repair pass, skipping it while the store is offline.
func (rs *RepairScheduler) RunOnce(ctx context.Context) (int, error) {
	if rs == nil || rs.repairer == nil {
		return 0, nil
	}
	if rs.monitor != nil && !rs.monitor.IsOnline() {
		rs.logger.Debug("skipping orphan repair (store offline)")
		return 0, nil
	}
	return rs.repairer.Repair(ctx, domain.SystemActor)
}
