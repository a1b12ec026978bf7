package scheduler

import (
	"context"
	"fmt"
	"time"

	alertdomain "github.com/voltmesh/gridadmin/internal/alert/domain"
	"github.com/voltmesh/gridadmin/internal/billingstats"
	"github.com/voltmesh/gridadmin/internal/config"
	notificationdomain "github.com/voltmesh/gridadmin/internal/notification/domain"
	"github.com/voltmesh/gridadmin/internal/ratelimit"
	"github.com/voltmesh/gridadmin/internal/ws"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	JobLowBalanceSweep = "low_balance_sweep"
	JobDailyStats      = "daily_stats_snapshot"

	lowBalanceLockKey = "jobs:lock:low_balance_sweep"
	lowBalanceLockTTL = 10 * time.Minute
)

type JobsParams struct {
	fx.In

	Scheduler  *Scheduler
	Config     config.Config
	DB         *gorm.DB
	Log        *zap.Logger
	Alerts     alertdomain.Service
	Dispatcher notificationdomain.Dispatcher
	Stats      billingstats.Service
	Hub        *ws.Hub           `optional:"true"`
	Locker     *ratelimit.Locker `optional:"true"`
}

// RegisterJobs wires the standing cron jobs and starts the scheduler with
// the fx lifecycle.
func RegisterJobs(lc fx.Lifecycle, p JobsParams) error {
	log := p.Log.Named("scheduler.jobs")

	sweep := &lowBalanceSweep{
		db:         p.DB,
		log:        log,
		alerts:     p.Alerts,
		dispatcher: p.Dispatcher,
		locker:     p.Locker,
	}
	if err := p.Scheduler.AddJob(JobLowBalanceSweep, p.Config.Scheduler.LowBalanceCron, sweep.Run, Options{}); err != nil {
		return err
	}

	snapshot := &dailyStatsSnapshot{
		log:   log,
		stats: p.Stats,
		hub:   p.Hub,
	}
	if err := p.Scheduler.AddJob(JobDailyStats, p.Config.Scheduler.DailyStatsCron, snapshot.Run, Options{}); err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Scheduler.StartAll()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Scheduler.StopAll(ctx)
			return nil
		},
	})
	return nil
}

type sweepRow struct {
	ID                  int64
	AccountNumber       string
	ConsumerID          int64
	CurrentBalance      float64
	LowBalanceThreshold float64
	EmergencyThreshold  float64
}

// lowBalanceSweep finds active accounts under their low-balance threshold and
// raises the matching alert and consumer notification for each.
type lowBalanceSweep struct {
	db         *gorm.DB
	log        *zap.Logger
	alerts     alertdomain.Service
	dispatcher notificationdomain.Dispatcher
	locker     *ratelimit.Locker
}

func (s *lowBalanceSweep) Run(ctx context.Context) error {
	if s.locker != nil {
		token, acquired, err := s.locker.TryLock(ctx, lowBalanceLockKey, lowBalanceLockTTL)
		if err != nil {
			s.log.Warn("sweep lock unavailable, continuing unlocked", zap.Error(err))
		} else if !acquired {
			s.log.Info("sweep already running elsewhere, skipping")
			return nil
		} else {
			defer func() {
				if err := s.locker.Unlock(ctx, lowBalanceLockKey, token); err != nil {
					s.log.Warn("release sweep lock", zap.Error(err))
				}
			}()
		}
	}

	var rows []sweepRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, account_number, consumer_id, current_balance,
		        low_balance_threshold, emergency_threshold
		 FROM prepaid_accounts
		 WHERE is_active = ? AND is_blocked = ?
		   AND current_balance <
		       (CASE WHEN low_balance_threshold > 0 THEN low_balance_threshold ELSE 100 END)`,
		true, false,
	).Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("scan low balance accounts: %w", err)
	}

	for i := range rows {
		row := &rows[i]

		alertType := alertdomain.AlertTypeLowBalance
		kind := notificationdomain.KindLowBalanceAlert
		if row.CurrentBalance <= row.EmergencyThreshold {
			alertType = alertdomain.AlertTypeEmergencyLow
			kind = notificationdomain.KindEmergencyLowAlert
		}

		if _, err := s.alerts.Raise(ctx, alertdomain.RaiseRequest{
			Type:      string(alertType),
			AccountID: fmt.Sprintf("%d", row.ID),
			Message: fmt.Sprintf("account %s balance %.2f below threshold %.2f",
				row.AccountNumber, row.CurrentBalance, row.LowBalanceThreshold),
		}); err != nil {
			s.log.Warn("raise sweep alert",
				zap.String("account_number", row.AccountNumber),
				zap.Error(err),
			)
		}

		nctx := notificationdomain.Context{
			AccountNumber: row.AccountNumber,
			Balance:       row.CurrentBalance,
		}
		if row.ConsumerID != 0 {
			nctx.ConsumerID = fmt.Sprintf("%d", row.ConsumerID)
		}
		if _, err := s.dispatcher.Raise(ctx, kind, nctx); err != nil {
			s.log.Warn("dispatch sweep notification",
				zap.String("account_number", row.AccountNumber),
				zap.Error(err),
			)
		}
	}

	s.log.Info("low balance sweep completed", zap.Int("accounts", len(rows)))
	return nil
}

// dailyStatsSnapshot computes the aggregation report and pushes it to the
// admin room.
type dailyStatsSnapshot struct {
	log   *zap.Logger
	stats billingstats.Service
	hub   *ws.Hub
}

func (s *dailyStatsSnapshot) Run(ctx context.Context) error {
	report, err := s.stats.Compute(ctx)
	if err != nil {
		return fmt.Errorf("compute daily stats: %w", err)
	}

	if s.hub != nil {
		s.hub.BroadcastRoom(ws.AdminRoom, ws.EventDailyStats, report)
	}
	return nil
}
