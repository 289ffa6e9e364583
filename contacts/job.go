package contacts

import (
	"context"
	"sync"
	"time"

	"github.com/paperlex/paperlex/logger"
	"github.com/paperlex/paperlex/util"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SyncJob runs the reconciler on a cron cadence. A single instance runs at
// a time; the reconciler's own lock covers manual runs racing the job.
type SyncJob struct {
	reconciler *Reconciler
	schedule   cron.Schedule
	stop       chan struct{}
	ticker     *util.TickWorker
	next       time.Time
}

func NewSyncJob(reconciler *Reconciler, cadence string, wg *sync.WaitGroup) (*SyncJob, error) {
	schedule, err := cron.ParseStandard(cadence)
	if err != nil {
		return nil, err
	}
	j := &SyncJob{
		reconciler: reconciler,
		schedule:   schedule,
		stop:       make(chan struct{}),
		next:       schedule.Next(time.Now()),
	}
	j.ticker = util.NewTickWorker("contact-sync", time.Second, j.stop, j.tick, wg)
	return j, nil
}

func (j *SyncJob) Start() {
	j.ticker.Start()
	logger.Info("contact sync job started", zap.Time("nextRun", j.next))
}

func (j *SyncJob) Stop() {
	j.ticker.Stop()
}

func (j *SyncJob) tick() {
	now := time.Now()
	if now.Before(j.next) {
		return
	}
	j.next = j.schedule.Next(now)
	if _, err := j.reconciler.Run(context.Background()); err != nil {
		logger.Error("scheduled reconciliation failed", zap.Error(err))
	}
}
