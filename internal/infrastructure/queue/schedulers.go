package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"library-api/internal/config"
	"library-api/internal/shared"
	"library-api/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(redis asynq.RedisClientOpt, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		redis,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

// RegisterJobs đăng ký tất cả periodic jobs. Cron rỗng = tắt job đó.
func (s *Scheduler) RegisterJobs() error {
	if err := s.registerReconcileJob(); err != nil {
		return err
	}

	if err := s.registerExportArchiveJob(); err != nil {
		return err
	}

	return nil
}

// ================================================
// JOB 1: Reconcile books_count (mặc định mỗi giờ)
// ================================================
func (s *Scheduler) registerReconcileJob() error {
	spec := s.jobConfig.ReconcileCron
	if spec == "" {
		logger.Warn("Reconcile job disabled", nil)
		return nil
	}

	payload, err := json.Marshal(shared.ReconcilePayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeReconcileBookCounts, payload)

	_, err = s.scheduler.Register(
		spec,
		task,
		asynq.Queue(shared.QueueMaintenance),
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Unique(time.Hour),
	)
	if err != nil {
		logger.Error("Failed to register ReconcileBookCounts job", err)
		return err
	}

	logger.Info("✓ Registered ReconcileBookCounts", map[string]interface{}{"cron": spec})
	return nil
}

// ================================================
// JOB 2: Export archive lên MinIO (mặc định 3 AM)
// ================================================
func (s *Scheduler) registerExportArchiveJob() error {
	spec := s.jobConfig.ExportArchiveCron
	if spec == "" {
		logger.Warn("Export archive job disabled", nil)
		return nil
	}

	payload, err := json.Marshal(shared.ArchiveExportPayload{RequestedBy: "scheduler"})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeArchiveExport, payload)

	_, err = s.scheduler.Register(
		spec,
		task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(2),
		asynq.Timeout(15*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register ArchiveExport job", err)
		return err
	}

	logger.Info("✓ Registered ArchiveExport", map[string]interface{}{"cron": spec})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
