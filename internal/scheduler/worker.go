package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/ivanjorgee/maxconnect/internal/leads/service"
	"github.com/ivanjorgee/maxconnect/platform/config"
	"github.com/ivanjorgee/maxconnect/platform/logger"
)

type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	leads     *service.Service
	log       *logger.Logger
}

// Periodic cadence entries, in cron syntax.
const (
	followupSweepSpec  = "0 * * * *" // hourly on the hour
	noResponseStopSpec = "30 2 * * *"
)

func NewWorker(cfg config.SchedulerConfig, leads *service.Service, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := queueName(cfg)

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	periodic := asynq.NewScheduler(opt, nil)
	sweepTask, err := NewFollowupSweepTask(SweepPayload{})
	if err != nil {
		return nil, err
	}
	if _, err := periodic.Register(followupSweepSpec, sweepTask, asynq.Queue(queue)); err != nil {
		return nil, err
	}
	stopTask, err := NewNoResponseStopTask(SweepPayload{})
	if err != nil {
		return nil, err
	}
	if _, err := periodic.Register(noResponseStopSpec, stopTask, asynq.Queue(queue)); err != nil {
		return nil, err
	}

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		scheduler: periodic,
		mux:       mux,
		leads:     leads,
		log:       log,
	}

	mux.HandleFunc(TaskFollowupSweep, w.handleFollowupSweep)
	mux.HandleFunc(TaskNoResponseStop, w.handleNoResponseStop)

	return w, nil
}

func (w *Worker) handleFollowupSweep(ctx context.Context, task *asynq.Task) error {
	if _, err := ParseSweepPayload(task); err != nil {
		return err
	}

	result := w.leads.RunFollowupSweep(ctx)
	if !result.OK {
		// Step errors are already logged; retry the whole batch, the
		// guarded updates make re-runs safe.
		return fmt.Errorf("followup sweep finished with errors")
	}
	return nil
}

func (w *Worker) handleNoResponseStop(ctx context.Context, task *asynq.Task) error {
	if _, err := ParseSweepPayload(task); err != nil {
		return err
	}

	_, err := w.leads.StopUnresponsive(ctx)
	return err
}

// Run serves queued tasks and the periodic entries until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.scheduler.Shutdown()
		w.server.Shutdown()
	}()

	go func() {
		if err := w.scheduler.Run(); err != nil {
			w.log.Error("periodic scheduler stopped", "error", err)
		}
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
