package service

import (
	"context"
	"startup_academy_backend/internal/config"
	"startup_academy_backend/internal/model"
	"startup_academy_backend/internal/repository"
	"startup_academy_backend/pkg/logger"
	"startup_academy_backend/pkg/monitoring"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

type EvaluationJob struct {
	SubmissionID string
	Session      model.Session
}

type EvaluationResult struct {
	SubmissionID string
	Evaluation   *model.Evaluation
	Err          error
}

// Evaluator 由 EvaluationService 实现
type Evaluator interface {
	Evaluate(ctx context.Context, submissionID string) (*model.Evaluation, error)
}

// EvaluationWorker 固定数量的 goroutine 从缓冲队列取任务评估。
// 队列满时直接丢弃，由定时扫描把超时未评估的提交重新入队
type EvaluationWorker struct {
	Evaluator      Evaluator
	SubmissionRepo *repository.SubmissionRepository
	OnComplete     func(EvaluationResult)

	workers       int
	sweepInterval time.Duration
	staleAfter    time.Duration

	jobs    chan EvaluationJob
	results chan EvaluationResult
	pending sync.Map // submissionID -> struct{}

	mu        sync.RWMutex
	stopped   bool
	wg        sync.WaitGroup
	scheduler gocron.Scheduler
	startOnce sync.Once
	stopOnce  sync.Once
}

func NewEvaluationWorker(evaluator Evaluator, submissionRepo *repository.SubmissionRepository, cfg config.EvaluationConfig) *EvaluationWorker {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 100
	}
	return &EvaluationWorker{
		Evaluator:      evaluator,
		SubmissionRepo: submissionRepo,
		workers:        workers,
		sweepInterval:  time.Duration(cfg.SweepIntervalMinutes) * time.Minute,
		staleAfter:     time.Duration(cfg.StaleAfterMinutes) * time.Minute,
		jobs:           make(chan EvaluationJob, queueSize),
		results:        make(chan EvaluationResult, queueSize),
	}
}

// Results 每个完成的任务恰好投递一次；无人读取且缓冲已满时丢弃
func (w *EvaluationWorker) Results() <-chan EvaluationResult {
	return w.results
}

func (w *EvaluationWorker) Start() error {
	var err error
	w.startOnce.Do(func() {
		for i := 0; i < w.workers; i++ {
			w.wg.Add(1)
			go w.run(i)
		}

		if w.SubmissionRepo == nil || w.sweepInterval <= 0 {
			return
		}
		w.scheduler, err = gocron.NewScheduler()
		if err != nil {
			return
		}
		_, err = w.scheduler.NewJob(
			gocron.DurationJob(w.sweepInterval),
			gocron.NewTask(w.Sweep),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return
		}
		w.scheduler.Start()
		logger.Log.Info("Evaluation sweeper started",
			zap.Duration("interval", w.sweepInterval),
			zap.Duration("staleAfter", w.staleAfter))
	})
	return err
}

// Enqueue 不阻塞请求。已停止、重复或队列已满时返回 false
func (w *EvaluationWorker) Enqueue(job EvaluationJob) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return false
	}
	if _, loaded := w.pending.LoadOrStore(job.SubmissionID, struct{}{}); loaded {
		return false
	}

	select {
	case w.jobs <- job:
		monitoring.EvaluationQueueDepth.Set(float64(len(w.jobs)))
		return true
	default:
		w.pending.Delete(job.SubmissionID)
		logger.Log.Warn("Evaluation queue full, job dropped",
			zap.String("submissionID", job.SubmissionID))
		return false
	}
}

func (w *EvaluationWorker) run(id int) {
	defer w.wg.Done()
	for job := range w.jobs {
		monitoring.EvaluationQueueDepth.Set(float64(len(w.jobs)))

		evaluation, err := w.Evaluator.Evaluate(context.Background(), job.SubmissionID)
		w.pending.Delete(job.SubmissionID)

		outcome := "ok"
		if err != nil {
			outcome = "error"
			logger.Log.Error("Evaluation failed",
				zap.Int("worker", id),
				zap.String("submissionID", job.SubmissionID),
				zap.Error(err))
		}
		monitoring.EvaluationsCompleted.WithLabelValues(outcome).Inc()

		result := EvaluationResult{SubmissionID: job.SubmissionID, Evaluation: evaluation, Err: err}
		if w.OnComplete != nil {
			w.OnComplete(result)
		}
		select {
		case w.results <- result:
		default:
		}
	}
}

// Sweep 重新入队提交后长时间未评估的记录
func (w *EvaluationWorker) Sweep() {
	stale, err := w.SubmissionRepo.ListStaleSubmitted(time.Now().Add(-w.staleAfter), cap(w.jobs))
	if err != nil {
		logger.Log.Error("Failed to list stale submissions", zap.Error(err))
		return
	}

	requeued := 0
	for _, s := range stale {
		if w.Enqueue(EvaluationJob{SubmissionID: s.ID, Session: model.Session{UserID: s.UserID}}) {
			requeued++
		}
	}
	if requeued > 0 {
		logger.Log.Info("Re-enqueued stale submissions", zap.Int("count", requeued))
	}
}

// Stop 停止接收新任务，等待队列中已有任务处理完后关闭结果通道
func (w *EvaluationWorker) Stop() {
	w.stopOnce.Do(func() {
		if w.scheduler != nil {
			if err := w.scheduler.Shutdown(); err != nil {
				logger.Log.Warn("Failed to stop evaluation sweeper", zap.Error(err))
			}
		}

		w.mu.Lock()
		w.stopped = true
		close(w.jobs)
		w.mu.Unlock()

		w.wg.Wait()
		close(w.results)
		monitoring.EvaluationQueueDepth.Set(0)
	})
}
