package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/cv-reader/internal/models"
	"alfredoptarigan/cv-reader/internal/repositories"
)

var (
	ErrQueueFull     = errors.New("processing queue is full")
	ErrWorkerStopped = errors.New("worker stopped")
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(runID uuid.UUID) error
	Cancel(runID uuid.UUID) error
}

type WorkerOptions struct {
	Concurrency   int
	QueueSize     int
	JobTimeout    time.Duration
	RetentionTTL  time.Duration
	PruneInterval time.Duration
}

type worker struct {
	runRepo    repositories.RunRepository
	sessions   repositories.SessionRepository
	extraction ExtractionService
	opts       WorkerOptions
	jobQueue   chan uuid.UUID
	wg         sync.WaitGroup
	stopChan   chan struct{}
	stopOnce   sync.Once

	mu      sync.Mutex
	running map[uuid.UUID]context.CancelFunc
}

func NewWorker(
	runRepo repositories.RunRepository,
	sessions repositories.SessionRepository,
	extraction ExtractionService,
	opts WorkerOptions,
) Worker {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 100
	}
	if opts.PruneInterval <= 0 {
		opts.PruneInterval = time.Minute
	}

	return &worker{
		runRepo:    runRepo,
		sessions:   sessions,
		extraction: extraction,
		opts:       opts,
		jobQueue:   make(chan uuid.UUID, opts.QueueSize),
		stopChan:   make(chan struct{}),
		running:    make(map[uuid.UUID]context.CancelFunc),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting worker with %d concurrent workers\n", w.opts.Concurrency)

	for i := 0; i < w.opts.Concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	if w.opts.RetentionTTL > 0 {
		w.wg.Add(1)
		go w.pruneExpired(ctx)
	}
}

// Stop implements Worker. In-flight runs are cancelled.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		log.Println("🛑 Stopping worker...")
		close(w.stopChan)

		w.mu.Lock()
		for _, cancel := range w.running {
			cancel()
		}
		w.mu.Unlock()

		w.wg.Wait()
		log.Println("✅ Worker stopped")
	})
}

// EnqueueJob implements Worker. It never blocks the caller.
func (w *worker) EnqueueJob(runID uuid.UUID) error {
	select {
	case <-w.stopChan:
		return ErrWorkerStopped
	default:
	}

	select {
	case w.jobQueue <- runID:
		log.Printf("📥 Run %s enqueued\n", runID)
		return nil
	default:
		return ErrQueueFull
	}
}

// Cancel implements Worker. A running job has its context cancelled; a
// queued one is marked cancelled and skipped when dequeued.
func (w *worker) Cancel(runID uuid.UUID) error {
	w.mu.Lock()
	cancel, running := w.running[runID]
	w.mu.Unlock()

	if running {
		cancel()
		return nil
	}

	return w.runRepo.UpdateError(runID, models.StatusCancelled, "processing was cancelled")
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case <-ctx.Done():
			return
		case runID := <-w.jobQueue:
			log.Printf("👷 Worker #%d processing run %s\n", workerID, runID)
			if err := w.runJob(ctx, runID); err != nil {
				log.Printf("❌ Worker #%d failed to process run %s: %v\n", workerID, runID, err)
			} else {
				log.Printf("✅ Worker #%d completed run %s\n", workerID, runID)
			}
		}
	}
}

func (w *worker) runJob(ctx context.Context, runID uuid.UUID) error {
	var (
		jobCtx context.Context
		cancel context.CancelFunc
	)
	if w.opts.JobTimeout > 0 {
		jobCtx, cancel = context.WithTimeout(ctx, w.opts.JobTimeout)
	} else {
		jobCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	w.mu.Lock()
	w.running[runID] = cancel
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		delete(w.running, runID)
		w.mu.Unlock()
	}()

	return w.extraction.ProcessRun(jobCtx, runID)
}

func (w *worker) pruneExpired(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.opts.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-w.opts.RetentionTTL)

			if n := w.runRepo.DeleteOlderThan(cutoff); n > 0 {
				log.Printf("🧹 Pruned %d finished runs\n", n)
			}

			n, err := w.sessions.PruneIdle(ctx, cutoff)
			if err != nil {
				log.Printf("⚠️  Failed to prune idle sessions: %v\n", err)
				continue
			}
			if n > 0 {
				log.Printf("🧹 Pruned %d idle sessions\n", n)
			}
		}
	}
}
