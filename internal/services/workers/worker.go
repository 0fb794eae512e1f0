package workers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/vidslice/vidslice-api/internal/models"
	"github.com/vidslice/vidslice-api/internal/services/jobs"
)

// JobProcessor handles one job type of the transcription pipeline
type JobProcessor interface {
	ProcessJob(ctx context.Context, job *models.Job) error
	CanProcess(jobType models.JobType) bool
}

// Worker polls the job queue and dispatches claimed jobs to its
// processors. A transcription can hold a worker for many minutes, so a
// worker drains the backlog once woken instead of taking one job per
// poll.
type Worker struct {
	id           string
	jobService   jobs.Service
	processors   []JobProcessor
	stopChan     chan struct{}
	wg           sync.WaitGroup
	pollInterval time.Duration
}

// NewWorker creates a new worker instance
func NewWorker(id string, jobService jobs.Service, pollInterval time.Duration) *Worker {
	return &Worker{
		id:           id,
		jobService:   jobService,
		stopChan:     make(chan struct{}),
		pollInterval: pollInterval,
	}
}

// RegisterProcessor registers a job processor. Must be called before Start.
func (w *Worker) RegisterProcessor(processor JobProcessor) {
	w.processors = append(w.processors, processor)
}

// Start starts the worker in a goroutine
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop stops the worker after its current job finishes
func (w *Worker) Stop() {
	close(w.stopChan)
	w.wg.Wait()
}

// claimableTypes are the job types some registered processor handles
func (w *Worker) claimableTypes() []models.JobType {
	var types []models.JobType
	seen := make(map[models.JobType]bool)
	for _, p := range w.processors {
		for _, jobType := range []models.JobType{
			models.JobTypeTranscription,
			models.JobTypeEmbed,
			models.JobTypeSplit,
			models.JobTypeDownload,
		} {
			if p.CanProcess(jobType) && !seen[jobType] {
				types = append(types, jobType)
				seen[jobType] = true
			}
		}
	}
	return types
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	types := w.claimableTypes()
	if len(types) == 0 {
		log.Printf("[WARN] Worker %s has no processors registered, not polling", w.id)
		return
	}

	log.Printf("[INFO] Worker %s polling for %v", w.id, types)
	defer log.Printf("[INFO] Worker %s stopped", w.id)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.drainQueue(ctx, types)
		}
	}
}

// drainQueue processes jobs until the queue is empty or the worker is
// asked to stop
func (w *Worker) drainQueue(ctx context.Context, types []models.JobType) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		default:
		}

		claimed, err := w.processOne(ctx, types)
		if err != nil {
			log.Printf("[ERROR] Worker %s: %v", w.id, err)
		}
		if !claimed {
			return
		}
	}
}

// processOne claims and runs a single job. It reports whether a job was
// claimed, so the caller knows when the queue is drained.
func (w *Worker) processOne(ctx context.Context, types []models.JobType) (bool, error) {
	job, err := w.jobService.ClaimNextJob(ctx, w.id, types)
	if err != nil {
		if errors.Is(err, jobs.ErrNoJobsAvailable) {
			return false, nil
		}
		return false, fmt.Errorf("claiming job: %w", err)
	}

	log.Printf("[INFO] Worker %s claimed %s job %d", w.id, job.Type, job.ID)

	processor := w.processorFor(job.Type)
	if processor == nil {
		return true, fmt.Errorf("no processor for claimed job type %s", job.Type)
	}

	if err := processor.ProcessJob(ctx, job); err != nil {
		w.failJob(ctx, job, err)
		return true, fmt.Errorf("job %d failed: %w", job.ID, err)
	}

	log.Printf("[INFO] Worker %s completed job %d", w.id, job.ID)
	return true, nil
}

func (w *Worker) processorFor(jobType models.JobType) JobProcessor {
	for _, p := range w.processors {
		if p.CanProcess(jobType) {
			return p
		}
	}
	return nil
}

// failJob records the failure, keeping the processor's error
// classification when it provided one
func (w *Worker) failJob(ctx context.Context, job *models.Job, procErr error) {
	var structured *models.StructuredJobError
	var failErr error
	if errors.As(procErr, &structured) {
		failErr = w.jobService.FailJobWithDetails(ctx, job.ID, structured.Type, structured.Code, structured.Message, structured.Details)
	} else {
		failErr = w.jobService.FailJob(ctx, job.ID, procErr)
	}
	if failErr != nil {
		log.Printf("[ERROR] Worker %s: failed to record failure of job %d: %v", w.id, job.ID, failErr)
	}
}

// WorkerPool runs a fixed set of workers over the shared queue
type WorkerPool struct {
	workers    []*Worker
	jobService jobs.Service
	mu         sync.Mutex
	started    bool
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(jobService jobs.Service, workerCount int, pollInterval time.Duration) *WorkerPool {
	pool := &WorkerPool{
		jobService: jobService,
		workers:    make([]*Worker, workerCount),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewWorker(fmt.Sprintf("worker-%d", i+1), jobService, pollInterval)
	}

	return pool
}

// RegisterProcessor registers a processor with all workers
func (p *WorkerPool) RegisterProcessor(processor JobProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, worker := range p.workers {
		worker.RegisterProcessor(processor)
	}
}

// Start starts all workers
func (p *WorkerPool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("worker pool already started")
	}

	log.Printf("[INFO] Starting worker pool with %d workers", len(p.workers))

	for _, worker := range p.workers {
		worker.Start(ctx)
	}

	p.started = true
	return nil
}

// Stop stops all workers gracefully
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	for _, worker := range p.workers {
		worker.Stop()
	}

	p.started = false
}
