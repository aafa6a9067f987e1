package repositories

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/cv-reader/internal/models"
)

var ErrRunNotFound = errors.New("run not found")

type RunRepository interface {
	Create(run *models.ProcessingRun) error
	FindByID(id uuid.UUID) (*models.ProcessingRun, error)
	FindLatestBySession(sessionID string) (*models.ProcessingRun, error)
	UpdateStatus(id uuid.UUID, status models.RunStatus) error
	UpdateResult(id uuid.UUID, outcome models.Outcome) error
	UpdateError(id uuid.UUID, status models.RunStatus, errorMsg string) error
	DeleteOlderThan(t time.Time) int
}

type runRepository struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]*models.ProcessingRun
}

// NewRunRepository keeps runs in process memory.
func NewRunRepository() RunRepository {
	return &runRepository{runs: make(map[uuid.UUID]*models.ProcessingRun)}
}

func (r *runRepository) Create(run *models.ProcessingRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.runs[run.ID]; exists {
		return fmt.Errorf("failed to create run: %s already exists", run.ID)
	}

	stored := *run
	r.runs[run.ID] = &stored
	return nil
}

func (r *runRepository) FindByID(id uuid.UUID) (*models.ProcessingRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}

	found := *run
	return &found, nil
}

func (r *runRepository) FindLatestBySession(sessionID string) (*models.ProcessingRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *models.ProcessingRun
	for _, run := range r.runs {
		if run.SessionID != sessionID {
			continue
		}
		if latest == nil || run.CreatedAt.After(latest.CreatedAt) {
			latest = run
		}
	}

	if latest == nil {
		return nil, ErrRunNotFound
	}

	found := *latest
	return &found, nil
}

// UpdateStatus moves a run forward. Runs that already finished keep their
// final status.
func (r *runRepository) UpdateStatus(id uuid.UUID, status models.RunStatus) error {
	return r.update(id, func(run *models.ProcessingRun) {
		run.Status = status
	})
}

func (r *runRepository) UpdateResult(id uuid.UUID, outcome models.Outcome) error {
	return r.update(id, func(run *models.ProcessingRun) {
		run.Status = models.StatusCompleted
		run.Outcome = outcome
	})
}

func (r *runRepository) UpdateError(id uuid.UUID, status models.RunStatus, errorMsg string) error {
	return r.update(id, func(run *models.ProcessingRun) {
		run.Status = status
		run.ErrorMessage = errorMsg
	})
}

func (r *runRepository) update(id uuid.UUID, apply func(*models.ProcessingRun)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[id]
	if !ok {
		return ErrRunNotFound
	}
	if run.Status.Done() {
		return nil
	}

	apply(run)
	run.UpdatedAt = time.Now()
	return nil
}

func (r *runRepository) DeleteOlderThan(t time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for id, run := range r.runs {
		if run.Status.Done() && run.UpdatedAt.Before(t) {
			delete(r.runs, id)
			deleted++
		}
	}
	return deleted
}
