package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/cv-reader/internal/models"
	"alfredoptarigan/cv-reader/internal/repositories"
)

type ExtractionService interface {
	// StartRun snapshots the session's staged files into a queued run. It
	// returns ErrNoFiles, without creating a run, when nothing is staged.
	StartRun(ctx context.Context, sessionID string) (*models.ProcessingRun, error)
	ProcessRun(ctx context.Context, runID uuid.UUID) error
}

type extractionService struct {
	runRepo  repositories.RunRepository
	sessions repositories.SessionRepository
	agent    CandidateAgent
}

func NewExtractionService(
	runRepo repositories.RunRepository,
	sessions repositories.SessionRepository,
	agent CandidateAgent,
) ExtractionService {
	return &extractionService{
		runRepo:  runRepo,
		sessions: sessions,
		agent:    agent,
	}
}

func (e *extractionService) StartRun(ctx context.Context, sessionID string) (*models.ProcessingRun, error) {
	files, err := e.sessions.ListFiles(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load staged files: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	texts := make([]string, 0, len(files))
	for _, f := range files {
		texts = append(texts, f.Content)
	}

	now := time.Now()
	run := &models.ProcessingRun{
		ID:        uuid.New(),
		SessionID: sessionID,
		Status:    models.StatusQueued,
		FileCount: len(files),
		Batch:     BuildBatch(texts),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := e.runRepo.Create(run); err != nil {
		return nil, err
	}

	return run, nil
}

func (e *extractionService) ProcessRun(ctx context.Context, runID uuid.UUID) error {
	run, err := e.runRepo.FindByID(runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}
	if run.Status.Done() {
		log.Printf("⏭️  Run %s already %s, skipping\n", runID, run.Status)
		return nil
	}

	if err := e.runRepo.UpdateStatus(runID, models.StatusProcessing); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	log.Printf("🔄 Starting extraction for run %s (%d files)\n", runID, run.FileCount)

	outcome, err := e.agent.Extract(ctx, run.Batch)
	if err != nil {
		status, msg := models.StatusFailed, SanitizeForClient(err)
		switch {
		case errors.Is(ctx.Err(), context.Canceled):
			status, msg = models.StatusCancelled, "processing was cancelled"
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			msg = "request timed out"
		}
		if uerr := e.runRepo.UpdateError(runID, status, msg); uerr != nil {
			log.Printf("⚠️  Failed to record error for run %s: %v\n", runID, uerr)
		}
		return fmt.Errorf("failed to process run %s: %w", runID, err)
	}

	if err := e.runRepo.UpdateResult(runID, outcome); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	switch o := outcome.(type) {
	case models.CandidateList:
		log.Printf("✅ Run %s completed with %d candidates\n", runID, len(o.Candidates))
	case models.ReadFailure:
		log.Printf("📭 Run %s completed with a read failure: %s\n", runID, o.Explanation)
	}

	return nil
}
