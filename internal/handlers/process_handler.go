package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-reader/internal/models"
	"alfredoptarigan/cv-reader/internal/repositories"
	"alfredoptarigan/cv-reader/internal/services"
	"alfredoptarigan/cv-reader/internal/session"
)

type ProcessHandler struct {
	extraction services.ExtractionService
	runRepo    repositories.RunRepository
	worker     services.Worker
}

func NewProcessHandler(
	extraction services.ExtractionService,
	runRepo repositories.RunRepository,
	worker services.Worker,
) *ProcessHandler {
	return &ProcessHandler{
		extraction: extraction,
		runRepo:    runRepo,
		worker:     worker,
	}
}

// HandleProcess handles POST /api/v1/process
func (h *ProcessHandler) HandleProcess(c *fiber.Ctx) error {
	run, err := h.startRun(c)
	if errors.Is(err, services.ErrNoFiles) {
		return c.JSON(models.ProcessResponse{
			Status: "idle",
			Table:  services.PlaceholderTable(),
		})
	}
	if errors.Is(err, services.ErrQueueFull) || errors.Is(err, services.ErrWorkerStopped) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to start processing",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(models.ProcessResponse{
		ID:     run.ID.String(),
		Status: string(run.Status),
	})
}

// HandleProcessForm handles POST /process from the page's GO! button.
func (h *ProcessHandler) HandleProcessForm(c *fiber.Ctx) error {
	_, err := h.startRun(c)
	switch {
	case err == nil, errors.Is(err, services.ErrNoFiles):
		return c.Redirect("/", fiber.StatusSeeOther)
	case errors.Is(err, services.ErrQueueFull), errors.Is(err, services.ErrWorkerStopped):
		return redirectWithError(c, err.Error())
	default:
		return redirectWithError(c, "failed to start processing")
	}
}

// startRun creates a run from the session's staged files and hands it to
// the worker. Nothing is sent to the model when no files are staged.
func (h *ProcessHandler) startRun(c *fiber.Ctx) (*models.ProcessingRun, error) {
	run, err := h.extraction.StartRun(c.UserContext(), session.ID(c))
	if err != nil {
		if !errors.Is(err, services.ErrNoFiles) {
			log.Printf("❌ Failed to create run: %v\n", err)
		}
		return nil, err
	}

	if err := h.worker.EnqueueJob(run.ID); err != nil {
		log.Printf("❌ Failed to enqueue run %s: %v\n", run.ID, err)
		if uerr := h.runRepo.UpdateError(run.ID, models.StatusFailed, err.Error()); uerr != nil {
			log.Printf("⚠️  Failed to record error for run %s: %v\n", run.ID, uerr)
		}
		return nil, err
	}

	return run, nil
}
