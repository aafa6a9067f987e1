package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/cv-reader/internal/models"
	"alfredoptarigan/cv-reader/internal/repositories"
	"alfredoptarigan/cv-reader/internal/services"
	"alfredoptarigan/cv-reader/internal/session"
)

type ResultHandler struct {
	runRepo repositories.RunRepository
	worker  services.Worker
}

func NewResultHandler(runRepo repositories.RunRepository, worker services.Worker) *ResultHandler {
	return &ResultHandler{
		runRepo: runRepo,
		worker:  worker,
	}
}

// HandleGetRun handles GET /api/v1/runs/:id
func (h *ResultHandler) HandleGetRun(c *fiber.Ctx) error {
	run, err := h.findRun(c)
	if err != nil {
		return err
	}

	return c.JSON(runResponse(run))
}

// HandleCancelRun handles DELETE /api/v1/runs/:id
func (h *ResultHandler) HandleCancelRun(c *fiber.Ctx) error {
	run, err := h.findRun(c)
	if err != nil {
		return err
	}

	if run.Status.Done() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": fmt.Sprintf("Run already %s", run.Status),
		})
	}

	if err := h.worker.Cancel(run.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to cancel run",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"id":      run.ID.String(),
		"message": "Cancellation requested",
	})
}

// HandleCancelForm handles POST /runs/:id/cancel from the page.
func (h *ResultHandler) HandleCancelForm(c *fiber.Ctx) error {
	run, err := h.findRun(c)
	if err != nil {
		return redirectWithError(c, "run not found")
	}

	if !run.Status.Done() {
		if err := h.worker.Cancel(run.ID); err != nil {
			return redirectWithError(c, "failed to cancel run")
		}
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleExportCSV handles GET /api/v1/runs/:id/candidates.csv
func (h *ResultHandler) HandleExportCSV(c *fiber.Ctx) error {
	run, err := h.findRun(c)
	if err != nil {
		return err
	}

	list, ok := run.Outcome.(models.CandidateList)
	if run.Status != models.StatusCompleted || !ok {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Run has no candidates to export",
		})
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="candidates-%s.csv"`, run.ID))

	return services.WriteTableCSV(c, services.BuildTable(list.Candidates))
}

// findRun loads the run named in the path. Runs of other sessions are
// reported as not found.
func (h *ResultHandler) findRun(c *fiber.Ctx) (*models.ProcessingRun, error) {
	runID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid run ID format")
	}

	run, err := h.runRepo.FindByID(runID)
	if err != nil || run.SessionID != session.ID(c) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Run not found")
	}

	return run, nil
}

func runResponse(run *models.ProcessingRun) models.RunResponse {
	response := models.RunResponse{
		ID:        run.ID.String(),
		Status:    string(run.Status),
		FileCount: run.FileCount,
	}

	if run.Status == models.StatusCompleted && run.Outcome != nil {
		response.Result = outcomeData(run.Outcome)
	}

	if (run.Status == models.StatusFailed || run.Status == models.StatusCancelled) && run.ErrorMessage != "" {
		msg := run.ErrorMessage
		response.ErrorMessage = &msg
	}

	return response
}

func outcomeData(outcome models.Outcome) *models.OutcomeData {
	data := &models.OutcomeData{Kind: models.OutcomeKind(outcome)}

	switch o := outcome.(type) {
	case models.CandidateList:
		data.Candidates = o.Candidates
		data.Table = services.BuildTable(o.Candidates)
	case models.ReadFailure:
		data.Explanation = o.Explanation
	}

	return data
}
