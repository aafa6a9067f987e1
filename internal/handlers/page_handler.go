package handlers

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-reader/internal/models"
	"alfredoptarigan/cv-reader/internal/repositories"
	"alfredoptarigan/cv-reader/internal/services"
	"alfredoptarigan/cv-reader/internal/session"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type PageHandler struct {
	uploads services.UploadService
	runRepo repositories.RunRepository
}

func NewPageHandler(uploads services.UploadService, runRepo repositories.RunRepository) *PageHandler {
	return &PageHandler{
		uploads: uploads,
		runRepo: runRepo,
	}
}

type pageData struct {
	FlashError  string
	Files       []models.FileSummary
	Processing  bool
	RunID       string
	FileCount   int
	Status      string
	Failure     string
	RunError    string
	Table       *models.TableData
	Placeholder bool
	CSVURL      string
}

// HandleIndex handles GET /
func (h *PageHandler) HandleIndex(c *fiber.Ctx) error {
	sessionID := session.ID(c)

	files, err := h.uploads.Files(c.UserContext(), sessionID)
	if err != nil {
		return err
	}

	data := pageData{
		FlashError: c.Query("error"),
		Files:      filesResponse(files).Files,
	}

	run, err := h.runRepo.FindLatestBySession(sessionID)
	switch {
	case errors.Is(err, repositories.ErrRunNotFound):
		run = nil
	case err != nil:
		return err
	}
	fillRunState(&data, run)

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		log.Printf("❌ Failed to render page: %v\n", err)
		return err
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

// fillRunState shows the latest run: in progress, its candidates, its read
// failure or its error. Without a finished candidate list the placeholder
// table is shown.
func fillRunState(data *pageData, run *models.ProcessingRun) {
	if run != nil {
		data.RunID = run.ID.String()
		data.FileCount = run.FileCount
		data.Status = string(run.Status)
		data.Processing = !run.Status.Done()

		switch run.Status {
		case models.StatusCompleted:
			switch o := run.Outcome.(type) {
			case models.CandidateList:
				data.Table = services.BuildTable(o.Candidates)
				data.CSVURL = "/api/v1/runs/" + data.RunID + "/candidates.csv"
				return
			case models.ReadFailure:
				data.Failure = o.Explanation
			}
		case models.StatusFailed, models.StatusCancelled:
			data.RunError = run.ErrorMessage
		}
	}

	data.Table = services.PlaceholderTable()
	data.Placeholder = true
}
