package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-reader/internal/session"
)

type Handlers struct {
	Upload  *UploadHandler
	Process *ProcessHandler
	Result  *ResultHandler
	Page    *PageHandler
}

// RegisterRoutes mounts the page, its form endpoints and the JSON API.
// Every route runs inside a session.
func RegisterRoutes(app *fiber.App, h Handlers, sessionTTL time.Duration) {
	app.Use(session.Middleware(sessionTTL))

	// Page
	app.Get("/", h.Page.HandleIndex)
	app.Post("/upload", h.Upload.HandleUploadForm)
	app.Post("/process", h.Process.HandleProcessForm)
	app.Post("/runs/:id/cancel", h.Result.HandleCancelForm)

	// API endpoints
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/files", h.Upload.HandleUpload)
	api.Get("/files", h.Upload.HandleListFiles)
	api.Post("/process", h.Process.HandleProcess)
	api.Get("/runs/:id", h.Result.HandleGetRun)
	api.Delete("/runs/:id", h.Result.HandleCancelRun)
	api.Get("/runs/:id/candidates.csv", h.Result.HandleExportCSV)
}
