package handlers

import (
	"errors"
	"log"
	"net/url"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-reader/internal/models"
	"alfredoptarigan/cv-reader/internal/services"
	"alfredoptarigan/cv-reader/internal/session"
)

type UploadHandler struct {
	uploads services.UploadService
}

func NewUploadHandler(uploads services.UploadService) *UploadHandler {
	return &UploadHandler{
		uploads: uploads,
	}
}

// HandleUpload handles POST /api/v1/files
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	var req models.UploadRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	staged, err := h.uploads.StageDataURLs(c.UserContext(), session.ID(c), req.Files)
	if err != nil {
		return uploadError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(filesResponse(staged))
}

// HandleListFiles handles GET /api/v1/files
func (h *UploadHandler) HandleListFiles(c *fiber.Ctx) error {
	files, err := h.uploads.Files(c.UserContext(), session.ID(c))
	if err != nil {
		log.Printf("❌ Failed to list files: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list files",
		})
	}

	return c.JSON(filesResponse(files))
}

// HandleUploadForm handles POST /upload from the page's file input.
func (h *UploadHandler) HandleUploadForm(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return redirectWithError(c, "failed to parse multipart form")
	}

	if _, err := h.uploads.StageMultipart(c.UserContext(), session.ID(c), form.File["files"]); err != nil {
		status, msg := uploadErrorStatus(err)
		if status == fiber.StatusInternalServerError {
			log.Printf("❌ Failed to stage files: %v\n", err)
		}
		return redirectWithError(c, msg)
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

func filesResponse(files []models.UploadedFile) models.FilesResponse {
	summaries := make([]models.FileSummary, 0, len(files))
	for _, f := range files {
		summaries = append(summaries, models.FileSummary{
			Filename:   f.Filename,
			Characters: utf8.RuneCountInString(f.Content),
		})
	}
	return models.FilesResponse{Files: summaries}
}

// uploadErrorStatus maps upload failures to a status code and a message
// that is safe to return.
func uploadErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrUnsupportedFileType):
		return fiber.StatusUnsupportedMediaType, err.Error()
	case errors.Is(err, services.ErrFileTooLarge):
		return fiber.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, services.ErrDocumentOpen):
		return fiber.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, services.ErrInvalidDataURL), errors.Is(err, services.ErrNoFiles):
		return fiber.StatusBadRequest, err.Error()
	default:
		return fiber.StatusInternalServerError, "Failed to stage files"
	}
}

func uploadError(c *fiber.Ctx, err error) error {
	status, msg := uploadErrorStatus(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("❌ Failed to stage files: %v\n", err)
	}

	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

func redirectWithError(c *fiber.Ctx, msg string) error {
	return c.Redirect("/?error="+url.QueryEscape(msg), fiber.StatusSeeOther)
}
