package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"strings"
	"time"

	"alfredoptarigan/cv-reader/internal/models"
	"alfredoptarigan/cv-reader/internal/repositories"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type, please upload a PDF")
	ErrInvalidDataURL      = errors.New("invalid data URL")
	ErrFileTooLarge        = errors.New("file too large")
	ErrNoFiles             = errors.New("no files uploaded")
)

// CheckContentType accepts any declared media type mentioning pdf.
func CheckContentType(contentType string) error {
	if !strings.Contains(strings.ToLower(contentType), "pdf") {
		return fmt.Errorf("%w: %q", ErrUnsupportedFileType, contentType)
	}
	return nil
}

// DecodeDataURL decodes "data:<content-type>;base64,<payload>". The content
// type is checked before anything is decoded.
func DecodeDataURL(contents string) ([]byte, error) {
	contentType, payload, ok := strings.Cut(contents, ",")
	if !ok {
		return nil, fmt.Errorf("%w: missing payload separator", ErrInvalidDataURL)
	}

	if err := CheckContentType(contentType); err != nil {
		return nil, err
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}

	return decoded, nil
}

type UploadService interface {
	StageDataURLs(ctx context.Context, sessionID string, uploads []models.RawUpload) ([]models.UploadedFile, error)
	StageMultipart(ctx context.Context, sessionID string, headers []*multipart.FileHeader) ([]models.UploadedFile, error)
	Files(ctx context.Context, sessionID string) ([]models.UploadedFile, error)
}

type uploadService struct {
	sessions    repositories.SessionRepository
	pdfParser   PDFParserService
	maxFileSize int64
	now         func() time.Time
}

func NewUploadService(sessions repositories.SessionRepository, pdfParser PDFParserService, maxFileSize int64) UploadService {
	return &uploadService{
		sessions:    sessions,
		pdfParser:   pdfParser,
		maxFileSize: maxFileSize,
		now:         time.Now,
	}
}

type decodedFile struct {
	filename string
	data     []byte
}

// StageDataURLs implements UploadService. Every upload is decoded and
// checked before any of them is parsed, so one bad file rejects the batch.
func (s *uploadService) StageDataURLs(ctx context.Context, sessionID string, uploads []models.RawUpload) ([]models.UploadedFile, error) {
	if len(uploads) == 0 {
		return nil, ErrNoFiles
	}

	decoded := make([]decodedFile, 0, len(uploads))
	for _, upload := range uploads {
		data, err := DecodeDataURL(upload.Contents)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", upload.Filename, err)
		}
		if err := s.checkSize(upload.Filename, int64(len(data))); err != nil {
			return nil, err
		}
		decoded = append(decoded, decodedFile{filename: upload.Filename, data: data})
	}

	return s.stage(ctx, sessionID, decoded)
}

// StageMultipart implements UploadService.
func (s *uploadService) StageMultipart(ctx context.Context, sessionID string, headers []*multipart.FileHeader) ([]models.UploadedFile, error) {
	if len(headers) == 0 {
		return nil, ErrNoFiles
	}

	for _, header := range headers {
		if err := CheckContentType(header.Header.Get("Content-Type")); err != nil {
			return nil, fmt.Errorf("%s: %w", header.Filename, err)
		}
		if err := s.checkSize(header.Filename, header.Size); err != nil {
			return nil, err
		}
	}

	decoded := make([]decodedFile, 0, len(headers))
	for _, header := range headers {
		data, err := readFileHeader(header)
		if err != nil {
			return nil, err
		}
		decoded = append(decoded, decodedFile{filename: header.Filename, data: data})
	}

	return s.stage(ctx, sessionID, decoded)
}

// Files implements UploadService.
func (s *uploadService) Files(ctx context.Context, sessionID string) ([]models.UploadedFile, error) {
	return s.sessions.ListFiles(ctx, sessionID)
}

func (s *uploadService) checkSize(filename string, size int64) error {
	if s.maxFileSize > 0 && size > s.maxFileSize {
		return fmt.Errorf("%s: %w (max %d bytes)", filename, ErrFileTooLarge, s.maxFileSize)
	}
	return nil
}

func (s *uploadService) stage(ctx context.Context, sessionID string, decoded []decodedFile) ([]models.UploadedFile, error) {
	files := make([]models.UploadedFile, 0, len(decoded))
	for _, d := range decoded {
		text, err := s.pdfParser.ExtractTextFromBytes(d.data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.filename, err)
		}

		files = append(files, models.UploadedFile{
			Filename:   d.filename,
			Content:    text,
			UploadedAt: s.now(),
		})
		log.Printf("📄 Extracted %d characters from %s\n", len(text), d.filename)
	}

	staged, err := s.sessions.AddFiles(ctx, sessionID, files)
	if err != nil {
		return nil, fmt.Errorf("failed to stage files: %w", err)
	}

	return staged, nil
}

func readFileHeader(header *multipart.FileHeader) ([]byte, error) {
	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return data, nil
}
