package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrDocumentOpen is returned when the input is not a readable PDF.
var ErrDocumentOpen = errors.New("failed to open PDF")

type PDFParserService interface {
	ExtractText(filePath string) (string, error)
	ExtractTextFromBytes(data []byte) (string, error)
}

type pdfParserService struct{}

func NewPDFParserService() PDFParserService {
	return &pdfParserService{}
}

// ExtractText implements PDFParserService.
func (p *pdfParserService) ExtractText(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDocumentOpen, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDocumentOpen, err)
	}

	r, err := openReader(f, info.Size())
	if err != nil {
		return "", err
	}

	return extractDocument(r)
}

// ExtractTextFromBytes implements PDFParserService.
func (p *pdfParserService) ExtractTextFromBytes(data []byte) (string, error) {
	r, err := openReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	return extractDocument(r)
}

// The pdf package panics on some malformed inputs instead of returning an
// error, so both stages recover.
func openReader(src io.ReaderAt, size int64) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r = nil
			err = fmt.Errorf("%w: %v", ErrDocumentOpen, rec)
		}
	}()

	reader, err := pdf.NewReader(src, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentOpen, err)
	}

	return reader, nil
}

// extractDocument returns the text of every page in order, followed by the
// URI of every link annotation, one per line.
func extractDocument(r *pdf.Reader) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrDocumentOpen, rec)
		}
	}()

	var textBuilder strings.Builder
	var links []string

	totalPage := r.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", pageIndex, err)
		}

		textBuilder.WriteString(pageText)
		if pageText != "" && !strings.HasSuffix(pageText, "\n") {
			textBuilder.WriteString("\n")
		}

		links = append(links, pageLinks(page)...)
	}

	for _, link := range links {
		textBuilder.WriteString(link)
		textBuilder.WriteString("\n")
	}

	return textBuilder.String(), nil
}

func pageLinks(page pdf.Page) []string {
	var links []string

	annots := page.V.Key("Annots")
	for i := 0; i < annots.Len(); i++ {
		uri := annots.Index(i).Key("A").Key("URI")
		if uri.Kind() != pdf.String {
			continue
		}
		if s := strings.TrimSpace(uri.RawString()); s != "" {
			links = append(links, s)
		}
	}

	return links
}
