package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/cv-reader/internal/models"
	"alfredoptarigan/cv-reader/internal/pdftest"
	"alfredoptarigan/cv-reader/internal/repositories"
	"alfredoptarigan/cv-reader/internal/services"
	"alfredoptarigan/cv-reader/internal/session"
	"alfredoptarigan/cv-reader/mocks"
)

type testEnv struct {
	app      *fiber.App
	agent    *mocks.MockCandidateAgent
	sessions repositories.SessionRepository
	runRepo  repositories.RunRepository
	id       string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		agent:    new(mocks.MockCandidateAgent),
		sessions: repositories.NewMemorySessionRepository(),
		runRepo:  repositories.NewRunRepository(),
		id:       session.NewID(),
	}

	uploads := services.NewUploadService(env.sessions, services.NewPDFParserService(), 1<<20)
	extraction := services.NewExtractionService(env.runRepo, env.sessions, env.agent)
	worker := services.NewWorker(env.runRepo, env.sessions, extraction, services.WorkerOptions{
		Concurrency: 1,
		JobTimeout:  time.Second,
	})
	worker.Start(t.Context())
	t.Cleanup(worker.Stop)

	env.app = fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(env.app, Handlers{
		Upload:  NewUploadHandler(uploads),
		Process: NewProcessHandler(extraction, env.runRepo, worker),
		Result:  NewResultHandler(env.runRepo, worker),
		Page:    NewPageHandler(uploads, env.runRepo),
	}, time.Hour)

	return env
}

func (e *testEnv) do(t *testing.T, method, target string, body io.Reader, contentType string) (*http.Response, []byte) {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	req.Header.Set(session.HeaderName, e.id)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (e *testEnv) uploadJSON(t *testing.T, uploads ...models.RawUpload) (*http.Response, []byte) {
	t.Helper()

	payload, err := json.Marshal(models.UploadRequest{Files: uploads})
	require.NoError(t, err)
	return e.do(t, http.MethodPost, "/api/v1/files", bytes.NewReader(payload), fiber.MIMEApplicationJSON)
}

func pdfUpload(name string, lines ...string) models.RawUpload {
	data := pdftest.Build(pdftest.Page{Lines: lines})
	return models.RawUpload{
		Filename: name,
		Contents: "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(data),
	}
}

func (e *testEnv) waitForStatus(t *testing.T, runID string, want models.RunStatus) models.RunResponse {
	t.Helper()

	var run models.RunResponse
	require.Eventually(t, func() bool {
		resp, body := e.do(t, http.MethodGet, "/api/v1/runs/"+runID, nil, "")
		if resp.StatusCode != http.StatusOK {
			return false
		}
		run = models.RunResponse{}
		return json.Unmarshal(body, &run) == nil && run.Status == string(want)
	}, 2*time.Second, 10*time.Millisecond)
	return run
}

func TestUploadFiles(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.uploadJSON(t, pdfUpload("jan.pdf", "Jan Jansen"), pdfUpload("anna.pdf", "Anna Bakker"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var files models.FilesResponse
	require.NoError(t, json.Unmarshal(body, &files))
	require.Len(t, files.Files, 2)
	assert.Equal(t, "jan.pdf", files.Files[0].Filename)
	assert.Greater(t, files.Files[0].Characters, 0)

	resp, body = env.do(t, http.MethodGet, "/api/v1/files", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &files))
	assert.Len(t, files.Files, 2)
}

func TestUploadFiles_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		upload models.RawUpload
		status int
	}{
		{
			name:   "non-pdf",
			upload: models.RawUpload{Filename: "notes.txt", Contents: "data:text/plain;base64,aGVsbG8="},
			status: http.StatusUnsupportedMediaType,
		},
		{
			name:   "broken pdf",
			upload: models.RawUpload{Filename: "broken.pdf", Contents: "data:application/pdf;base64,aGVsbG8="},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "no payload",
			upload: models.RawUpload{Filename: "empty.pdf", Contents: "data:application/pdf;base64"},
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			resp, body := env.uploadJSON(t, pdfUpload("jan.pdf", "Jan Jansen"), tt.upload)
			assert.Equal(t, tt.status, resp.StatusCode, string(body))

			files, err := env.sessions.ListFiles(t.Context(), env.id)
			require.NoError(t, err)
			assert.Empty(t, files, "a rejected upload stages nothing")
		})
	}
}

func TestProcess_NoFilesMakesNoModelRequest(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/v1/process", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.ProcessResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "idle", out.Status)
	require.NotNil(t, out.Table)
	assert.Equal(t, []string{models.PlaceholderCandidate.Name}, out.Table.Columns)

	env.agent.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestProcess_CandidatesFlow(t *testing.T) {
	env := newTestEnv(t)

	candidates := []models.Candidate{
		{Name: "Jan Jansen", Email: "jan@x.nl", Gender: "male*"},
		{Name: "Anna Bakker", University: "Universiteit Utrecht"},
	}
	env.agent.On("Extract", mock.Anything, mock.MatchedBy(func(batch string) bool {
		return strings.Count(batch, services.BeginCVMarker) == 2 &&
			strings.Contains(batch, "Jan Jansen") &&
			strings.Contains(batch, "Anna Bakker")
	})).Return(models.CandidateList{Candidates: candidates}, nil).Once()

	resp, _ := env.uploadJSON(t, pdfUpload("jan.pdf", "Jan Jansen"), pdfUpload("anna.pdf", "Anna Bakker"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/api/v1/process", nil, "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode, string(body))

	var started models.ProcessResponse
	require.NoError(t, json.Unmarshal(body, &started))
	assert.Equal(t, string(models.StatusQueued), started.Status)

	run := env.waitForStatus(t, started.ID, models.StatusCompleted)
	require.NotNil(t, run.Result)
	assert.Equal(t, models.OutcomeCandidates, run.Result.Kind)
	assert.Equal(t, candidates, run.Result.Candidates)
	assert.Equal(t, []string{"Jan Jansen", "Anna Bakker"}, run.Result.Table.Columns)

	resp, body = env.do(t, http.MethodGet, "/api/v1/runs/"+started.ID+"/candidates.csv", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Field", "Jan Jansen", "Anna Bakker"}, records[0])

	resp, body = env.do(t, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := string(body)
	assert.Contains(t, page, "<th>Anna Bakker</th>")
	assert.Contains(t, page, "<td>male*</td>")
	assert.Contains(t, page, "candidates.csv")

	env.agent.AssertExpectations(t)
}

func TestProcess_ReadFailureFlow(t *testing.T) {
	env := newTestEnv(t)
	env.agent.On("Extract", mock.Anything, mock.Anything).
		Return(models.ReadFailure{Explanation: "The documents contain no CV."}, nil).Once()

	resp, _ := env.uploadJSON(t, pdfUpload("noise.pdf", "lorem ipsum"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	_, body := env.do(t, http.MethodPost, "/api/v1/process", nil, "")
	var started models.ProcessResponse
	require.NoError(t, json.Unmarshal(body, &started))

	run := env.waitForStatus(t, started.ID, models.StatusCompleted)
	require.NotNil(t, run.Result)
	assert.Equal(t, models.OutcomeFailure, run.Result.Kind)
	assert.Equal(t, "The documents contain no CV.", run.Result.Explanation)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/runs/"+started.ID+"/candidates.csv", nil, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	_, body = env.do(t, http.MethodGet, "/", nil, "")
	assert.Contains(t, string(body), "Read Failure")
	assert.Contains(t, string(body), "The documents contain no CV.")
}

func TestProcess_ProviderErrorIsSanitized(t *testing.T) {
	env := newTestEnv(t)
	env.agent.On("Extract", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("failed to extract candidates: 429 Too Many Requests: quota exceeded for key sk-secret")).Once()

	env.uploadJSON(t, pdfUpload("jan.pdf", "Jan Jansen"))
	_, body := env.do(t, http.MethodPost, "/api/v1/process", nil, "")
	var started models.ProcessResponse
	require.NoError(t, json.Unmarshal(body, &started))

	run := env.waitForStatus(t, started.ID, models.StatusFailed)
	require.NotNil(t, run.ErrorMessage)
	assert.Equal(t, "quota exceeded", *run.ErrorMessage)
	assert.Nil(t, run.Result)
}

func TestRuns_AreScopedToSession(t *testing.T) {
	env := newTestEnv(t)
	env.agent.On("Extract", mock.Anything, mock.Anything).
		Return(models.ReadFailure{Explanation: "none"}, nil)

	env.uploadJSON(t, pdfUpload("jan.pdf", "Jan Jansen"))
	_, body := env.do(t, http.MethodPost, "/api/v1/process", nil, "")
	var started models.ProcessResponse
	require.NoError(t, json.Unmarshal(body, &started))

	other := *env
	other.id = session.NewID()

	resp, body := other.do(t, http.MethodGet, "/api/v1/runs/"+started.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "Run not found")

	resp, body = other.do(t, http.MethodGet, "/api/v1/files", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var files models.FilesResponse
	require.NoError(t, json.Unmarshal(body, &files))
	assert.Empty(t, files.Files)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/runs/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPage_Empty(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	page := string(body)
	assert.Contains(t, page, "No files uploaded yet.")
	assert.Contains(t, page, `accept="application/pdf"`)
	assert.Contains(t, page, "GO!")
	assert.Contains(t, page, "<th>"+models.PlaceholderCandidate.Name+"</th>")
}

func TestPage_UploadFormRedirects(t *testing.T) {
	env := newTestEnv(t)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="files"; filename="jan.pdf"`)
	h.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(pdftest.Build(pdftest.Page{Lines: []string{"Jan Jansen"}}))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, _ := env.do(t, http.MethodPost, "/upload", body, mw.FormDataContentType())
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	_, page := env.do(t, http.MethodGet, "/", nil, "")
	assert.Contains(t, string(page), "jan.pdf")
	assert.NotContains(t, string(page), "No files uploaded yet.")
}

func TestPage_ProcessFormWithoutFiles(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/process", nil, "")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, err := env.runRepo.FindLatestBySession(env.id)
	assert.ErrorIs(t, err, repositories.ErrRunNotFound)
	env.agent.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestSessions_StayIntactAcrossOtherSessions(t *testing.T) {
	env := newTestEnv(t)
	env.agent.On("Extract", mock.Anything, mock.Anything).
		Return(models.ReadFailure{Explanation: "none"}, nil)

	first := *env
	second := *env
	second.id = session.NewID()

	resp, _ := first.uploadJSON(t, pdfUpload("jan.pdf", "Jan Jansen"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_, body := first.do(t, http.MethodPost, "/api/v1/process", nil, "")
	var started models.ProcessResponse
	require.NoError(t, json.Unmarshal(body, &started))

	for i := 0; i < 3; i++ {
		resp, _ = second.uploadJSON(t, pdfUpload("anna.pdf", "Anna Bakker"))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		second.do(t, http.MethodGet, "/api/v1/files", nil, "")
	}

	files, err := env.sessions.ListFiles(t.Context(), first.id)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "jan.pdf", files[0].Filename)

	files, err = env.sessions.ListFiles(t.Context(), second.id)
	require.NoError(t, err)
	assert.Len(t, files, 3)

	run := first.waitForStatus(t, started.ID, models.StatusCompleted)
	assert.Equal(t, started.ID, run.ID)

	resp, body = first.do(t, http.MethodGet, "/api/v1/files", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed models.FilesResponse
	require.NoError(t, json.Unmarshal(body, &listed))
	assert.Len(t, listed.Files, 1)
}

func TestProcess_EmptyCandidateList(t *testing.T) {
	env := newTestEnv(t)
	env.agent.On("Extract", mock.Anything, mock.Anything).
		Return(models.CandidateList{Candidates: []models.Candidate{}}, nil).Once()

	env.uploadJSON(t, pdfUpload("jan.pdf", "Jan Jansen"))
	_, body := env.do(t, http.MethodPost, "/api/v1/process", nil, "")
	var started models.ProcessResponse
	require.NoError(t, json.Unmarshal(body, &started))

	run := env.waitForStatus(t, started.ID, models.StatusCompleted)
	require.NotNil(t, run.Result)
	assert.Equal(t, models.OutcomeCandidates, run.Result.Kind)
	require.NotNil(t, run.Result.Table)
	assert.Empty(t, run.Result.Table.Columns)

	_, body = env.do(t, http.MethodGet, "/", nil, "")
	page := string(body)
	assert.Contains(t, page, "<h2>Candidates</h2>")
	assert.NotContains(t, page, "<th>"+models.PlaceholderCandidate.Name+"</th>")
	assert.NotContains(t, page, "Read Failure")
}
