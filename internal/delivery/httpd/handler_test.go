package httpd

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ticolibre/score-cards/internal/repository"
	"github.com/ticolibre/score-cards/internal/service"
	"github.com/ticolibre/score-cards/internal/service/report"
)

func newTestRouter(t *testing.T) *chi.Mux {
	return newTestRouterWithConfig(t, HandlerConfig{
		AllowedExtensions: []string{".xlsx", ".xls"},
		MaxUploadSize:     32 << 20,
	})
}

func newTestRouterWithConfig(t *testing.T, cfg HandlerConfig) *chi.Mux {
	t.Helper()

	log := zerolog.Nop()
	uploadStore, err := repository.NewLocalStore(filepath.Join(t.TempDir(), "uploads"), log)
	require.NoError(t, err)
	reportStore, err := repository.NewLocalStore(filepath.Join(t.TempDir(), "reports"), log)
	require.NoError(t, err)

	svc := service.NewReportService(report.NewRenderer("TicoLibre"), reportStore, log)
	handler := NewHandler(svc, uploadStore, reportStore, cfg, log)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func rosterWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func validRoster(t *testing.T) []byte {
	return rosterWorkbook(t, [][]interface{}{
		{"Username", "First name", "Last name", "Email address", "Homework #2", "Homework 1", "Results"},
		{"jdoe", "John", "Doe", "jdoe@example.com", 8, 9.5, 8.63},
		{"alopez", "Ana", "Lopez", "alopez@example.com", 7, "-", 9},
	})
}

func uploadRequest(t *testing.T, fields map[string]string, fileName string, fileContent []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("excel_file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func allFields() map[string]string {
	return map[string]string{
		"evaluation": "Final Evaluation",
		"professor":  "Dr. Vargas",
		"course":     "Databases I",
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestUploadRoster_NoFilePart(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, allFields(), "", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file part", decodeError(t, rec))
}

func TestUploadRoster_NoSelectedFile(t *testing.T) {
	router := newTestRouter(t)

	// браузер при неначатом выборе файла шлёт часть с пустым filename
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range allFields() {
		require.NoError(t, mw.WriteField(k, v))
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="excel_file"; filename=""`)
	header.Set("Content-Type", "application/octet-stream")
	_, err := mw.CreatePart(header)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No selected file", decodeError(t, rec))
}

func TestUploadRoster_BodyTooLarge(t *testing.T) {
	router := newTestRouterWithConfig(t, HandlerConfig{
		AllowedExtensions: []string{".xlsx", ".xls"},
		MaxUploadSize:     512,
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, allFields(), "grades.xlsx", validRoster(t)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "Uploaded file is too large", decodeError(t, rec))
}

func TestUploadRoster_MissingConfiguration(t *testing.T) {
	router := newTestRouter(t)

	fields := allFields()
	delete(fields, "evaluation")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, fields, "grades.xlsx", validRoster(t)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing configuration details", decodeError(t, rec))
}

func TestUploadRoster_InvalidFileType(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, allFields(), "grades.csv", []byte("a,b,c")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid file type", decodeError(t, rec))
}

func TestUploadRoster_GeneratesManifestAndDownload(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, allFields(), "grades.xlsx", validRoster(t)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var manifest []struct {
		Name     string `json:"name"`
		Filename string `json:"filename"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &manifest))
	require.Len(t, manifest, 2)

	assert.Equal(t, "John Doe", manifest[0].Name)
	assert.Equal(t, "John_Doe_report.pdf", manifest[0].Filename)
	assert.Equal(t, "Ana Lopez", manifest[1].Name)

	// круговой маршрут: сгенерированный отчёт доступен по имени из манифеста
	dl := httptest.NewRecorder()
	router.ServeHTTP(dl, httptest.NewRequest(http.MethodGet, "/download/"+manifest[1].Filename, nil))

	assert.Equal(t, http.StatusOK, dl.Code)
	assert.Equal(t, "application/pdf", dl.Header().Get("Content-Type"))
	assert.Contains(t, dl.Header().Get("Content-Disposition"), "attachment")
	assert.True(t, bytes.HasPrefix(dl.Body.Bytes(), []byte("%PDF")))
}

func TestUploadRoster_NonNumericResult(t *testing.T) {
	router := newTestRouter(t)

	roster := rosterWorkbook(t, [][]interface{}{
		{"Username", "First name", "Last name", "Email address", "Homework 1", "Results"},
		{"jdoe", "John", "Doe", "jdoe@example.com", 8, "n/a"},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, allFields(), "grades.xlsx", roster))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeError(t, rec), "not numeric")
}

func TestDownloadReport_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/missing.pdf", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "File not found", decodeError(t, rec))
}

func TestIndex(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "excel_file")
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
