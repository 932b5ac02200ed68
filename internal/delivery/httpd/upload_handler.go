package httpd

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ticolibre/score-cards/internal/models"
)

// UploadRoster принимает multipart-форму с ведомостью и тремя текстовыми
// полями, генерирует отчёт по каждой строке и возвращает манифест.
// Валидация идёт строго до начала обработки: любой отказ — 400 без побочных
// эффектов.
func (h *Handler) UploadRoster(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		// multipart-парсер не всегда оборачивает ошибку чтения через %w
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			writeError(w, http.StatusRequestEntityTooLarge, "Uploaded file is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "No file part")
		return
	}

	files := r.MultipartForm.File["excel_file"]
	// Часть с filename="" (форма отправлена без выбранного файла) парсер
	// кладёт в Value, а не в File — это не то же самое, что отсутствие поля
	_, sentWithoutName := r.MultipartForm.Value["excel_file"]
	if len(files) == 0 && !sentWithoutName {
		writeError(w, http.StatusBadRequest, "No file part")
		return
	}

	eval := models.EvaluationContext{
		Evaluation: r.FormValue("evaluation"),
		Professor:  r.FormValue("professor"),
		Course:     r.FormValue("course"),
	}
	if eval.Evaluation == "" || eval.Professor == "" || eval.Course == "" {
		writeError(w, http.StatusBadRequest, "Missing configuration details")
		return
	}

	if len(files) == 0 || files[0].Filename == "" {
		writeError(w, http.StatusBadRequest, "No selected file")
		return
	}
	fileHeader := files[0]

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if _, ok := h.allowedExts[ext]; !ok {
		writeError(w, http.StatusBadRequest, "Invalid file type")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to open uploaded file")
		writeError(w, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read uploaded file")
		writeError(w, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}

	stagedName, err := h.uploadStore.Put(stagingName(fileHeader.Filename), content)
	if err != nil {
		h.logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to stage upload")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	stagedPath, err := h.uploadStore.Resolve(stagedName)
	if err != nil {
		h.logger.Error().Err(err).Str("filename", stagedName).Msg("Staged upload disappeared")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	manifest, err := h.reportService.GenerateReports(r.Context(), stagedPath, eval)
	if err != nil {
		h.logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Report generation failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, manifest)
}

// stagingName делает имя staging-копии уникальным, чтобы параллельные
// загрузки одноимённых ведомостей не перезаписывали друг друга.
func stagingName(original string) string {
	ext := filepath.Ext(original)
	name := strings.TrimSuffix(original, ext)

	return fmt.Sprintf("%s_%d_%s%s", name, time.Now().UnixNano(), uuid.New().String()[:8], ext)
}
