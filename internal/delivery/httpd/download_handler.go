package httpd

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ticolibre/score-cards/internal/repository"
	"github.com/ticolibre/score-cards/pkg/sanitize"
)

// DownloadReport отдаёт ранее сгенерированный отчёт как attachment.
// Имя из запроса заново очищается внутри хранилища, так что наружу уходит
// либо файл из каталога отчётов, либо 404.
func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	requested := chi.URLParam(r, "filename")

	content, err := h.reportStore.Get(requested)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "File not found")
			return
		}
		h.logger.Error().Err(err).Str("filename", requested).Msg("Failed to read report")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+sanitize.Filename(requested)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}
