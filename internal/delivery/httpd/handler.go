package httpd

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ticolibre/score-cards/internal/repository"
	"github.com/ticolibre/score-cards/internal/service"
)

//go:embed static/index.html
var indexPage []byte

type Handler struct {
	reportService service.ReportService
	uploadStore   repository.FileStore
	reportStore   repository.FileStore
	allowedExts   map[string]struct{}
	maxUploadSize int64
	logger        zerolog.Logger
}

type HandlerConfig struct {
	AllowedExtensions []string
	MaxUploadSize     int64
}

func NewHandler(
	reportService service.ReportService,
	uploadStore repository.FileStore,
	reportStore repository.FileStore,
	cfg HandlerConfig,
	logger zerolog.Logger,
) *Handler {
	allowed := make(map[string]struct{}, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed[ext] = struct{}{}
	}

	return &Handler{
		reportService: reportService,
		uploadStore:   uploadStore,
		reportStore:   reportStore,
		allowedExts:   allowed,
		maxUploadSize: cfg.MaxUploadSize,
		logger:        logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", h.Index)
	router.Get("/health", h.HealthCheck)
	router.Post("/upload", h.UploadRoster)
	router.Get("/download/{filename}", h.DownloadReport)
}

// Index отдаёт встроенную страницу с формой загрузки ведомости.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(indexPage)
}
