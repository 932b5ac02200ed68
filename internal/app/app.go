package app

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/ticolibre/score-cards/internal/config"
	"github.com/ticolibre/score-cards/internal/delivery/httpd"
	"github.com/ticolibre/score-cards/internal/repository"
	"github.com/ticolibre/score-cards/internal/service"
	"github.com/ticolibre/score-cards/internal/service/report"
)

type App struct {
	server *http.Server
	logger zerolog.Logger
	config *config.Config
}

func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	// Два каталога сервиса: staging загрузок и готовые отчёты
	uploadStore, err := repository.NewLocalStore(cfg.Storage.UploadDir, log)
	if err != nil {
		return nil, err
	}
	reportStore, err := repository.NewLocalStore(cfg.Storage.ReportsDir, log)
	if err != nil {
		return nil, err
	}

	renderer := report.NewRenderer(cfg.Reports.FooterBrand)
	reportService := service.NewReportService(renderer, reportStore, log)

	handler := httpd.NewHandler(
		reportService,
		uploadStore,
		reportStore,
		httpd.HandlerConfig{
			AllowedExtensions: cfg.Reports.AllowedExtensions,
			MaxUploadSize:     cfg.Server.MaxUploadSize,
		},
		log,
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(httpd.RequestLogger(log))
	router.Use(httpd.Recovery(log))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server: server,
		logger: log,
		config: cfg,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info().Msgf("Starting score cards service on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down score cards service...")
	return a.server.Shutdown(ctx)
}
