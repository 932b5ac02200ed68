package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ticolibre/score-cards/internal/models"
	"github.com/ticolibre/score-cards/internal/repository"
	"github.com/ticolibre/score-cards/internal/service/report"
	"github.com/ticolibre/score-cards/internal/service/roster"
)

type ReportService interface {
	GenerateReports(ctx context.Context, spreadsheetPath string, eval models.EvaluationContext) ([]models.ReportSummary, error)
}

type reportService struct {
	renderer report.Renderer
	store    repository.FileStore
	logger   zerolog.Logger
}

func NewReportService(renderer report.Renderer, store repository.FileStore, logger zerolog.Logger) ReportService {
	return &reportService{
		renderer: renderer,
		store:    store,
		logger:   logger,
	}
}

// GenerateReports прогоняет каждую строку ведомости через рендерер и кладёт
// готовые документы в хранилище. Ошибка любой строки отменяет весь манифест;
// уже записанные файлы при этом с диска не убираются.
func (s *reportService) GenerateReports(ctx context.Context, spreadsheetPath string, eval models.EvaluationContext) ([]models.ReportSummary, error) {
	rst, err := roster.Load(spreadsheetPath)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ReportSummary, 0, len(rst.Records))
	// Начатая пачка дорабатывается до конца или до первой ошибки,
	// обрыв клиента её не прерывает
	for i, rec := range rst.Records {
		doc, err := s.renderer.Render(rec, eval)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		storedName, err := s.store.Put(doc.FileName, doc.Content)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		s.logger.Info().
			Str("student", doc.StudentName).
			Str("filename", storedName).
			Int("size", len(doc.Content)).
			Msg("Report generated")

		summaries = append(summaries, models.ReportSummary{
			Name:     doc.StudentName,
			Filename: storedName,
		})
	}

	s.logger.Info().
		Int("reports", len(summaries)).
		Str("evaluation", eval.Evaluation).
		Str("course", eval.Course).
		Msg("Roster processed")

	return summaries, nil
}
