package report

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/ticolibre/score-cards/internal/models"
	"github.com/ticolibre/score-cards/internal/service/grading"
	"github.com/ticolibre/score-cards/pkg/sanitize"
)

// Геометрия таблицы результатов, мм
const (
	homeworkColWidth = 100
	scoreColWidth    = 50
	tableWidth       = homeworkColWidth + scoreColWidth
	lineHeight       = 10
)

type Renderer interface {
	Render(rec models.StudentRecord, eval models.EvaluationContext) (*models.Report, error)
}

type pdfRenderer struct {
	brand string
	now   func() time.Time
}

func NewRenderer(brand string) Renderer {
	return &pdfRenderer{
		brand: brand,
		now:   time.Now,
	}
}

// Render собирает одностраничный A4-отчёт: шапка с данными оценивания,
// блок студента, таблица домашних заданий, округлённый итоговый балл и
// подвал с отметкой времени на каждой странице.
func (r *pdfRenderer) Render(rec models.StudentRecord, eval models.EvaluationContext) (*models.Report, error) {
	if rec.FirstName == "" || rec.LastName == "" {
		return nil, fmt.Errorf("student record %q is missing a first or last name", rec.Username)
	}

	// Нечисловой итог — ошибка всей пачки, нулём не подменяем
	result, err := strconv.ParseFloat(strings.TrimSpace(rec.RawResult), 64)
	if err != nil {
		return nil, fmt.Errorf("final result %q for student %q is not numeric", rec.RawResult, rec.Username)
	}
	finalResult := grading.RoundToNearestQuarter(result)

	generatedAt := r.now().Format("2006-01-02 15:04:05")

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 11)
		pdf.CellFormat(0, lineHeight, fmt.Sprintf("Report generated by %s on %s", r.brand, generatedAt), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)

	pdf.CellFormat(0, lineHeight, "Evaluation: "+eval.Evaluation, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, lineHeight, "Professor: "+eval.Professor, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, lineHeight, "Course: "+eval.Course, "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.CellFormat(0, lineHeight, "Username: "+rec.Username, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, lineHeight, "Name: "+rec.FullName(), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, lineHeight, "Email: "+rec.Email, "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.CellFormat(0, lineHeight, "Homework Results:", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Таблица центрируется по ширине страницы
	pageWidth, _ := pdf.GetPageSize()
	leftMargin := (pageWidth - tableWidth) / 2

	pdf.SetX(leftMargin)
	pdf.CellFormat(homeworkColWidth, lineHeight, "Homework", "1", 0, "C", false, 0, "")
	pdf.CellFormat(scoreColWidth, lineHeight, "Score", "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 16)
	for _, row := range sortedRows(rec.Homeworks) {
		pdf.SetX(leftMargin)
		pdf.CellFormat(homeworkColWidth, lineHeight, row.name, "1", 0, "C", false, 0, "")
		pdf.CellFormat(scoreColWidth, lineHeight, row.score, "1", 1, "C", false, 0, "")
	}

	pdf.Ln(10)
	pdf.CellFormat(0, lineHeight, "Final Result: "+formatResult(finalResult), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report for %q: %w", rec.Username, err)
	}

	return &models.Report{
		StudentName: rec.FullName(),
		FileName:    fileName(rec),
		Content:     buf.Bytes(),
	}, nil
}

type tableRow struct {
	name  string
	score string
	key   float64
}

// sortedRows нормализует заголовки колонок и сортирует строки по номеру
// задания. Сортировка стабильная: равные номера и нераспознанные заголовки
// остаются в порядке колонок ведомости. Одноимённые задания не сливаются —
// каждая колонка даёт свою строку.
func sortedRows(homeworks []models.HomeworkScore) []tableRow {
	rows := make([]tableRow, len(homeworks))
	for i, hw := range homeworks {
		name, key := grading.CleanHomeworkName(hw.Label)
		rows[i] = tableRow{name: name, score: hw.Score, key: key}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].key < rows[j].key })
	return rows
}

func fileName(rec models.StudentRecord) string {
	base := strings.ReplaceAll(rec.FirstName+"_"+rec.LastName, " ", "_")
	return sanitize.Filename(base + "_report.pdf")
}

func formatResult(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
