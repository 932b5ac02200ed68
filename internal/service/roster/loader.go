package roster

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ticolibre/score-cards/internal/models"
)

// Первые четыре колонки ведомости — логин, имя, фамилия и почта студента.
// Последняя колонка — итоговый балл, всё между ними — домашние задания.
const identityColumns = 4

// Load читает первый лист книги в Roster. Содержимое ячеек не проверяется —
// только позиционная нарезка колонок; битые данные всплывают дальше,
// при рендеринге отчёта.
func Load(path string) (*models.Roster, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("spreadsheet is empty")
	}

	header := rows[0]
	if len(header) < identityColumns+1 {
		return nil, fmt.Errorf("spreadsheet has %d columns, expected at least %d", len(header), identityColumns+1)
	}

	roster := &models.Roster{}
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}

		// excelize отбрасывает пустые хвостовые ячейки, выравниваем строку
		// по ширине заголовка
		cells := padRow(row, len(header))

		rec := models.StudentRecord{
			Username:  cells[0],
			FirstName: cells[1],
			LastName:  cells[2],
			Email:     cells[3],
			RawResult: cells[len(header)-1],
		}
		for i := identityColumns; i < len(header)-1; i++ {
			rec.Homeworks = append(rec.Homeworks, models.HomeworkScore{
				Label: header[i],
				Score: cells[i],
			})
		}

		roster.Records = append(roster.Records, rec)
	}

	return roster, nil
}

func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
