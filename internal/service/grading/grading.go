package grading

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// UnknownHomework — отображаемое имя колонки, из которой не удалось извлечь
// номер задания.
const UnknownHomework = "Unknown Homework"

// Заголовки встречаются в форме "Homework 3", "Homework #3", "Homework$$3"
var homeworkPattern = regexp.MustCompile(`Homework\s*(?:\$\$|#)?\s*(\d+)`)

// CleanHomeworkName извлекает из заголовка колонки каноническое имя
// "Homework N" и ключ сортировки. Нераспознанные заголовки получают ключ
// +Inf и уходят в конец таблицы, сохраняя между собой исходный порядок.
func CleanHomeworkName(label string) (string, float64) {
	m := homeworkPattern.FindStringSubmatch(label)
	if m == nil {
		return UnknownHomework, math.Inf(1)
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		// номер не влезает в int
		return UnknownHomework, math.Inf(1)
	}

	return fmt.Sprintf("Homework %d", n), float64(n)
}

// RoundToNearestQuarter округляет итоговый балл до ближайшей четверти.
// На промежуточном значении x*4 действует банковское округление.
func RoundToNearestQuarter(x float64) float64 {
	return math.RoundToEven(x*4) / 4
}
