package models

// Report — отрендеренный документ одного студента вместе с метаданными.
// После записи в хранилище не меняется.
type Report struct {
	StudentName string
	FileName    string
	Content     []byte
}

// ReportSummary — элемент манифеста в ответе на загрузку ведомости.
type ReportSummary struct {
	Name     string `json:"name"`
	Filename string `json:"filename"`
}
