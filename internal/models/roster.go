package models

// StudentRecord — одна строка загруженной ведомости. Значения оценок хранятся
// как записаны в таблице: числа, текст или "-" для непроверенных работ.
type StudentRecord struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Homeworks []HomeworkScore
	RawResult string
}

type HomeworkScore struct {
	Label string // исходный заголовок колонки
	Score string
}

func (r StudentRecord) FullName() string {
	return r.FirstName + " " + r.LastName
}

// Roster — все строки одной ведомости в исходном порядке. Создаётся один раз
// на запрос загрузки и между запросами не живёт.
type Roster struct {
	Records []StudentRecord
}

// EvaluationContext — три поля формы, общие для всех отчётов одного запроса.
type EvaluationContext struct {
	Evaluation string
	Professor  string
	Course     string
}
