package sanitize

import (
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Filename приводит имя файла к безопасному для файловой системы виду:
// компоненты пути отрезаются, пробелы заменяются подчёркиваниями, остальные
// небезопасные символы отбрасываются. Одно и то же преобразование применяется
// при записи файла и при разборе запроса на скачивание, поэтому обход
// каталога через имя невозможен.
func Filename(name string) string {
	// Клиенты с Windows присылают обратные слэши
	name = strings.ReplaceAll(name, "\\", "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}

	// Схлопываем пробельные прогоны в одно подчёркивание
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")

	// Остатки вроде ".." не должны превращаться в скрытые файлы
	return strings.Trim(name, "._")
}
