package locales

// MessagesRuRU содержит русские переводы (язык ответов upstream-сервиса)
var MessagesRuRU = map[string]string{
	// Общие сообщения
	"common.success": "Успешно",
	"common.error":   "Ошибка",

	// Ответы MCP-инструментов
	"mcp.answer_prefix":  "Ответ от 1С.ai:",
	"mcp.explain_prefix": "Объяснение синтаксиса '{{.Element}}':",
	"mcp.check_prefix":   "Проверка кода на {{.CheckType}}:",
	"mcp.session_label":  "Сессия",
	"mcp.conv_label":     "Разговор",

	// Ошибки аргументов MCP-инструментов
	"mcp.err_empty_question": "Ошибка: Вопрос не может быть пустым",
	"mcp.err_empty_syntax":   "Ошибка: Элемент синтаксиса не может быть пустым",
	"mcp.err_empty_code":     "Ошибка: Код для проверки не может быть пустым",

	// Типы проверки кода
	"mcp.check.syntax":      "синтаксические ошибки",
	"mcp.check.logic":       "логические ошибки и потенциальные проблемы",
	"mcp.check.performance": "проблемы производительности и оптимизации",
}
