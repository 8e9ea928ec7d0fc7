package locales

// MessagesEnUS English (US) translations
var MessagesEnUS = map[string]string{
	// Common messages
	"common.success": "Success",
	"common.error":   "Error",

	// MCP tool result texts
	"mcp.answer_prefix":  "Answer from 1C.ai:",
	"mcp.explain_prefix": "Explanation of syntax '{{.Element}}':",
	"mcp.check_prefix":   "Code check for {{.CheckType}}:",
	"mcp.session_label":  "Session",
	"mcp.conv_label":     "Conversation",

	// MCP tool argument errors
	"mcp.err_empty_question": "Error: question must not be empty",
	"mcp.err_empty_syntax":   "Error: syntax element must not be empty",
	"mcp.err_empty_code":     "Error: code to check must not be empty",

	// Code check types
	"mcp.check.syntax":      "syntax errors",
	"mcp.check.logic":       "logic errors and potential problems",
	"mcp.check.performance": "performance and optimization problems",
}
