package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// The tool-markup vocabulary some IDE clients embed in completions. When the
// upstream stream is cut mid-element the markup arrives with unbalanced
// tags; the repair below closes them. Order matters: innermost tags first,
// outer containers last. This is a narrow heuristic for a fixed vocabulary,
// not a general XML repairer.
var repairTagOrder = []string{
	"suggest",
	"question",
	"result",
	"follow_up",
	"ask_followup_question",
	"attempt_completion",
}

var toolMarkupMarkers = []string{
	"<ask_followup_question",
	"<attempt_completion",
	"<suggest>",
	"<follow_up>",
	"<question>",
	"<result>",
}

var (
	openTagPatterns  = make(map[string]*regexp.Regexp, len(repairTagOrder))
	closeTagPatterns = make(map[string]*regexp.Regexp, len(repairTagOrder))
	anyTagPattern    = regexp.MustCompile(`<\w+[\s/>]`)
)

func init() {
	for _, name := range repairTagOrder {
		openTagPatterns[name] = regexp.MustCompile(fmt.Sprintf(`<%s\b`, name))
		closeTagPatterns[name] = regexp.MustCompile(fmt.Sprintf(`</%s>`, name))
	}
}

// RepairToolMarkup appends missing close tags for the known tool-markup
// vocabulary. Idempotent: balanced input is returned unchanged. Text without
// any recognizable tool markup is left alone.
func RepairToolMarkup(text string) string {
	if !containsToolMarkup(text) {
		return text
	}

	for _, name := range repairTagOrder {
		open := len(openTagPatterns[name].FindAllStringIndex(text, -1))
		closed := len(closeTagPatterns[name].FindAllStringIndex(text, -1))
		if closed < open {
			text += strings.Repeat("</"+name+">", open-closed)
		}
	}
	return text
}

func containsToolMarkup(text string) bool {
	for _, marker := range toolMarkupMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// EnsureToolEnvelope guarantees the text holds exactly one tool block.
// Text that already contains XML-like tags is returned as-is; plain text is
// wrapped wholesale into a single attempt_completion result using a CDATA
// literal section.
func EnsureToolEnvelope(text string) string {
	stripped := strings.TrimSpace(text)
	if stripped == "" {
		return wrapAttemptCompletion("")
	}
	if anyTagPattern.MatchString(stripped) {
		return text
	}
	return wrapAttemptCompletion(text)
}

// escapeCDATA splits any literal "]]>" across two adjacent CDATA sections,
// since the sequence would otherwise terminate the section early.
func escapeCDATA(s string) string {
	return strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>")
}

func wrapAttemptCompletion(body string) string {
	return "<attempt_completion><result><![CDATA[" + escapeCDATA(body) + "]]></result></attempt_completion>"
}
