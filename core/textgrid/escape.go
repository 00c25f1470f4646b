package textgrid

import (
	"strings"

	"github.com/hbuschme/TextGridTools/core/errors"
)

// quoteLabel wraps a label in double quotes, doubling any embedded quote
// character per the TextGrid quoting rules.
func quoteLabel(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// unquoteLabel reverses quoteLabel for a token already validated by the
// long-variant lexer: outer quotes stripped, doubled quotes collapsed.
func unquoteLabel(s string) string {
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return strings.ReplaceAll(s, `""`, `"`)
}

// parseQuotedLine extracts the label from one short-variant line. The
// whole value must sit on this line: an unterminated quote means the label
// contained a newline, which the short variant cannot carry, so it is
// rejected rather than silently joined. Doubled quotes unescape to one.
func parseQuotedLine(line string, lineNo int) (string, error) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 2 || trimmed[0] != '"' {
		return "", errors.NewFormatf(formatShort, lineNo, "expected a quoted label, got %q", trimmed)
	}
	var b strings.Builder
	rest := trimmed[1:]
	for i := 0; i < len(rest); i++ {
		if rest[i] != '"' {
			b.WriteByte(rest[i])
			continue
		}
		if i+1 < len(rest) && rest[i+1] == '"' {
			b.WriteByte('"')
			i++
			continue
		}
		if i != len(rest)-1 {
			return "", errors.NewFormatf(formatShort, lineNo, "trailing content after closing quote in %q", trimmed)
		}
		return b.String(), nil
	}
	return "", errors.NewFormatf(formatShort, lineNo, "unterminated label %q: the short variant cannot carry newlines", trimmed)
}
