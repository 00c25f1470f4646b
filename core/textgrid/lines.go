package textgrid

import "strings"

// lineScanner walks the physical lines of a TextGrid file, tracking
// 1-based line numbers for error reporting. Blank lines between records
// are skipped; blank lines inside an open quoted label are not, since the
// long variant allows labels to span physical lines.
type lineScanner struct {
	lines []string
	next  int
}

func newLineScanner(text string) *lineScanner {
	text = strings.TrimPrefix(text, "\uFEFF")
	raw := strings.Split(text, "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return &lineScanner{lines: lines}
}

// lineCount returns the total number of physical lines.
func (s *lineScanner) lineCount() int {
	return len(s.lines)
}

// nextLine returns the next non-blank physical line and its line number.
func (s *lineScanner) nextLine() (string, int, bool) {
	for s.next < len(s.lines) {
		line := s.lines[s.next]
		s.next++
		if strings.TrimSpace(line) != "" {
			return line, s.next, true
		}
	}
	return "", 0, false
}

// nextLogicalLine returns the next logical line of the long variant: the
// next non-blank physical line, joined with following physical lines for
// as long as an odd number of quote characters leaves a label open.
// Doubled quotes count as two, so escaping does not upset the balance.
// An unterminated label runs to the end of input and is left unbalanced
// for the grammar to reject.
func (s *lineScanner) nextLogicalLine() (string, int, bool) {
	line, n, ok := s.nextLine()
	if !ok {
		return "", 0, false
	}
	quotes := strings.Count(line, `"`)
	if quotes%2 == 0 {
		return line, n, true
	}
	var b strings.Builder
	b.WriteString(line)
	for s.next < len(s.lines) {
		cont := s.lines[s.next]
		s.next++
		b.WriteString("\n")
		b.WriteString(cont)
		quotes += strings.Count(cont, `"`)
		if quotes%2 == 0 {
			break
		}
	}
	return b.String(), n, true
}
