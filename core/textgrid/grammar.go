package textgrid

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/hbuschme/TextGridTools/core/errors"
)

// longLine is the participle grammar for one logical line of the long
// variant. It covers every line shape Praat emits:
//
//	xmin = 0
//	name = "phones"
//	tiers? <exists>
//	item []:
//	intervals [1]:
//	points: size = 3
//
//nolint:govet // participle grammar tags are not standard struct tags
type longLine struct {
	Key   []string   `@Ident+`
	Index *lineIndex `@@?`
	Tail  lineTail   `@@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type lineIndex struct {
	Value *int `"[" @Number? "]"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type lineTail struct {
	Value  *lineValue   `"=" @@`
	Exists bool         `| @Exists`
	Block  *blockClause `| @@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type blockClause struct {
	Colon bool        `@":"`
	Size  *sizeClause `@@?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type sizeClause struct {
	Key   string `@Ident "="`
	Value string `@Number`
}

//nolint:govet // participle grammar tags are not standard struct tags
type lineValue struct {
	Str *string `@String`
	Num *string `| @Number`
}

// longLexer tokenizes long-variant lines. The String pattern admits raw
// newlines and doubled quotes inside a label; Ident swallows the trailing
// question mark of "tiers?".
var longLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(?:[^"]|"")*"`},
	{Name: "Exists", Pattern: `<exists>`},
	{Name: "Number", Pattern: `[-+]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][-+]?\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*\??`},
	{Name: "Punct", Pattern: `[\[\]:=]`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

// longLineParser is the participle parser for long-variant lines.
var longLineParser = participle.MustBuild[longLine](
	participle.Lexer(longLexer),
	participle.Elide("Whitespace"),
)

// parseLongLine parses one logical line, mapping grammar failures to a
// FormatError carrying the physical line number.
func parseLongLine(text string, lineNo int) (*longLine, error) {
	parsed, err := longLineParser.ParseString("", text)
	if err != nil {
		return nil, errors.NewFormatf(formatLong, lineNo, "cannot parse %q: %v", strings.TrimSpace(text), err)
	}
	return parsed, nil
}

// key returns the line's label tokens joined, e.g. "xmin" or "File type".
func (l *longLine) key() string {
	return strings.Join(l.Key, " ")
}

// floatValue returns the numeric value of a `key = number` line.
func (l *longLine) floatValue(lineNo int) (float64, error) {
	if l.Tail.Value == nil || l.Tail.Value.Num == nil {
		return 0, errors.NewFormatf(formatLong, lineNo, "field %q does not carry a numeric value", l.key())
	}
	v, err := strconv.ParseFloat(*l.Tail.Value.Num, 64)
	if err != nil {
		return 0, errors.NewFormatf(formatLong, lineNo, "malformed number %q in field %q", *l.Tail.Value.Num, l.key())
	}
	return v, nil
}

// stringValue returns the unescaped label of a `key = "label"` line.
func (l *longLine) stringValue(lineNo int) (string, error) {
	if l.Tail.Value == nil || l.Tail.Value.Str == nil {
		return "", errors.NewFormatf(formatLong, lineNo, "field %q does not carry a quoted label", l.key())
	}
	return unquoteLabel(*l.Tail.Value.Str), nil
}

// isBlockTag reports whether the line opens an indexed block, e.g.
// `item [1]:` or `intervals [2]:`. The index value itself is not
// significant; Praat numbers blocks sequentially but readers in the wild
// ignore the numbers, and so does this one.
func (l *longLine) isBlockTag(name string) bool {
	return l.key() == name && l.Index != nil && l.Tail.Block != nil && l.Tail.Block.Size == nil
}

// sizeValue returns the declared count of a `kind: size = n` line.
func (l *longLine) sizeValue(lineNo int) (int, error) {
	if l.Index != nil || l.Tail.Block == nil || l.Tail.Block.Size == nil || l.Tail.Block.Size.Key != "size" {
		return 0, errors.NewFormatf(formatLong, lineNo, "expected a size declaration, got %q", l.key())
	}
	n, err := strconv.Atoi(l.Tail.Block.Size.Value)
	if err != nil || n < 0 {
		return 0, errors.NewFormatf(formatLong, lineNo, "malformed count %q in %q", l.Tail.Block.Size.Value, l.key())
	}
	return n, nil
}
