package textgrid

import (
	"strings"

	"github.com/hbuschme/TextGridTools/core/errors"
)

// Variant selects one of the two textual TextGrid serializations.
type Variant string

const (
	// VariantAuto lets Parse detect the variant from the input. It is not
	// a valid target for Marshal or Write.
	VariantAuto Variant = ""

	// VariantLong is the self-describing "field = value" serialization.
	VariantLong Variant = "long"

	// VariantShort is the positional one-value-per-line serialization.
	VariantShort Variant = "short"
)

var validVariants = map[Variant]bool{
	VariantLong:  true,
	VariantShort: true,
}

// IsValid reports whether v names a concrete serialization variant.
func (v Variant) IsValid() bool {
	return validVariants[v]
}

const (
	fileTypeText      = `File type = "ooTextFile"`
	fileTypeShort     = `File type = "ooTextFile short"`
	fileTypeBinary    = "ooBinaryFile"
	objectClassHeader = `Object class = "TextGrid"`
)

// Format names carried by FormatError values.
const (
	formatAny   = "textgrid"
	formatLong  = "long textgrid"
	formatShort = "short textgrid"
)

// DetectVariant inspects the header and the first declaration line and
// reports which variant the input is written in. A long-variant file
// declares its domain as `xmin = ...`, a short-variant file as a bare
// number. Binary TextGrid files are rejected as unsupported rather than
// misparsed.
func DetectVariant(data []byte) (Variant, error) {
	if strings.HasPrefix(strings.TrimPrefix(string(data), "\uFEFF"), fileTypeBinary) {
		return VariantAuto, errors.NewFormat(formatAny, 0, "binary TextGrid files are not supported")
	}
	sc := newLineScanner(string(data))
	forced, err := expectHeader(sc)
	if err != nil {
		return VariantAuto, err
	}
	if forced.IsValid() {
		return forced, nil
	}
	line, n, ok := sc.nextLine()
	if !ok {
		return VariantAuto, errors.NewFormat(formatAny, sc.lineCount(), "unexpected end of input after header")
	}
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "xmin") {
		return VariantLong, nil
	}
	if len(trimmed) > 0 && (trimmed[0] == '-' || trimmed[0] == '+' || trimmed[0] == '.' || (trimmed[0] >= '0' && trimmed[0] <= '9')) {
		return VariantShort, nil
	}
	return VariantAuto, errors.NewFormatf(formatAny, n, "cannot detect variant from declaration line %q", trimmed)
}

// expectHeader consumes the two fixed header lines. It returns
// VariantShort when the legacy "ooTextFile short" file type forces the
// variant, VariantAuto otherwise.
func expectHeader(sc *lineScanner) (Variant, error) {
	line, n, ok := sc.nextLine()
	if !ok {
		return VariantAuto, errors.NewFormat(formatAny, sc.lineCount(), "empty input")
	}
	forced := VariantAuto
	switch strings.TrimSpace(line) {
	case fileTypeText:
	case fileTypeShort:
		forced = VariantShort
	default:
		return VariantAuto, errors.NewFormatf(formatAny, n, "not a text TextGrid: first line is %q", strings.TrimSpace(line))
	}
	line, n, ok = sc.nextLine()
	if !ok {
		return VariantAuto, errors.NewFormat(formatAny, sc.lineCount(), "unexpected end of input: missing object class line")
	}
	if strings.TrimSpace(line) != objectClassHeader {
		return VariantAuto, errors.NewFormatf(formatAny, n, "not a TextGrid object: %q", strings.TrimSpace(line))
	}
	return forced, nil
}
