package textgrid

import (
	"io"
	"strings"

	"github.com/hbuschme/TextGridTools/core/annot"
	"github.com/hbuschme/TextGridTools/core/errors"
)

// ParseOptions controls parsing.
type ParseOptions struct {
	// Variant overrides auto-detection. Detection keys on the first
	// declaration line, which hand-edited files can get wrong; leaving
	// the zero value keeps detection on.
	Variant Variant

	// DropZeroLength discards zero-length intervals instead of failing
	// on them. Some annotation tools emit such artifacts at tier
	// boundaries.
	DropZeroLength bool
}

// Parse reads a TextGrid in either variant and returns the Grid it
// describes. Failures carry the offending line number; no partial Grid is
// ever returned.
func Parse(r io.Reader) (*annot.Grid, error) {
	return ParseWithOptions(r, ParseOptions{})
}

// ParseString parses TextGrid text held in memory.
func ParseString(s string) (*annot.Grid, error) {
	return parseText(s, ParseOptions{})
}

// ParseWithOptions reads a TextGrid with explicit options.
func ParseWithOptions(r io.Reader, opts ParseOptions) (*annot.Grid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIO("read textgrid", "", err)
	}
	return parseText(string(data), opts)
}

func parseText(text string, opts ParseOptions) (*annot.Grid, error) {
	if strings.HasPrefix(strings.TrimPrefix(text, "\uFEFF"), fileTypeBinary) {
		return nil, errors.NewFormat(formatAny, 0, "binary TextGrid files are not supported")
	}
	variant := opts.Variant
	if variant == VariantAuto {
		v, err := DetectVariant([]byte(text))
		if err != nil {
			return nil, err
		}
		variant = v
	} else if !variant.IsValid() {
		return nil, errors.NewStructuref("parse textgrid", "unknown variant %q", variant)
	}

	sc := newLineScanner(text)
	if _, err := expectHeader(sc); err != nil {
		return nil, err
	}
	if variant == VariantLong {
		return parseLong(sc, opts)
	}
	return parseShort(sc, opts)
}
