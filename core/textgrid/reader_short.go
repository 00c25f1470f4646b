package textgrid

import (
	"math"
	"strconv"
	"strings"

	"github.com/hbuschme/TextGridTools/core/annot"
	"github.com/hbuschme/TextGridTools/core/errors"
)

// shortReader parses the positional short variant. Every value sits alone
// on its line, so the reader simply walks the declaration order, naming
// the value it expected whenever a line does not conform.
type shortReader struct {
	sc   *lineScanner
	opts ParseOptions
}

func parseShort(sc *lineScanner, opts ParseOptions) (*annot.Grid, error) {
	r := &shortReader{sc: sc, opts: opts}

	xmin, _, err := r.number("domain start")
	if err != nil {
		return nil, err
	}
	xmax, xmaxLine, err := r.number("domain end")
	if err != nil {
		return nil, err
	}
	if xmax < xmin {
		return nil, errors.NewFormatf(formatShort, xmaxLine, "domain end %v before start %v", xmax, xmin)
	}
	if err := r.exists(); err != nil {
		return nil, err
	}
	size, _, err := r.count("tier count")
	if err != nil {
		return nil, err
	}

	grid, err := annot.NewGrid(annot.Time(xmin), annot.Time(xmax))
	if err != nil {
		return nil, err
	}
	for i := 0; i < size; i++ {
		tier, headerLine, err := r.tier()
		if err != nil {
			return nil, err
		}
		if err := grid.AddTier(tier); err != nil {
			return nil, errors.NewFormatf(formatShort, headerLine, "%v", err)
		}
	}
	if line, n, ok := r.sc.nextLine(); ok {
		return nil, errors.NewFormatf(formatShort, n, "unexpected content after the last declared tier: %q", strings.TrimSpace(line))
	}
	return grid, nil
}

func (r *shortReader) tier() (annot.Tier, int, error) {
	class, classLine, err := r.label("tier class")
	if err != nil {
		return nil, 0, err
	}
	name, _, err := r.label("tier name")
	if err != nil {
		return nil, 0, err
	}
	xmin, _, err := r.number("tier domain start")
	if err != nil {
		return nil, 0, err
	}
	xmax, xmaxLine, err := r.number("tier domain end")
	if err != nil {
		return nil, 0, err
	}
	if xmax < xmin {
		return nil, 0, errors.NewFormatf(formatShort, xmaxLine, "tier domain end %v before start %v", xmax, xmin)
	}
	count, _, err := r.count("unit count")
	if err != nil {
		return nil, 0, err
	}

	switch annot.Class(class) {
	case annot.ClassInterval:
		tier, err := annot.NewIntervalTier(name, annot.Time(xmin), annot.Time(xmax))
		if err != nil {
			return nil, 0, err
		}
		for j := 0; j < count; j++ {
			start, startLine, err := r.number("interval start")
			if err != nil {
				return nil, 0, err
			}
			end, _, err := r.number("interval end")
			if err != nil {
				return nil, 0, err
			}
			text, _, err := r.label("interval text")
			if err != nil {
				return nil, 0, err
			}
			if r.opts.DropZeroLength && start == end {
				continue
			}
			iv := annot.Interval{Start: annot.Time(start), End: annot.Time(end), Text: text}
			if err := tier.Add(iv); err != nil {
				return nil, 0, errors.NewFormatf(formatShort, startLine, "%v", err)
			}
		}
		if err := tier.Validate(); err != nil {
			return nil, 0, errors.NewFormatf(formatShort, classLine, "%v", err)
		}
		return tier, classLine, nil

	case annot.ClassPoint:
		tier, err := annot.NewPointTier(name, annot.Time(xmin), annot.Time(xmax))
		if err != nil {
			return nil, 0, err
		}
		for j := 0; j < count; j++ {
			at, atLine, err := r.number("point time")
			if err != nil {
				return nil, 0, err
			}
			mark, _, err := r.label("point mark")
			if err != nil {
				return nil, 0, err
			}
			p := annot.Point{Time: annot.Time(at), Text: mark}
			if err := tier.Add(p); err != nil {
				return nil, 0, errors.NewFormatf(formatShort, atLine, "%v", err)
			}
		}
		return tier, classLine, nil
	}
	return nil, 0, errors.NewFormatf(formatShort, classLine, "unknown tier class %q", class)
}

func (r *shortReader) line(what string) (string, int, error) {
	line, n, ok := r.sc.nextLine()
	if !ok {
		return "", 0, errors.NewFormatf(formatShort, r.sc.lineCount(), "unexpected end of input: missing %s", what)
	}
	return line, n, nil
}

func (r *shortReader) number(what string) (float64, int, error) {
	line, n, err := r.line(what)
	if err != nil {
		return 0, 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, 0, errors.NewFormatf(formatShort, n, "malformed number %q for %s", strings.TrimSpace(line), what)
	}
	return v, n, nil
}

func (r *shortReader) count(what string) (int, int, error) {
	line, n, err := r.line(what)
	if err != nil {
		return 0, 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || v < 0 {
		return 0, 0, errors.NewFormatf(formatShort, n, "malformed count %q for %s", strings.TrimSpace(line), what)
	}
	return v, n, nil
}

func (r *shortReader) label(what string) (string, int, error) {
	line, n, err := r.line(what)
	if err != nil {
		return "", 0, err
	}
	v, err := parseQuotedLine(line, n)
	if err != nil {
		return "", 0, err
	}
	return v, n, nil
}

func (r *shortReader) exists() error {
	line, n, err := r.line("tier flag")
	if err != nil {
		return err
	}
	if strings.TrimSpace(line) != "<exists>" {
		return errors.NewFormatf(formatShort, n, "expected \"<exists>\", got %q", strings.TrimSpace(line))
	}
	return nil
}
