package textgrid

import (
	"strconv"

	"github.com/hbuschme/TextGridTools/core/annot"
	"github.com/hbuschme/TextGridTools/core/errors"
)

// longReader parses the long variant. The header lines have already been
// consumed when it takes over.
type longReader struct {
	sc   *lineScanner
	opts ParseOptions
}

func parseLong(sc *lineScanner, opts ParseOptions) (*annot.Grid, error) {
	r := &longReader{sc: sc, opts: opts}

	xmin, _, err := r.floatAttr("xmin")
	if err != nil {
		return nil, err
	}
	xmax, xmaxLine, err := r.floatAttr("xmax")
	if err != nil {
		return nil, err
	}
	if xmax < xmin {
		return nil, errors.NewFormatf(formatLong, xmaxLine, "domain end %v before start %v", xmax, xmin)
	}
	if err := r.exists(); err != nil {
		return nil, err
	}
	size, _, err := r.intAttr("size")
	if err != nil {
		return nil, err
	}
	if err := r.itemList(); err != nil {
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
			return nil, errors.NewFormatf(formatLong, headerLine, "%v", err)
		}
	}
	if line, n, ok := r.sc.nextLine(); ok {
		return nil, errors.NewFormatf(formatLong, n, "unexpected content after the last declared tier: %q", line)
	}
	return grid, nil
}

// tier parses one `item [i]:` block and returns the tier together with the
// line number of its opening tag.
func (r *longReader) tier() (annot.Tier, int, error) {
	line, headerLine, err := r.next()
	if err != nil {
		return nil, 0, err
	}
	if !line.isBlockTag("item") {
		return nil, 0, errors.NewFormatf(formatLong, headerLine, "expected a tier block, got %q", line.key())
	}
	class, classLine, err := r.stringAttr("class")
	if err != nil {
		return nil, 0, err
	}
	name, _, err := r.stringAttr("name")
	if err != nil {
		return nil, 0, err
	}
	xmin, _, err := r.floatAttr("xmin")
	if err != nil {
		return nil, 0, err
	}
	xmax, xmaxLine, err := r.floatAttr("xmax")
	if err != nil {
		return nil, 0, err
	}
	if xmax < xmin {
		return nil, 0, errors.NewFormatf(formatLong, xmaxLine, "tier domain end %v before start %v", xmax, xmin)
	}

	sizeLine, sizeLineNo, err := r.next()
	if err != nil {
		return nil, 0, err
	}
	count, err := sizeLine.sizeValue(sizeLineNo)
	if err != nil {
		return nil, 0, err
	}
	kind := sizeLine.key()

	switch annot.Class(class) {
	case annot.ClassInterval:
		if kind != "intervals" {
			return nil, 0, errors.NewFormatf(formatLong, sizeLineNo, "interval tier %q declares %q units", name, kind)
		}
		tier, err := annot.NewIntervalTier(name, annot.Time(xmin), annot.Time(xmax))
		if err != nil {
			return nil, 0, err
		}
		if err := r.readIntervals(tier, count); err != nil {
			return nil, 0, err
		}
		if err := tier.Validate(); err != nil {
			return nil, 0, errors.NewFormatf(formatLong, headerLine, "%v", err)
		}
		return tier, headerLine, nil

	case annot.ClassPoint:
		// Praat declares "points: size" here, but some writers emit
		// "intervals: size" for point tiers as well. Both are accepted.
		if kind != "points" && kind != "intervals" {
			return nil, 0, errors.NewFormatf(formatLong, sizeLineNo, "point tier %q declares %q units", name, kind)
		}
		tier, err := annot.NewPointTier(name, annot.Time(xmin), annot.Time(xmax))
		if err != nil {
			return nil, 0, err
		}
		if err := r.readPoints(tier, count); err != nil {
			return nil, 0, err
		}
		return tier, headerLine, nil
	}
	return nil, 0, errors.NewFormatf(formatLong, classLine, "unknown tier class %q", class)
}

func (r *longReader) readIntervals(tier *annot.IntervalTier, count int) error {
	for j := 0; j < count; j++ {
		line, n, err := r.next()
		if err != nil {
			return err
		}
		if !line.isBlockTag("intervals") {
			return errors.NewFormatf(formatLong, n, "expected an interval block, got %q", line.key())
		}
		xmin, _, err := r.floatAttr("xmin")
		if err != nil {
			return err
		}
		xmax, _, err := r.floatAttr("xmax")
		if err != nil {
			return err
		}
		text, _, err := r.stringAttr("text")
		if err != nil {
			return err
		}
		if r.opts.DropZeroLength && xmin == xmax {
			continue
		}
		iv := annot.Interval{Start: annot.Time(xmin), End: annot.Time(xmax), Text: text}
		if err := tier.Add(iv); err != nil {
			return errors.NewFormatf(formatLong, n, "%v", err)
		}
	}
	return nil
}

func (r *longReader) readPoints(tier *annot.PointTier, count int) error {
	for j := 0; j < count; j++ {
		line, n, err := r.next()
		if err != nil {
			return err
		}
		if !line.isBlockTag("points") {
			return errors.NewFormatf(formatLong, n, "expected a point block, got %q", line.key())
		}
		// Modern Praat names the field "number", legacy files "time".
		at, _, err := r.floatAttrAny("number", "time")
		if err != nil {
			return err
		}
		mark, _, err := r.stringAttr("mark")
		if err != nil {
			return err
		}
		p := annot.Point{Time: annot.Time(at), Text: mark}
		if err := tier.Add(p); err != nil {
			return errors.NewFormatf(formatLong, n, "%v", err)
		}
	}
	return nil
}

// next returns the next logical line, parsed.
func (r *longReader) next() (*longLine, int, error) {
	text, n, ok := r.sc.nextLogicalLine()
	if !ok {
		return nil, 0, errors.NewFormat(formatLong, r.sc.lineCount(), "unexpected end of input")
	}
	line, err := parseLongLine(text, n)
	if err != nil {
		return nil, 0, err
	}
	return line, n, nil
}

func (r *longReader) floatAttr(name string) (float64, int, error) {
	return r.floatAttrAny(name)
}

func (r *longReader) floatAttrAny(names ...string) (float64, int, error) {
	line, n, err := r.next()
	if err != nil {
		return 0, 0, err
	}
	for _, name := range names {
		if line.key() == name && line.Index == nil {
			v, err := line.floatValue(n)
			return v, n, err
		}
	}
	return 0, 0, errors.NewFormatf(formatLong, n, "expected field %q, got %q", names[0], line.key())
}

func (r *longReader) intAttr(name string) (int, int, error) {
	line, n, err := r.next()
	if err != nil {
		return 0, 0, err
	}
	if line.key() != name || line.Index != nil || line.Tail.Value == nil || line.Tail.Value.Num == nil {
		return 0, 0, errors.NewFormatf(formatLong, n, "expected field %q with a count, got %q", name, line.key())
	}
	v, err := strconv.Atoi(*line.Tail.Value.Num)
	if err != nil || v < 0 {
		return 0, 0, errors.NewFormatf(formatLong, n, "malformed count %q in field %q", *line.Tail.Value.Num, name)
	}
	return v, n, nil
}

func (r *longReader) stringAttr(name string) (string, int, error) {
	line, n, err := r.next()
	if err != nil {
		return "", 0, err
	}
	if line.key() != name || line.Index != nil {
		return "", 0, errors.NewFormatf(formatLong, n, "expected field %q, got %q", name, line.key())
	}
	v, err := line.stringValue(n)
	return v, n, err
}

// exists consumes the `tiers? <exists>` line.
func (r *longReader) exists() error {
	line, n, err := r.next()
	if err != nil {
		return err
	}
	if line.key() != "tiers?" || !line.Tail.Exists {
		return errors.NewFormatf(formatLong, n, "expected \"tiers? <exists>\", got %q", line.key())
	}
	return nil
}

// itemList consumes the `item []:` line that opens the tier list.
func (r *longReader) itemList() error {
	line, n, err := r.next()
	if err != nil {
		return err
	}
	if !line.isBlockTag("item") {
		return errors.NewFormatf(formatLong, n, "expected \"item []:\", got %q", line.key())
	}
	return nil
}
