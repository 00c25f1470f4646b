package textgrid

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/hbuschme/TextGridTools/core/annot"
	"github.com/hbuschme/TextGridTools/core/errors"
)

// Marshal renders g in the given variant. The grid must validate; nothing
// is repaired or filled on the way out, so that parsing the output yields
// a grid structurally equal to g. Timestamps use the shortest decimal
// representation that parses back to the identical value.
func Marshal(g *annot.Grid, variant Variant) ([]byte, error) {
	if !variant.IsValid() {
		return nil, errors.NewStructuref("marshal textgrid", "unknown variant %q", variant)
	}
	if err := g.Validate(); err != nil {
		return nil, errors.Wrap(err, "marshal textgrid")
	}
	if variant == VariantLong {
		return marshalLong(g), nil
	}
	return marshalShort(g)
}

// Write renders g in the given variant to w.
func Write(w io.Writer, g *annot.Grid, variant Variant) error {
	data, err := Marshal(g, variant)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return errors.NewIO("write textgrid", "", err)
	}
	return nil
}

func marshalLong(g *annot.Grid) []byte {
	var buf bytes.Buffer
	buf.WriteString(fileTypeText + "\n")
	buf.WriteString(objectClassHeader + "\n\n")
	fmt.Fprintf(&buf, "xmin = %s\n", g.Start())
	fmt.Fprintf(&buf, "xmax = %s\n", g.End())
	buf.WriteString("tiers? <exists>\n")
	fmt.Fprintf(&buf, "size = %d\n", g.Len())
	buf.WriteString("item []:\n")
	i := 0
	for tier := range g.Tiers() {
		i++
		fmt.Fprintf(&buf, "\titem [%d]:\n", i)
		fmt.Fprintf(&buf, "\t\tclass = %s\n", quoteLabel(string(tier.Class())))
		fmt.Fprintf(&buf, "\t\tname = %s\n", quoteLabel(tier.Name()))
		fmt.Fprintf(&buf, "\t\txmin = %s\n", tier.Start())
		fmt.Fprintf(&buf, "\t\txmax = %s\n", tier.End())
		switch t := tier.(type) {
		case *annot.IntervalTier:
			fmt.Fprintf(&buf, "\t\tintervals: size = %d\n", t.Len())
			j := 0
			for iv := range t.Intervals() {
				j++
				fmt.Fprintf(&buf, "\t\tintervals [%d]:\n", j)
				fmt.Fprintf(&buf, "\t\t\txmin = %s\n", iv.Start)
				fmt.Fprintf(&buf, "\t\t\txmax = %s\n", iv.End)
				fmt.Fprintf(&buf, "\t\t\ttext = %s\n", quoteLabel(iv.Text))
			}
		case *annot.PointTier:
			fmt.Fprintf(&buf, "\t\tpoints: size = %d\n", t.Len())
			j := 0
			for p := range t.Points() {
				j++
				fmt.Fprintf(&buf, "\t\tpoints [%d]:\n", j)
				fmt.Fprintf(&buf, "\t\t\tnumber = %s\n", p.Time)
				fmt.Fprintf(&buf, "\t\t\tmark = %s\n", quoteLabel(p.Text))
			}
		}
	}
	return buf.Bytes()
}

func marshalShort(g *annot.Grid) ([]byte, error) {
	label := func(s, what string) (string, error) {
		if strings.ContainsAny(s, "\n\r") {
			return "", errors.NewFormatf(formatShort, 0, "%s %q contains a newline, which the short variant cannot carry", what, s)
		}
		return quoteLabel(s), nil
	}

	var buf bytes.Buffer
	buf.WriteString(fileTypeText + "\n")
	buf.WriteString(objectClassHeader + "\n\n")
	fmt.Fprintf(&buf, "%s\n%s\n", g.Start(), g.End())
	buf.WriteString("<exists>\n")
	fmt.Fprintf(&buf, "%d\n", g.Len())
	for tier := range g.Tiers() {
		name, err := label(tier.Name(), "tier name")
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "%s\n%s\n%s\n%s\n%d\n",
			quoteLabel(string(tier.Class())), name, tier.Start(), tier.End(), tier.Len())
		switch t := tier.(type) {
		case *annot.IntervalTier:
			for iv := range t.Intervals() {
				text, err := label(iv.Text, "label")
				if err != nil {
					return nil, err
				}
				fmt.Fprintf(&buf, "%s\n%s\n%s\n", iv.Start, iv.End, text)
			}
		case *annot.PointTier:
			for p := range t.Points() {
				mark, err := label(p.Text, "label")
				if err != nil {
					return nil, err
				}
				fmt.Fprintf(&buf, "%s\n%s\n", p.Time, mark)
			}
		}
	}
	return buf.Bytes(), nil
}
