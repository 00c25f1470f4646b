package eaf

import (
	"sort"
	"strconv"

	"github.com/hbuschme/TextGridTools/core/annot"
	"github.com/hbuschme/TextGridTools/core/errors"
	"github.com/hbuschme/TextGridTools/core/xml"
)

// annotation is one alignable annotation with its slot references
// resolved to times.
type annotation struct {
	start annot.Time
	end   annot.Time
	text  string
}

// Import parses an EAF annotation document into a grid. Each TIER
// becomes an interval tier; stretches without annotations become empty
// intervals. The grid domain runs from zero to the latest time slot.
// Malformed documents fail with a FormatError.
func Import(data []byte) (*annot.Grid, error) {
	const op = "eaf import"

	doc, err := xml.Parse(data)
	if err != nil {
		return nil, errors.NewFormatf(formatEAF, 0, "%v", err)
	}
	root := doc.Root()
	if root == nil || root.Name() != "ANNOTATION_DOCUMENT" {
		return nil, errors.NewFormat(formatEAF, 0, "not an ELAN annotation document")
	}

	slots, err := readTimeSlots(doc)
	if err != nil {
		return nil, err
	}
	var end annot.Time
	for _, at := range slots {
		if at > end {
			end = at
		}
	}
	if end <= 0 {
		return nil, errors.NewFormat(formatEAF, 0, "document defines no positive time span")
	}

	tierNodes, err := doc.XPath("/ANNOTATION_DOCUMENT/TIER")
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	g, err := annot.NewGrid(0, end)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	for _, tn := range tierNodes {
		name := tn.Attr("TIER_ID")
		if name == "" {
			return nil, errors.NewFormat(formatEAF, 0, "tier without TIER_ID")
		}
		units, err := readAnnotations(tn, slots)
		if err != nil {
			return nil, err
		}
		tier, err := buildTier(name, end, units)
		if err != nil {
			return nil, err
		}
		if err := g.AddTier(tier); err != nil {
			return nil, errors.Wrapf(err, "%s: tier %q", op, name)
		}
	}
	return g, nil
}

// readTimeSlots maps TIME_SLOT_ID to the slot's time in seconds.
func readTimeSlots(doc *xml.Document) (map[string]annot.Time, error) {
	nodes, err := doc.XPath("/ANNOTATION_DOCUMENT/TIME_ORDER/TIME_SLOT")
	if err != nil {
		return nil, errors.Wrap(err, "eaf import")
	}
	slots := make(map[string]annot.Time, len(nodes))
	for _, n := range nodes {
		id := n.Attr("TIME_SLOT_ID")
		if id == "" {
			return nil, errors.NewFormat(formatEAF, 0, "time slot without TIME_SLOT_ID")
		}
		raw := n.Attr("TIME_VALUE")
		if raw == "" {
			return nil, errors.NewFormatf(formatEAF, 0, "time slot %q has no TIME_VALUE", id)
		}
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.NewFormatf(formatEAF, 0, "time slot %q: invalid TIME_VALUE %q", id, raw)
		}
		if ms < 0 {
			return nil, errors.NewFormatf(formatEAF, 0, "time slot %q is negative", id)
		}
		slots[id] = annot.Time(ms) / 1000
	}
	return slots, nil
}

// readAnnotations collects the tier's alignable annotations in start
// order.
func readAnnotations(tier *xml.Node, slots map[string]annot.Time) ([]annotation, error) {
	var units []annotation
	for _, an := range tier.Children() {
		if an.Name() != "ANNOTATION" {
			continue
		}
		for _, al := range an.Children() {
			if al.Name() != "ALIGNABLE_ANNOTATION" {
				continue
			}
			id := al.Attr("ANNOTATION_ID")
			start, ok := slots[al.Attr("TIME_SLOT_REF1")]
			if !ok {
				return nil, errors.NewFormatf(formatEAF, 0, "annotation %q references unknown time slot %q", id, al.Attr("TIME_SLOT_REF1"))
			}
			end, ok := slots[al.Attr("TIME_SLOT_REF2")]
			if !ok {
				return nil, errors.NewFormatf(formatEAF, 0, "annotation %q references unknown time slot %q", id, al.Attr("TIME_SLOT_REF2"))
			}
			if end <= start {
				return nil, errors.NewFormatf(formatEAF, 0, "annotation %q spans [%v, %v], want positive length", id, start, end)
			}
			var text string
			for _, vn := range al.Children() {
				if vn.Name() == "ANNOTATION_VALUE" {
					text = vn.Text()
				}
			}
			units = append(units, annotation{start: start, end: end, text: text})
		}
	}
	sort.Slice(units, func(i, j int) bool {
		if units[i].start != units[j].start {
			return units[i].start < units[j].start
		}
		return units[i].end < units[j].end
	})
	return units, nil
}

// buildTier lays the annotations onto a fresh tier over [0, end],
// filling the stretches between them with empty intervals.
func buildTier(name string, end annot.Time, units []annotation) (*annot.IntervalTier, error) {
	const op = "eaf import"
	tier, err := annot.NewIntervalTier(name, 0, end)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: tier %q", op, name)
	}
	var cursor annot.Time
	for _, u := range units {
		if u.start < cursor {
			return nil, errors.NewFormatf(formatEAF, 0, "tier %q: annotation at %v overlaps the previous annotation ending at %v", name, u.start, cursor)
		}
		if u.start > cursor {
			if err := tier.Add(annot.Interval{Start: cursor, End: u.start}); err != nil {
				return nil, errors.Wrapf(err, "%s: tier %q", op, name)
			}
		}
		if err := tier.Add(annot.Interval{Start: u.start, End: u.end, Text: u.text}); err != nil {
			return nil, errors.Wrapf(err, "%s: tier %q", op, name)
		}
		cursor = u.end
	}
	if cursor < end {
		if err := tier.Add(annot.Interval{Start: cursor, End: end}); err != nil {
			return nil, errors.Wrapf(err, "%s: tier %q", op, name)
		}
	}
	return tier, nil
}
