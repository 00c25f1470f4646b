package annot

import (
	"fmt"
	"iter"
	"sort"

	"github.com/hbuschme/TextGridTools/core/errors"
)

// IntervalTier is an ordered sequence of contiguous, non-overlapping
// labeled intervals on the time domain [Start, End].
type IntervalTier struct {
	name      string
	start     Time
	end       Time
	intervals []Interval
}

// NewIntervalTier creates an empty interval tier with the given name and
// time domain. The domain must satisfy start <= end.
func NewIntervalTier(name string, start, end Time) (*IntervalTier, error) {
	if start > end {
		return nil, errors.NewStructuref("new interval tier", "domain start %v after end %v", start, end)
	}
	return &IntervalTier{name: name, start: start, end: end}, nil
}

// Name returns the tier name.
func (t *IntervalTier) Name() string { return t.name }

// SetName renames the tier.
func (t *IntervalTier) SetName(name string) { t.name = name }

// Class returns ClassInterval.
func (t *IntervalTier) Class() Class { return ClassInterval }

// Start returns the lower bound of the tier's domain.
func (t *IntervalTier) Start() Time { return t.start }

// End returns the upper bound of the tier's domain.
func (t *IntervalTier) End() Time { return t.end }

// Len returns the number of intervals.
func (t *IntervalTier) Len() int { return len(t.intervals) }

// At returns the i-th interval in time order. It panics if i is out of
// range, like slice indexing.
func (t *IntervalTier) At(i int) Interval { return t.intervals[i] }

// Add inserts an interval, keeping the tier sorted by start time. The
// interval must have positive length, lie within the tier's domain, and
// exactly abut any neighboring interval already present: an overlap or a
// new gap is rejected with a StructureError. The first interval may sit
// anywhere in the domain, so tiers can be built in any temporal order as
// long as they grow as one contiguous run.
func (t *IntervalTier) Add(iv Interval) error {
	const op = "add interval"
	if iv.Start >= iv.End {
		return errors.NewStructuref(op, "interval [%v, %v] has no positive length", iv.Start, iv.End)
	}
	if iv.Start < t.start || iv.End > t.end {
		return errors.NewStructuref(op, "interval [%v, %v] outside tier domain [%v, %v]", iv.Start, iv.End, t.start, t.end)
	}
	i := sort.Search(len(t.intervals), func(i int) bool { return t.intervals[i].Start >= iv.Start })
	if i > 0 {
		if left := t.intervals[i-1]; left.End != iv.Start {
			if left.End > iv.Start {
				return errors.NewStructuref(op, "interval [%v, %v] overlaps [%v, %v]", iv.Start, iv.End, left.Start, left.End)
			}
			return errors.NewStructuref(op, "gap between [%v, %v] and [%v, %v]", left.Start, left.End, iv.Start, iv.End)
		}
	}
	if i < len(t.intervals) {
		if right := t.intervals[i]; iv.End != right.Start {
			if iv.End > right.Start {
				return errors.NewStructuref(op, "interval [%v, %v] overlaps [%v, %v]", iv.Start, iv.End, right.Start, right.End)
			}
			return errors.NewStructuref(op, "gap between [%v, %v] and [%v, %v]", iv.Start, iv.End, right.Start, right.End)
		}
	}
	t.intervals = append(t.intervals, Interval{})
	copy(t.intervals[i+1:], t.intervals[i:])
	t.intervals[i] = iv
	return nil
}

// IntervalAt returns the interval containing time at. Containment is
// half-open: an interval covers [Start, End), so at the domain end and
// inside coverage gaps the lookup fails with a NotFoundError, as it does
// for any at outside the tier's domain.
func (t *IntervalTier) IntervalAt(at Time) (Interval, error) {
	if at < t.start || at > t.end {
		return Interval{}, errors.NewNotFound("interval", fmt.Sprintf("at %v, outside tier domain [%v, %v]", at, t.start, t.end))
	}
	i := sort.Search(len(t.intervals), func(i int) bool { return t.intervals[i].End > at })
	if i < len(t.intervals) && t.intervals[i].Start <= at {
		return t.intervals[i], nil
	}
	return Interval{}, errors.NewNotFound("interval", fmt.Sprintf("at %v", at))
}

// Between iterates, in time order, the intervals with a positive-length
// intersection with [from, to]. The sequence is restartable; the tier must
// not be mutated while iterating.
func (t *IntervalTier) Between(from, to Time) iter.Seq[Interval] {
	return func(yield func(Interval) bool) {
		i := sort.Search(len(t.intervals), func(i int) bool { return t.intervals[i].End > from })
		for ; i < len(t.intervals); i++ {
			if t.intervals[i].Start >= to {
				return
			}
			if !yield(t.intervals[i]) {
				return
			}
		}
	}
}

// Intervals iterates all intervals in time order.
func (t *IntervalTier) Intervals() iter.Seq[Interval] {
	return func(yield func(Interval) bool) {
		for _, iv := range t.intervals {
			if !yield(iv) {
				return
			}
		}
	}
}

// Spans iterates all intervals as class-independent spans.
func (t *IntervalTier) Spans() iter.Seq[Span] {
	return func(yield func(Span) bool) {
		for _, iv := range t.intervals {
			if !yield(Span{Start: iv.Start, End: iv.End, Text: iv.Text}) {
				return
			}
		}
	}
}

// Validate checks the invariants of a complete tier: at least one interval
// (unless the domain has zero width), the first starting at the domain
// start, the last ending at the domain end, and consecutive intervals
// exactly abutting. Serialization requires a valid tier.
func (t *IntervalTier) Validate() error {
	const op = "validate interval tier"
	if len(t.intervals) == 0 {
		if t.start == t.end {
			return nil
		}
		return errors.NewStructuref(op, "tier %q covers none of its domain [%v, %v]", t.name, t.start, t.end)
	}
	if first := t.intervals[0]; first.Start != t.start {
		return errors.NewStructuref(op, "tier %q starts at %v, domain starts at %v", t.name, first.Start, t.start)
	}
	if last := t.intervals[len(t.intervals)-1]; last.End != t.end {
		return errors.NewStructuref(op, "tier %q ends at %v, domain ends at %v", t.name, last.End, t.end)
	}
	for i, iv := range t.intervals {
		if iv.Start >= iv.End {
			return errors.NewStructuref(op, "interval [%v, %v] has no positive length", iv.Start, iv.End)
		}
		if i == 0 {
			continue
		}
		prev := t.intervals[i-1]
		if prev.End != iv.Start {
			if prev.End > iv.Start {
				return errors.NewStructuref(op, "interval [%v, %v] overlaps [%v, %v]", iv.Start, iv.End, prev.Start, prev.End)
			}
			return errors.NewStructuref(op, "gap between [%v, %v] and [%v, %v]", prev.Start, prev.End, iv.Start, iv.End)
		}
	}
	return nil
}

// Crop returns a new tier restricted to [from, to]. The window must have
// positive length; the new domain is the window clamped to the tier's
// domain. CropStrict keeps only fully-inside intervals, CropLax also keeps
// boundary intervals clipped to the window. Cropping is idempotent.
func (t *IntervalTier) Crop(from, to Time, mode CropMode) (Tier, error) {
	if !mode.IsValid() {
		return nil, errors.NewStructuref("crop", "unknown crop mode %q", mode)
	}
	if from >= to {
		return nil, errors.NewStructuref("crop", "window [%v, %v] has no positive length", from, to)
	}
	s, e := max(from, t.start), min(to, t.end)
	if s > e {
		// Window and domain are disjoint: degenerate tier at the nearer edge.
		if to <= t.start {
			s, e = t.start, t.start
		} else {
			s, e = t.end, t.end
		}
	}
	out := &IntervalTier{name: t.name, start: s, end: e}
	for iv := range t.Between(from, to) {
		if mode == CropStrict && (iv.Start < s || iv.End > e) {
			continue
		}
		clipped := Interval{Start: max(iv.Start, s), End: min(iv.End, e), Text: iv.Text}
		if clipped.Start >= clipped.End {
			continue
		}
		out.intervals = append(out.intervals, clipped)
	}
	return out, nil
}

// Shift returns a copy with the domain and all intervals moved by delta.
func (t *IntervalTier) Shift(delta Time) Tier {
	out := &IntervalTier{name: t.name, start: t.start + delta, end: t.end + delta, intervals: make([]Interval, len(t.intervals))}
	for i, iv := range t.intervals {
		out.intervals[i] = Interval{Start: iv.Start + delta, End: iv.End + delta, Text: iv.Text}
	}
	return out
}

// Merge returns a new tier spanning both domains, keeping the receiver's
// name. The domains must not overlap; adjacent or gapped domains are fine,
// a gap simply leaves the result incomplete until FillGaps. Overlapping
// domains fail with an OverlapError.
func (t *IntervalTier) Merge(other *IntervalTier) (*IntervalTier, error) {
	if t.start < other.end && other.start < t.end {
		return nil, errors.NewOverlap("merge tiers",
			fmt.Sprintf("domain [%v, %v] overlaps [%v, %v]", t.start, t.end, other.start, other.end))
	}
	first, second := t, other
	if other.start < t.start {
		first, second = other, t
	}
	out := &IntervalTier{
		name:      t.name,
		start:     first.start,
		end:       max(first.end, second.end),
		intervals: make([]Interval, 0, len(t.intervals)+len(other.intervals)),
	}
	out.intervals = append(out.intervals, first.intervals...)
	out.intervals = append(out.intervals, second.intervals...)
	return out, nil
}

// FillGaps returns a copy in which every coverage gap, including leading
// and trailing gaps against the domain, is filled with an empty-text
// interval. The result of FillGaps on any tier validates.
func (t *IntervalTier) FillGaps() *IntervalTier {
	out := &IntervalTier{name: t.name, start: t.start, end: t.end}
	cursor := t.start
	for _, iv := range t.intervals {
		if iv.Start > cursor {
			out.intervals = append(out.intervals, Interval{Start: cursor, End: iv.Start})
		}
		out.intervals = append(out.intervals, iv)
		cursor = iv.End
	}
	if cursor < t.end {
		out.intervals = append(out.intervals, Interval{Start: cursor, End: t.end})
	}
	return out
}

// Copy returns a deep copy of the tier.
func (t *IntervalTier) Copy() Tier {
	out := &IntervalTier{name: t.name, start: t.start, end: t.end, intervals: make([]Interval, len(t.intervals))}
	copy(out.intervals, t.intervals)
	return out
}
