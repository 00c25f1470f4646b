package annot

import (
	"fmt"
	"iter"
	"sort"

	"github.com/hbuschme/TextGridTools/core/errors"
)

// PointTier is an ordered set of labeled points with strictly increasing
// times on the time domain [Start, End]. Points need not cover the domain.
type PointTier struct {
	name   string
	start  Time
	end    Time
	points []Point
}

// NewPointTier creates an empty point tier with the given name and time
// domain. The domain must satisfy start <= end.
func NewPointTier(name string, start, end Time) (*PointTier, error) {
	if start > end {
		return nil, errors.NewStructuref("new point tier", "domain start %v after end %v", start, end)
	}
	return &PointTier{name: name, start: start, end: end}, nil
}

// Name returns the tier name.
func (t *PointTier) Name() string { return t.name }

// SetName renames the tier.
func (t *PointTier) SetName(name string) { t.name = name }

// Class returns ClassPoint.
func (t *PointTier) Class() Class { return ClassPoint }

// Start returns the lower bound of the tier's domain.
func (t *PointTier) Start() Time { return t.start }

// End returns the upper bound of the tier's domain.
func (t *PointTier) End() Time { return t.end }

// Len returns the number of points.
func (t *PointTier) Len() int { return len(t.points) }

// At returns the i-th point in time order. It panics if i is out of range,
// like slice indexing.
func (t *PointTier) At(i int) Point { return t.points[i] }

// Add inserts a point, keeping the tier sorted by time. The point must lie
// within the tier's domain; a second point at an already occupied time is
// rejected with a StructureError. Points may be added in any order.
func (t *PointTier) Add(p Point) error {
	const op = "add point"
	if p.Time < t.start || p.Time > t.end {
		return errors.NewStructuref(op, "point at %v outside tier domain [%v, %v]", p.Time, t.start, t.end)
	}
	i := sort.Search(len(t.points), func(i int) bool { return t.points[i].Time >= p.Time })
	if i < len(t.points) && t.points[i].Time == p.Time {
		return errors.NewStructuref(op, "point at %v already present", p.Time)
	}
	t.points = append(t.points, Point{})
	copy(t.points[i+1:], t.points[i:])
	t.points[i] = p
	return nil
}

// PointAtOrAfter returns the first point whose time is at or after the
// given time. Queries outside the tier's domain, and queries past the last
// point, fail with a NotFoundError.
func (t *PointTier) PointAtOrAfter(at Time) (Point, error) {
	if at < t.start || at > t.end {
		return Point{}, errors.NewNotFound("point", fmt.Sprintf("at or after %v, outside tier domain [%v, %v]", at, t.start, t.end))
	}
	i := sort.Search(len(t.points), func(i int) bool { return t.points[i].Time >= at })
	if i < len(t.points) {
		return t.points[i], nil
	}
	return Point{}, errors.NewNotFound("point", fmt.Sprintf("at or after %v", at))
}

// Between iterates, in time order, the points lying within [from, to],
// boundaries included. The sequence is restartable; the tier must not be
// mutated while iterating.
func (t *PointTier) Between(from, to Time) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		i := sort.Search(len(t.points), func(i int) bool { return t.points[i].Time >= from })
		for ; i < len(t.points); i++ {
			if t.points[i].Time > to {
				return
			}
			if !yield(t.points[i]) {
				return
			}
		}
	}
}

// Points iterates all points in time order.
func (t *PointTier) Points() iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for _, p := range t.points {
			if !yield(p) {
				return
			}
		}
	}
}

// Spans iterates all points as class-independent zero-length spans.
func (t *PointTier) Spans() iter.Seq[Span] {
	return func(yield func(Span) bool) {
		for _, p := range t.points {
			if !yield(Span{Start: p.Time, End: p.Time, Text: p.Text}) {
				return
			}
		}
	}
}

// Validate checks that every point lies within the domain and that times
// are strictly increasing. Tiers built through Add always pass.
func (t *PointTier) Validate() error {
	const op = "validate point tier"
	for i, p := range t.points {
		if p.Time < t.start || p.Time > t.end {
			return errors.NewStructuref(op, "point at %v outside tier domain [%v, %v]", p.Time, t.start, t.end)
		}
		if i > 0 && t.points[i-1].Time >= p.Time {
			return errors.NewStructuref(op, "points at %v and %v out of order", t.points[i-1].Time, p.Time)
		}
	}
	return nil
}

// Crop returns a new tier restricted to [from, to]. The window must have
// positive length; the new domain is the window clamped to the tier's
// domain. Both modes keep exactly the points within the window, since
// clipping a point is meaningless.
func (t *PointTier) Crop(from, to Time, mode CropMode) (Tier, error) {
	if !mode.IsValid() {
		return nil, errors.NewStructuref("crop", "unknown crop mode %q", mode)
	}
	if from >= to {
		return nil, errors.NewStructuref("crop", "window [%v, %v] has no positive length", from, to)
	}
	s, e := max(from, t.start), min(to, t.end)
	if s > e {
		if to <= t.start {
			s, e = t.start, t.start
		} else {
			s, e = t.end, t.end
		}
	}
	out := &PointTier{name: t.name, start: s, end: e}
	for p := range t.Between(s, e) {
		out.points = append(out.points, p)
	}
	return out, nil
}

// Shift returns a copy with the domain and all points moved by delta.
func (t *PointTier) Shift(delta Time) Tier {
	out := &PointTier{name: t.name, start: t.start + delta, end: t.end + delta, points: make([]Point, len(t.points))}
	for i, p := range t.points {
		out.points[i] = Point{Time: p.Time + delta, Text: p.Text}
	}
	return out
}

// Merge returns a new tier spanning both domains, keeping the receiver's
// name. The domains must not overlap; two points meeting at a shared
// domain boundary also fail with an OverlapError.
func (t *PointTier) Merge(other *PointTier) (*PointTier, error) {
	if t.start < other.end && other.start < t.end {
		return nil, errors.NewOverlap("merge tiers",
			fmt.Sprintf("domain [%v, %v] overlaps [%v, %v]", t.start, t.end, other.start, other.end))
	}
	first, second := t, other
	if other.start < t.start {
		first, second = other, t
	}
	if len(first.points) > 0 && len(second.points) > 0 {
		if last := first.points[len(first.points)-1]; last.Time == second.points[0].Time {
			return nil, errors.NewOverlap("merge tiers",
				fmt.Sprintf("both tiers hold a point at %v", last.Time))
		}
	}
	out := &PointTier{
		name:   t.name,
		start:  first.start,
		end:    max(first.end, second.end),
		points: make([]Point, 0, len(t.points)+len(other.points)),
	}
	out.points = append(out.points, first.points...)
	out.points = append(out.points, second.points...)
	return out, nil
}

// Copy returns a deep copy of the tier.
func (t *PointTier) Copy() Tier {
	out := &PointTier{name: t.name, start: t.start, end: t.end, points: make([]Point, len(t.points))}
	copy(out.points, t.points)
	return out
}
