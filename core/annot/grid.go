package annot

import (
	"iter"
	"strconv"

	"github.com/hbuschme/TextGridTools/core/errors"
)

// Grid is the full annotation document: a time domain plus an ordered
// collection of tiers. Every tier's domain must be a sub-interval of the
// grid's. Tier names need not be unique; name lookup returns the first
// match in order, mirroring file order.
type Grid struct {
	start Time
	end   Time
	tiers []Tier
}

// NewGrid creates an empty grid with the given time domain. The domain
// must satisfy start <= end.
func NewGrid(start, end Time) (*Grid, error) {
	if start > end {
		return nil, errors.NewStructuref("new grid", "domain start %v after end %v", start, end)
	}
	return &Grid{start: start, end: end}, nil
}

// Start returns the lower bound of the grid's domain.
func (g *Grid) Start() Time { return g.start }

// End returns the upper bound of the grid's domain.
func (g *Grid) End() Time { return g.end }

// Len returns the number of tiers.
func (g *Grid) Len() int { return len(g.tiers) }

// AddTier appends a tier. The tier's domain must be a sub-interval of the
// grid's. The grid takes ownership of the tier; use Copy to share its
// contents with another grid.
func (g *Grid) AddTier(t Tier) error {
	return g.InsertTier(len(g.tiers), t)
}

// InsertTier inserts a tier at position i, shifting later tiers up.
func (g *Grid) InsertTier(i int, t Tier) error {
	const op = "add tier"
	if i < 0 || i > len(g.tiers) {
		return errors.NewStructuref(op, "position %d out of range [0, %d]", i, len(g.tiers))
	}
	if t.Start() < g.start || t.End() > g.end {
		return errors.NewStructuref(op, "tier %q domain [%v, %v] outside grid domain [%v, %v]",
			t.Name(), t.Start(), t.End(), g.start, g.end)
	}
	g.tiers = append(g.tiers, nil)
	copy(g.tiers[i+1:], g.tiers[i:])
	g.tiers[i] = t
	return nil
}

// Tier returns the first tier with the given name. Resolution is exact
// string match; an unknown name fails with a NotFoundError.
func (g *Grid) Tier(name string) (Tier, error) {
	for _, t := range g.tiers {
		if t.Name() == name {
			return t, nil
		}
	}
	return nil, errors.NewNotFound("tier", name)
}

// TierAt returns the i-th tier. It panics if i is out of range, like slice
// indexing.
func (g *Grid) TierAt(i int) Tier { return g.tiers[i] }

// HasTier reports whether a tier with the given name exists.
func (g *Grid) HasTier(name string) bool {
	_, err := g.Tier(name)
	return err == nil
}

// RemoveTier removes the first tier with the given name.
func (g *Grid) RemoveTier(name string) error {
	for i, t := range g.tiers {
		if t.Name() == name {
			g.tiers = append(g.tiers[:i], g.tiers[i+1:]...)
			return nil
		}
	}
	return errors.NewNotFound("tier", name)
}

// RemoveTierAt removes the i-th tier.
func (g *Grid) RemoveTierAt(i int) error {
	if i < 0 || i >= len(g.tiers) {
		return errors.NewNotFound("tier", "index "+strconv.Itoa(i))
	}
	g.tiers = append(g.tiers[:i], g.tiers[i+1:]...)
	return nil
}

// TierNames returns the tier names in order, duplicates preserved.
func (g *Grid) TierNames() []string {
	names := make([]string, len(g.tiers))
	for i, t := range g.tiers {
		names[i] = t.Name()
	}
	return names
}

// Tiers iterates the tiers in order.
func (g *Grid) Tiers() iter.Seq[Tier] {
	return func(yield func(Tier) bool) {
		for _, t := range g.tiers {
			if !yield(t) {
				return
			}
		}
	}
}

// Validate checks the grid and all of its tiers, including interval tier
// domain coverage. Serialization requires a valid grid.
func (g *Grid) Validate() error {
	const op = "validate grid"
	if g.start > g.end {
		return errors.NewStructuref(op, "domain start %v after end %v", g.start, g.end)
	}
	for i, t := range g.tiers {
		if t.Start() < g.start || t.End() > g.end {
			return errors.NewStructuref(op, "tier %d (%q) domain [%v, %v] outside grid domain [%v, %v]",
				i+1, t.Name(), t.Start(), t.End(), g.start, g.end)
		}
		if err := t.Validate(); err != nil {
			return errors.Wrapf(err, "tier %d (%q)", i+1, t.Name())
		}
	}
	return nil
}

// Crop returns a new grid restricted to [from, to]. The window must
// overlap the grid's domain with positive length; it becomes the new grid
// domain after clamping, and every tier is cropped with the given mode.
// Cropping is idempotent.
func (g *Grid) Crop(from, to Time, mode CropMode) (*Grid, error) {
	if !mode.IsValid() {
		return nil, errors.NewStructuref("crop", "unknown crop mode %q", mode)
	}
	if from >= to {
		return nil, errors.NewStructuref("crop", "window [%v, %v] has no positive length", from, to)
	}
	s, e := max(from, g.start), min(to, g.end)
	if s >= e {
		return nil, errors.NewStructuref("crop",
			"window [%v, %v] does not overlap grid domain [%v, %v]", from, to, g.start, g.end)
	}
	out := &Grid{start: s, end: e, tiers: make([]Tier, 0, len(g.tiers))}
	for _, t := range g.tiers {
		cropped, err := t.Crop(s, e, mode)
		if err != nil {
			return nil, errors.Wrapf(err, "tier %q", t.Name())
		}
		out.tiers = append(out.tiers, cropped)
	}
	return out, nil
}

// Shift returns a copy with the domain and every tier moved by delta.
func (g *Grid) Shift(delta Time) *Grid {
	out := &Grid{start: g.start + delta, end: g.end + delta, tiers: make([]Tier, len(g.tiers))}
	for i, t := range g.tiers {
		out.tiers[i] = t.Shift(delta)
	}
	return out
}

// FillGaps returns a copy in which every interval tier has its coverage
// gaps filled with empty-text intervals. Point tiers are copied unchanged.
func (g *Grid) FillGaps() *Grid {
	out := &Grid{start: g.start, end: g.end, tiers: make([]Tier, len(g.tiers))}
	for i, t := range g.tiers {
		switch tt := t.(type) {
		case *IntervalTier:
			out.tiers[i] = tt.FillGaps()
		default:
			out.tiers[i] = t.Copy()
		}
	}
	return out
}

// Copy returns a deep copy of the grid sharing no tiers with the receiver.
func (g *Grid) Copy() *Grid {
	out := &Grid{start: g.start, end: g.end, tiers: make([]Tier, len(g.tiers))}
	for i, t := range g.tiers {
		out.tiers[i] = t.Copy()
	}
	return out
}

// Concat concatenates grids on the time axis. All grids must declare the
// same tier name and class sequence. Each subsequent grid is shifted so
// its domain begins where the previous one ended, and same-position tiers
// are merged. Tiers whose domains are narrower than their grid leave
// coverage gaps in the result; fill them explicitly if needed.
func Concat(grids ...*Grid) (*Grid, error) {
	const op = "concat grids"
	if len(grids) == 0 {
		return nil, errors.NewStructure(op, "no grids given")
	}
	first := grids[0]
	for _, g := range grids[1:] {
		if g.Len() != first.Len() {
			return nil, errors.NewStructuref(op, "grid has %d tiers, first grid has %d", g.Len(), first.Len())
		}
		for i, t := range g.tiers {
			ft := first.tiers[i]
			if t.Name() != ft.Name() || t.Class() != ft.Class() {
				return nil, errors.NewStructuref(op, "tier %d is %s %q, first grid has %s %q",
					i+1, t.Class(), t.Name(), ft.Class(), ft.Name())
			}
		}
	}
	out := first.Copy()
	for _, g := range grids[1:] {
		shifted := g.Shift(out.end - g.start)
		for i, t := range out.tiers {
			merged, err := mergeTiers(t, shifted.tiers[i])
			if err != nil {
				return nil, errors.Wrapf(err, "tier %d (%q)", i+1, t.Name())
			}
			out.tiers[i] = merged
		}
		out.end = shifted.end
	}
	return out, nil
}

// mergeTiers merges two same-class tiers through their concrete types.
func mergeTiers(a, b Tier) (Tier, error) {
	switch at := a.(type) {
	case *IntervalTier:
		bt, ok := b.(*IntervalTier)
		if !ok {
			return nil, errors.NewStructuref("merge tiers", "cannot merge %s with %s", a.Class(), b.Class())
		}
		return at.Merge(bt)
	case *PointTier:
		bt, ok := b.(*PointTier)
		if !ok {
			return nil, errors.NewStructuref("merge tiers", "cannot merge %s with %s", a.Class(), b.Class())
		}
		return at.Merge(bt)
	}
	return nil, errors.NewStructuref("merge tiers", "unknown tier class %s", a.Class())
}
