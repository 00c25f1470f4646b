package agreement

import (
	"sort"

	"github.com/hbuschme/TextGridTools/core/annot"
	"github.com/hbuschme/TextGridTools/core/errors"
)

// NoLabel is the category recorded for a point with no counterpart
// within the tolerance window. It never arises from interval alignment,
// where every tier covers the shared domain.
const NoLabel = "<no-label>"

// Options configures alignment. Tolerance is the window, in seconds,
// within which boundaries or points from different tiers count as the
// same instant. The zero value demands exact matches.
type Options struct {
	Tolerance annot.Time
}

// AlignedUnit is one row of an alignment: a common time span and the
// label each rater assigned to it. Point alignments carry Start == End.
type AlignedUnit struct {
	Start  annot.Time
	End    annot.Time
	Labels []string
}

// Alignment maps two or more tiers onto common units. Raters holds the
// tier names in input order; Labels in every unit follow that order.
type Alignment struct {
	Raters []string
	Units  []AlignedUnit
}

// Align aligns two or more tiers of one class. Mixing interval and point
// tiers is a StructureError.
func Align(tiers []annot.Tier, opts Options) (*Alignment, error) {
	const op = "align tiers"
	if len(tiers) < 2 {
		return nil, errors.NewStructure(op, "at least two tiers are required")
	}
	switch tiers[0].(type) {
	case *annot.IntervalTier:
		its := make([]*annot.IntervalTier, len(tiers))
		for i, t := range tiers {
			it, ok := t.(*annot.IntervalTier)
			if !ok {
				return nil, errors.NewStructuref(op, "tier %q is a %s among interval tiers", t.Name(), t.Class())
			}
			its[i] = it
		}
		return AlignIntervalTiers(its, opts)
	case *annot.PointTier:
		pts := make([]*annot.PointTier, len(tiers))
		for i, t := range tiers {
			pt, ok := t.(*annot.PointTier)
			if !ok {
				return nil, errors.NewStructuref(op, "tier %q is a %s among point tiers", t.Name(), t.Class())
			}
			pts[i] = pt
		}
		return AlignPointTiers(pts, opts)
	}
	return nil, errors.NewStructuref(op, "unsupported tier type %T", tiers[0])
}

// AlignIntervalTiers partitions the tiers' shared domain at the union of
// all interval boundaries, clustering boundaries closer than the
// tolerance, and labels each cell per tier with the label of the source
// interval covering the majority of the cell. A coverage tie goes to the
// earliest-starting source interval. Every tier must be complete
// (Validate passes); tiers whose domains do not overlap have nothing to
// compare, an InsufficientDataError.
func AlignIntervalTiers(tiers []*annot.IntervalTier, opts Options) (*Alignment, error) {
	const op = "align interval tiers"
	if len(tiers) < 2 {
		return nil, errors.NewStructure(op, "at least two tiers are required")
	}
	if opts.Tolerance < 0 {
		return nil, errors.NewStructuref(op, "tolerance %v is negative", opts.Tolerance)
	}
	lo, hi := tiers[0].Start(), tiers[0].End()
	for _, t := range tiers {
		if err := t.Validate(); err != nil {
			return nil, errors.Wrapf(err, "%s: tier %q", op, t.Name())
		}
		lo = max(lo, t.Start())
		hi = min(hi, t.End())
	}
	if hi <= lo {
		return nil, errors.NewInsufficientData("tier domains do not overlap")
	}

	bounds := []annot.Time{lo, hi}
	for _, t := range tiers {
		for iv := range t.Between(lo, hi) {
			bounds = append(bounds, max(iv.Start, lo), min(iv.End, hi))
		}
	}
	sort.Slice(bounds, func(i, j int) bool { return bounds[i] < bounds[j] })

	// Cluster boundaries within the tolerance, anchoring each cluster at
	// its minimum so a chain of nearby boundaries cannot drift.
	var reps []annot.Time
	for _, b := range bounds {
		if len(reps) == 0 || b-reps[len(reps)-1] > opts.Tolerance {
			reps = append(reps, b)
		}
	}

	al := &Alignment{Raters: raterNames(tiers)}
	for i := 1; i < len(reps); i++ {
		s, e := reps[i-1], reps[i]
		labels := make([]string, len(tiers))
		for k, t := range tiers {
			labels[k] = majorityLabel(t, s, e)
		}
		al.Units = append(al.Units, AlignedUnit{Start: s, End: e, Labels: labels})
	}
	return al, nil
}

// majorityLabel returns the label of the interval covering the largest
// share of [s, e]. Iteration is in time order, so on a tie the earliest
// interval wins.
func majorityLabel(t *annot.IntervalTier, s, e annot.Time) string {
	var best string
	var bestOverlap annot.Time
	for iv := range t.Between(s, e) {
		overlap := min(iv.End, e) - max(iv.Start, s)
		if overlap > bestOverlap {
			bestOverlap = overlap
			best = iv.Text
		}
	}
	return best
}

// pointCluster is one aligned unit under construction: the time of the
// point that seeded it and one label slot per tier.
type pointCluster struct {
	rep    annot.Time
	labels []string
}

// AlignPointTiers matches points across the tiers. The first tier seeds
// one cluster per point; each following tier pairs its points with the
// clusters within the tolerance window, nearest pairs first and earlier
// times first on equal distance. Points left unmatched seed new
// clusters, and absent slots keep NoLabel.
func AlignPointTiers(tiers []*annot.PointTier, opts Options) (*Alignment, error) {
	const op = "align point tiers"
	if len(tiers) < 2 {
		return nil, errors.NewStructure(op, "at least two tiers are required")
	}
	if opts.Tolerance < 0 {
		return nil, errors.NewStructuref(op, "tolerance %v is negative", opts.Tolerance)
	}

	newCluster := func(at annot.Time, tier int, text string) *pointCluster {
		c := &pointCluster{rep: at, labels: make([]string, len(tiers))}
		for i := range c.labels {
			c.labels[i] = NoLabel
		}
		c.labels[tier] = text
		return c
	}

	var clusters []*pointCluster
	for p := range tiers[0].Points() {
		clusters = append(clusters, newCluster(p.Time, 0, p.Text))
	}
	for k := 1; k < len(tiers); k++ {
		points := make([]annot.Point, 0, tiers[k].Len())
		for p := range tiers[k].Points() {
			points = append(points, p)
		}
		matched := matchPoints(clusters, points, k, opts.Tolerance)
		for i, p := range points {
			if !matched[i] {
				clusters = append(clusters, newCluster(p.Time, k, p.Text))
			}
		}
		sort.SliceStable(clusters, func(i, j int) bool { return clusters[i].rep < clusters[j].rep })
	}

	al := &Alignment{Raters: raterNames(tiers)}
	for _, c := range clusters {
		al.Units = append(al.Units, AlignedUnit{Start: c.rep, End: c.rep, Labels: c.labels})
	}
	return al, nil
}

// matchPoints pairs one tier's points with the clusters, each cluster
// and each point matching at most once. It reports which points found a
// cluster.
func matchPoints(clusters []*pointCluster, points []annot.Point, tier int, tolerance annot.Time) []bool {
	type candidate struct {
		dist annot.Time
		ci   int
		pi   int
	}
	var cands []candidate
	for ci, c := range clusters {
		for pi, p := range points {
			d := c.rep - p.Time
			if d < 0 {
				d = -d
			}
			if d <= tolerance {
				cands = append(cands, candidate{dist: d, ci: ci, pi: pi})
			}
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		if a.ci != b.ci {
			return a.ci < b.ci
		}
		return a.pi < b.pi
	})

	clusterTaken := make([]bool, len(clusters))
	matched := make([]bool, len(points))
	for _, c := range cands {
		if clusterTaken[c.ci] || matched[c.pi] {
			continue
		}
		clusterTaken[c.ci] = true
		matched[c.pi] = true
		clusters[c.ci].labels[tier] = points[c.pi].Text
	}
	return matched
}

func raterNames[T annot.Tier](tiers []T) []string {
	names := make([]string, len(tiers))
	for i, t := range tiers {
		names[i] = t.Name()
	}
	return names
}
