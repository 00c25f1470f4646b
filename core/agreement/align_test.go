package agreement

import (
	"reflect"
	"testing"

	"github.com/hbuschme/TextGridTools/core/annot"
	"github.com/hbuschme/TextGridTools/core/errors"
)

func intervalTier(t *testing.T, name string, start, end annot.Time, ivs ...annot.Interval) *annot.IntervalTier {
	t.Helper()
	tier, err := annot.NewIntervalTier(name, start, end)
	if err != nil {
		t.Fatalf("NewIntervalTier(%q): %v", name, err)
	}
	for _, iv := range ivs {
		if err := tier.Add(iv); err != nil {
			t.Fatalf("Add(%v): %v", iv, err)
		}
	}
	return tier
}

func pointTier(t *testing.T, name string, start, end annot.Time, pts ...annot.Point) *annot.PointTier {
	t.Helper()
	tier, err := annot.NewPointTier(name, start, end)
	if err != nil {
		t.Fatalf("NewPointTier(%q): %v", name, err)
	}
	for _, p := range pts {
		if err := tier.Add(p); err != nil {
			t.Fatalf("Add(%v): %v", p, err)
		}
	}
	return tier
}

func assertUnits(t *testing.T, got, want []AlignedUnit) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("aligned %d units, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i].Start != want[i].Start || got[i].End != want[i].End {
			t.Errorf("unit %d spans [%v, %v], want [%v, %v]", i, got[i].Start, got[i].End, want[i].Start, want[i].End)
		}
		if !reflect.DeepEqual(got[i].Labels, want[i].Labels) {
			t.Errorf("unit %d labels = %q, want %q", i, got[i].Labels, want[i].Labels)
		}
	}
}

func TestAlignIntervalTiers(t *testing.T) {
	a := intervalTier(t, "A", 0, 2,
		annot.Interval{Start: 0, End: 1, Text: "x"},
		annot.Interval{Start: 1, End: 2, Text: "y"})
	b := intervalTier(t, "B", 0, 2,
		annot.Interval{Start: 0, End: 1, Text: "x"},
		annot.Interval{Start: 1, End: 2, Text: "z"})

	al, err := AlignIntervalTiers([]*annot.IntervalTier{a, b}, Options{})
	if err != nil {
		t.Fatalf("AlignIntervalTiers: %v", err)
	}
	if want := []string{"A", "B"}; !reflect.DeepEqual(al.Raters, want) {
		t.Errorf("Raters = %q, want %q", al.Raters, want)
	}
	assertUnits(t, al.Units, []AlignedUnit{
		{Start: 0, End: 1, Labels: []string{"x", "x"}},
		{Start: 1, End: 2, Labels: []string{"y", "z"}},
	})
}

func TestAlignIntervalTiersTolerance(t *testing.T) {
	a := intervalTier(t, "A", 0, 2,
		annot.Interval{Start: 0, End: 1.02, Text: "x"},
		annot.Interval{Start: 1.02, End: 2, Text: "y"})
	b := intervalTier(t, "B", 0, 2,
		annot.Interval{Start: 0, End: 0.98, Text: "x"},
		annot.Interval{Start: 0.98, End: 2, Text: "y"})

	t.Run("Clustered", func(t *testing.T) {
		al, err := AlignIntervalTiers([]*annot.IntervalTier{a, b}, Options{Tolerance: 0.05})
		if err != nil {
			t.Fatalf("AlignIntervalTiers: %v", err)
		}
		assertUnits(t, al.Units, []AlignedUnit{
			{Start: 0, End: 0.98, Labels: []string{"x", "x"}},
			{Start: 0.98, End: 2, Labels: []string{"y", "y"}},
		})
	})
	t.Run("Exact", func(t *testing.T) {
		al, err := AlignIntervalTiers([]*annot.IntervalTier{a, b}, Options{})
		if err != nil {
			t.Fatalf("AlignIntervalTiers: %v", err)
		}
		assertUnits(t, al.Units, []AlignedUnit{
			{Start: 0, End: 0.98, Labels: []string{"x", "x"}},
			{Start: 0.98, End: 1.02, Labels: []string{"x", "y"}},
			{Start: 1.02, End: 2, Labels: []string{"y", "y"}},
		})
	})
}

func TestAlignIntervalTiersMajorityTie(t *testing.T) {
	a := intervalTier(t, "A", 0, 1,
		annot.Interval{Start: 0, End: 0.5, Text: "L"},
		annot.Interval{Start: 0.5, End: 1, Text: "R"})
	b := intervalTier(t, "B", 0, 1,
		annot.Interval{Start: 0, End: 0.4, Text: "p"},
		annot.Interval{Start: 0.4, End: 1, Text: "q"})
	c := intervalTier(t, "C", 0, 1,
		annot.Interval{Start: 0, End: 0.6, Text: "m"},
		annot.Interval{Start: 0.6, End: 1, Text: "n"})

	al, err := AlignIntervalTiers([]*annot.IntervalTier{a, b, c}, Options{Tolerance: 0.12})
	if err != nil {
		t.Fatalf("AlignIntervalTiers: %v", err)
	}
	// The cell [0.4, 0.6] overlaps both of A's intervals equally; the
	// earlier one supplies the label.
	assertUnits(t, al.Units, []AlignedUnit{
		{Start: 0, End: 0.4, Labels: []string{"L", "p", "m"}},
		{Start: 0.4, End: 0.6, Labels: []string{"L", "q", "m"}},
		{Start: 0.6, End: 1, Labels: []string{"R", "q", "n"}},
	})
}

func TestAlignIntervalTiersDomainIntersection(t *testing.T) {
	a := intervalTier(t, "A", 0, 2,
		annot.Interval{Start: 0, End: 1, Text: "u"},
		annot.Interval{Start: 1, End: 2, Text: "v"})
	b := intervalTier(t, "B", 0.5, 3,
		annot.Interval{Start: 0.5, End: 1.5, Text: "u"},
		annot.Interval{Start: 1.5, End: 3, Text: "v"})

	al, err := AlignIntervalTiers([]*annot.IntervalTier{a, b}, Options{})
	if err != nil {
		t.Fatalf("AlignIntervalTiers: %v", err)
	}
	assertUnits(t, al.Units, []AlignedUnit{
		{Start: 0.5, End: 1, Labels: []string{"u", "u"}},
		{Start: 1, End: 1.5, Labels: []string{"v", "u"}},
		{Start: 1.5, End: 2, Labels: []string{"v", "v"}},
	})
}

func TestAlignIntervalTiersErrors(t *testing.T) {
	full := func(name string) *annot.IntervalTier {
		return intervalTier(t, name, 0, 1, annot.Interval{Start: 0, End: 1, Text: "x"})
	}

	t.Run("TooFewTiers", func(t *testing.T) {
		_, err := AlignIntervalTiers([]*annot.IntervalTier{full("A")}, Options{})
		if !errors.Is(err, errors.ErrStructure) {
			t.Errorf("err = %v, want structure error", err)
		}
	})
	t.Run("NegativeTolerance", func(t *testing.T) {
		_, err := AlignIntervalTiers([]*annot.IntervalTier{full("A"), full("B")}, Options{Tolerance: -0.1})
		if !errors.Is(err, errors.ErrStructure) {
			t.Errorf("err = %v, want structure error", err)
		}
	})
	t.Run("IncompleteTier", func(t *testing.T) {
		gappy, err := annot.NewIntervalTier("B", 0, 1)
		if err != nil {
			t.Fatalf("NewIntervalTier: %v", err)
		}
		if err := gappy.Add(annot.Interval{Start: 0, End: 0.5, Text: "x"}); err != nil {
			t.Fatalf("Add: %v", err)
		}
		_, err = AlignIntervalTiers([]*annot.IntervalTier{full("A"), gappy}, Options{})
		if !errors.Is(err, errors.ErrStructure) {
			t.Errorf("err = %v, want structure error", err)
		}
	})
	t.Run("DisjointDomains", func(t *testing.T) {
		a := full("A")
		b := intervalTier(t, "B", 2, 3, annot.Interval{Start: 2, End: 3, Text: "x"})
		_, err := AlignIntervalTiers([]*annot.IntervalTier{a, b}, Options{})
		if !errors.Is(err, errors.ErrInsufficientData) {
			t.Errorf("err = %v, want insufficient data error", err)
		}
	})
}

func TestAlignPointTiers(t *testing.T) {
	a := pointTier(t, "A", 0, 2, annot.Point{Time: 1, Text: "a"})
	b := pointTier(t, "B", 0, 2,
		annot.Point{Time: 0.95, Text: "b"},
		annot.Point{Time: 1.01, Text: "c"})

	al, err := AlignPointTiers([]*annot.PointTier{a, b}, Options{Tolerance: 0.1})
	if err != nil {
		t.Fatalf("AlignPointTiers: %v", err)
	}
	if want := []string{"A", "B"}; !reflect.DeepEqual(al.Raters, want) {
		t.Errorf("Raters = %q, want %q", al.Raters, want)
	}
	// Both of B's points fall within the tolerance of A's point; the
	// nearer one pairs with it and the other stands alone.
	assertUnits(t, al.Units, []AlignedUnit{
		{Start: 0.95, End: 0.95, Labels: []string{NoLabel, "b"}},
		{Start: 1, End: 1, Labels: []string{"a", "c"}},
	})
}

func TestAlignPointTiersEqualDistance(t *testing.T) {
	a := pointTier(t, "A", 0, 2,
		annot.Point{Time: 1, Text: "a"},
		annot.Point{Time: 1.5, Text: "b"})
	b := pointTier(t, "B", 0, 2, annot.Point{Time: 1.25, Text: "c"})

	al, err := AlignPointTiers([]*annot.PointTier{a, b}, Options{Tolerance: 0.3})
	if err != nil {
		t.Fatalf("AlignPointTiers: %v", err)
	}
	// 1.25 sits exactly between A's points; the earlier one takes it.
	assertUnits(t, al.Units, []AlignedUnit{
		{Start: 1, End: 1, Labels: []string{"a", "c"}},
		{Start: 1.5, End: 1.5, Labels: []string{"b", NoLabel}},
	})
}

func TestAlignPointTiersThreeRaters(t *testing.T) {
	a := pointTier(t, "A", 0, 2, annot.Point{Time: 1, Text: "H"})
	b := pointTier(t, "B", 0, 2, annot.Point{Time: 1.02, Text: "H"})
	c := pointTier(t, "C", 0, 2, annot.Point{Time: 0.5, Text: "X"})

	al, err := AlignPointTiers([]*annot.PointTier{a, b, c}, Options{Tolerance: 0.05})
	if err != nil {
		t.Fatalf("AlignPointTiers: %v", err)
	}
	assertUnits(t, al.Units, []AlignedUnit{
		{Start: 0.5, End: 0.5, Labels: []string{NoLabel, NoLabel, "X"}},
		{Start: 1, End: 1, Labels: []string{"H", "H", NoLabel}},
	})
}

func TestAlignPointTiersZeroTolerance(t *testing.T) {
	a := pointTier(t, "A", 0, 1, annot.Point{Time: 0.5, Text: "x"})
	b := pointTier(t, "B", 0, 1, annot.Point{Time: 0.5002, Text: "y"})

	al, err := AlignPointTiers([]*annot.PointTier{a, b}, Options{})
	if err != nil {
		t.Fatalf("AlignPointTiers: %v", err)
	}
	assertUnits(t, al.Units, []AlignedUnit{
		{Start: 0.5, End: 0.5, Labels: []string{"x", NoLabel}},
		{Start: 0.5002, End: 0.5002, Labels: []string{NoLabel, "y"}},
	})
}

func TestAlignPointTiersEmpty(t *testing.T) {
	a := pointTier(t, "A", 0, 1)
	b := pointTier(t, "B", 0, 1)

	al, err := AlignPointTiers([]*annot.PointTier{a, b}, Options{})
	if err != nil {
		t.Fatalf("AlignPointTiers: %v", err)
	}
	if len(al.Units) != 0 {
		t.Errorf("aligned %d units from empty tiers, want 0", len(al.Units))
	}
}

func TestAlignDispatch(t *testing.T) {
	a := intervalTier(t, "A", 0, 1, annot.Interval{Start: 0, End: 1, Text: "x"})
	b := intervalTier(t, "B", 0, 1, annot.Interval{Start: 0, End: 1, Text: "y"})
	al, err := Align([]annot.Tier{a, b}, Options{})
	if err != nil {
		t.Fatalf("Align(interval tiers): %v", err)
	}
	assertUnits(t, al.Units, []AlignedUnit{{Start: 0, End: 1, Labels: []string{"x", "y"}}})

	p := pointTier(t, "P", 0, 1, annot.Point{Time: 0.5, Text: "x"})
	q := pointTier(t, "Q", 0, 1, annot.Point{Time: 0.5, Text: "y"})
	al, err = Align([]annot.Tier{p, q}, Options{})
	if err != nil {
		t.Fatalf("Align(point tiers): %v", err)
	}
	assertUnits(t, al.Units, []AlignedUnit{{Start: 0.5, End: 0.5, Labels: []string{"x", "y"}}})
}

func TestAlignMixedClasses(t *testing.T) {
	it := intervalTier(t, "A", 0, 1, annot.Interval{Start: 0, End: 1, Text: "x"})
	pt := pointTier(t, "B", 0, 1, annot.Point{Time: 0.5, Text: "x"})

	if _, err := Align([]annot.Tier{it, pt}, Options{}); !errors.Is(err, errors.ErrStructure) {
		t.Errorf("interval tier first: err = %v, want structure error", err)
	}
	if _, err := Align([]annot.Tier{pt, it}, Options{}); !errors.Is(err, errors.ErrStructure) {
		t.Errorf("point tier first: err = %v, want structure error", err)
	}
	if _, err := Align([]annot.Tier{it}, Options{}); !errors.Is(err, errors.ErrStructure) {
		t.Errorf("single tier: err = %v, want structure error", err)
	}
}
