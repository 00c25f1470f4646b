package agreement

import (
	"sort"

	"github.com/hbuschme/TextGridTools/core/annot"
	"github.com/hbuschme/TextGridTools/core/errors"
)

// Result carries an agreement statistic together with the alignment it
// was computed from, so callers can inspect the units behind the number.
type Result struct {
	Observed  float64
	Expected  float64
	Kappa     float64
	Alignment *Alignment
}

// Table is a label-by-label contingency table for two raters.
// Counts[i][j] is the number of aligned units the first rater labeled
// Categories[i] and the second labeled Categories[j].
type Table struct {
	Categories []string
	Counts     [][]int
}

// ContingencyTable tabulates a two-rater alignment. Categories are the
// union of both raters' labels, sorted.
func ContingencyTable(al *Alignment) (*Table, error) {
	const op = "contingency table"
	if al == nil || len(al.Units) == 0 {
		return nil, errors.NewInsufficientData("no aligned units to tabulate")
	}
	if len(al.Raters) != 2 {
		return nil, errors.NewStructuref(op, "want 2 raters, have %d", len(al.Raters))
	}
	seen := make(map[string]bool)
	for _, u := range al.Units {
		if len(u.Labels) != 2 {
			return nil, errors.NewStructuref(op, "unit at %s carries %d labels, want 2", u.Start, len(u.Labels))
		}
		seen[u.Labels[0]] = true
		seen[u.Labels[1]] = true
	}
	cats := make([]string, 0, len(seen))
	for c := range seen {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	idx := make(map[string]int, len(cats))
	for i, c := range cats {
		idx[c] = i
	}
	counts := make([][]int, len(cats))
	for i := range counts {
		counts[i] = make([]int, len(cats))
	}
	for _, u := range al.Units {
		counts[idx[u.Labels[0]]][idx[u.Labels[1]]]++
	}
	return &Table{Categories: cats, Counts: counts}, nil
}

// CohenKappa aligns two tiers and computes Cohen's kappa: observed
// agreement chance-corrected by the agreement expected from the two
// raters' marginal label distributions.
func CohenKappa(a, b annot.Tier, opts Options) (*Result, error) {
	al, err := Align([]annot.Tier{a, b}, opts)
	if err != nil {
		return nil, err
	}
	tab, err := ContingencyTable(al)
	if err != nil {
		return nil, err
	}
	total := float64(len(al.Units))
	var agree, chance float64
	for i := range tab.Categories {
		agree += float64(tab.Counts[i][i])
		var row, col int
		for j := range tab.Categories {
			row += tab.Counts[i][j]
			col += tab.Counts[j][i]
		}
		chance += float64(row) * float64(col)
	}
	po := agree / total
	pe := chance / (total * total)
	return &Result{Observed: po, Expected: pe, Kappa: kappaFrom(po, pe), Alignment: al}, nil
}

// ScottPi aligns two tiers and computes Scott's pi. Unlike Cohen's
// kappa it charges both raters the same joint marginal distribution.
func ScottPi(a, b annot.Tier, opts Options) (*Result, error) {
	al, err := Align([]annot.Tier{a, b}, opts)
	if err != nil {
		return nil, err
	}
	tab, err := ContingencyTable(al)
	if err != nil {
		return nil, err
	}
	total := float64(len(al.Units))
	var agree, pe float64
	for i := range tab.Categories {
		agree += float64(tab.Counts[i][i])
		var row, col int
		for j := range tab.Categories {
			row += tab.Counts[i][j]
			col += tab.Counts[j][i]
		}
		joint := float64(row+col) / (2 * total)
		pe += joint * joint
	}
	po := agree / total
	return &Result{Observed: po, Expected: pe, Kappa: kappaFrom(po, pe), Alignment: al}, nil
}

// FleissKappa aligns two or more tiers and computes Fleiss' kappa over
// the aligned units, from per-unit rater agreement and overall category
// marginals.
func FleissKappa(tiers []annot.Tier, opts Options) (*Result, error) {
	al, err := Align(tiers, opts)
	if err != nil {
		return nil, err
	}
	if len(al.Units) == 0 {
		return nil, errors.NewInsufficientData("no aligned units to compare")
	}

	idx := make(map[string]int)
	for _, u := range al.Units {
		for _, lab := range u.Labels {
			if _, ok := idx[lab]; !ok {
				idx[lab] = len(idx)
			}
		}
	}
	n := float64(len(al.Raters))
	items := float64(len(al.Units))
	catTotals := make([]float64, len(idx))
	var po float64
	for _, u := range al.Units {
		row := make([]float64, len(idx))
		for _, lab := range u.Labels {
			row[idx[lab]]++
		}
		var sq float64
		for c, v := range row {
			sq += v * v
			catTotals[c] += v
		}
		po += (sq - n) / (n * (n - 1))
	}
	po /= items
	var pe float64
	for _, v := range catTotals {
		p := v / (items * n)
		pe += p * p
	}
	return &Result{Observed: po, Expected: pe, Kappa: kappaFrom(po, pe), Alignment: al}, nil
}

// kappaFrom applies the chance correction. Unanimous single-label data
// drives both agreements to 1 and the formula to 0/0; that case is
// perfect agreement by convention.
func kappaFrom(po, pe float64) float64 {
	if po == 1 && pe == 1 {
		return 1
	}
	return (po - pe) / (1 - pe)
}
