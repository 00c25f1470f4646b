package textgrid

import (
	"encoding/csv"
	"io"

	"github.com/hbuschme/TextGridTools/core/annot"
	"github.com/hbuschme/TextGridTools/core/errors"
)

// WriteTable exports the grid's units as delimiter-separated values, one
// row per unit with the columns tier_name, tier_type, start_time,
// end_time and text. Unlabeled intervals are omitted; a point occupies a
// row with equal start and end times. A comma of 0 keeps the default
// separator.
func WriteTable(w io.Writer, g *annot.Grid, comma rune) error {
	cw := csv.NewWriter(w)
	if comma != 0 {
		cw.Comma = comma
	}
	if err := cw.Write([]string{"tier_name", "tier_type", "start_time", "end_time", "text"}); err != nil {
		return errors.NewIO("write table", "", err)
	}
	for tier := range g.Tiers() {
		for s := range tier.Spans() {
			if tier.Class() == annot.ClassInterval && s.Text == "" {
				continue
			}
			record := []string{tier.Name(), string(tier.Class()), s.Start.String(), s.End.String(), s.Text}
			if err := cw.Write(record); err != nil {
				return errors.NewIO("write table", "", err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.NewIO("write table", "", err)
	}
	return nil
}
