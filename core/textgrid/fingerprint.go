package textgrid

import (
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/hbuschme/TextGridTools/core/annot"
)

// Fingerprint returns the hex-encoded BLAKE3 hash of the grid's canonical
// long rendition. Structurally equal grids hash identically, so the value
// works as a content address for deduplication and change detection.
func Fingerprint(g *annot.Grid) (string, error) {
	data, err := Marshal(g, VariantLong)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
