// Package annot provides the data model for time-aligned annotation data
// of the kind produced by phonetic and linguistic annotation tools.
//
// Annotations consist of one or more parallel tiers attached to a shared
// time axis. Each tier holds either contiguous labeled intervals or
// discrete labeled points.
//
// # Core Types
//
// The model is organized leaf-first:
//
//   - Time: a timestamp in seconds
//   - Interval, Point: labeled annotation units
//   - IntervalTier, PointTier: ordered unit containers with a time domain
//   - Grid: the full annotation document, an ordered collection of tiers
//
// IntervalTier and PointTier implement the Tier interface, tagged by Class,
// so codecs and analysis code can dispatch on the tag.
//
// # Invariants
//
// Mutation goes through methods that enforce the structural invariants:
// intervals within a tier are contiguous and non-overlapping, points are
// strictly increasing in time, and every tier's domain is a sub-interval of
// its grid's domain. An edit that would violate an invariant is rejected
// with a StructureError and never silently coerced. Empty-text intervals
// are ordinary units representing unlabeled stretches; a missing stretch is
// structurally disallowed.
//
// Add never creates an overlap or a new gap. Full domain coverage (the
// first interval starting at the tier's start, the last ending at its end)
// is checked by Validate, which serialization requires, so tiers can be
// built incrementally and validated once complete. A coverage gap left by
// merging tiers with non-adjacent domains is filled explicitly with
// FillGaps.
//
// # Ownership
//
// Tiers, grids, and their units are value-like: Copy duplicates contained
// annotations rather than aliasing them, so no two grids ever share a tier.
// The model holds no global state and does no I/O; concurrent use of
// independent grids needs no synchronization.
//
// # Example
//
//	tier, _ := annot.NewIntervalTier("phones", 0, 1)
//	_ = tier.Add(annot.Interval{Start: 0, End: 0.5, Text: "a"})
//	_ = tier.Add(annot.Interval{Start: 0.5, End: 1, Text: "b"})
//
//	grid, _ := annot.NewGrid(0, 1)
//	_ = grid.AddTier(tier)
package annot
