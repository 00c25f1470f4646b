// Package agreement aligns annotation tiers produced by independent
// annotators and computes inter-annotator agreement statistics over the
// aligned units.
//
// Interval tiers are aligned by partitioning the tiers' shared time
// domain at the union of all interval boundaries; boundaries closer than
// a caller-supplied tolerance count as one. Each cell of the partition
// takes, per tier, the label of the source interval covering most of the
// cell. Point tiers are aligned by greedily pairing nearest points across
// tiers within the tolerance window; a point with no counterpart keeps
// the distinguished NoLabel category on the other side.
//
// On top of an alignment, CohenKappa and ScottPi compare two annotators
// and FleissKappa compares two or more. All report observed agreement,
// expected chance agreement and the chance-corrected statistic, together
// with the alignment itself. An alignment with no units yields an
// InsufficientDataError rather than NaN.
package agreement
