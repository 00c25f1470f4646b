package annot

import (
	"iter"
	"strconv"
)

// Time is a timestamp on the shared annotation axis, in seconds.
// Ordering is total and equality is exact; tolerance-based comparison
// belongs to the consumers that need it (see core/agreement).
type Time float64

// String returns the shortest decimal representation that parses back to
// exactly the same value.
func (t Time) String() string {
	return strconv.FormatFloat(float64(t), 'f', -1, 64)
}

// Interval is a labeled time span. A valid interval has Start < End;
// zero-length intervals are rejected by tier operations. Empty text marks
// an unlabeled stretch.
type Interval struct {
	Start Time
	End   Time
	Text  string
}

// Duration returns the length of the interval.
func (iv Interval) Duration() Time {
	return iv.End - iv.Start
}

// Point is a labeled instant.
type Point struct {
	Time Time
	Text string
}

// Span is the class-independent view of one annotation unit: intervals
// span [Start, End], points carry Start == End.
type Span struct {
	Start Time
	End   Time
	Text  string
}

// Class tags the two tier variants with their TextGrid class names.
type Class string

// Tier class constants.
const (
	ClassInterval Class = "IntervalTier"
	ClassPoint    Class = "TextTier"
)

// validClasses is the set of valid tier classes.
var validClasses = map[Class]bool{
	ClassInterval: true,
	ClassPoint:    true,
}

// IsValid returns true if the class is a known tier class.
func (c Class) IsValid() bool {
	return validClasses[c]
}

// CropMode selects how Crop treats units that straddle the window boundary.
type CropMode string

// Crop mode constants.
const (
	// CropStrict keeps only units lying fully inside the window.
	CropStrict CropMode = "strict"
	// CropLax also keeps boundary-straddling intervals, clipped to the
	// window. Clipping a point is meaningless, so point tiers behave as
	// strict in both modes.
	CropLax CropMode = "lax"
)

// validCropModes is the set of valid crop modes.
var validCropModes = map[CropMode]bool{
	CropStrict: true,
	CropLax:    true,
}

// IsValid returns true if the crop mode is known.
func (m CropMode) IsValid() bool {
	return validCropModes[m]
}

// Tier is the capability interface shared by IntervalTier and PointTier.
// Dispatch on Class (or a type switch) to reach variant-specific units.
type Tier interface {
	// Name returns the tier name. Names need not be unique within a grid.
	Name() string
	// SetName renames the tier.
	SetName(name string)
	// Class returns the variant tag.
	Class() Class
	// Start returns the lower bound of the tier's time domain.
	Start() Time
	// End returns the upper bound of the tier's time domain.
	End() Time
	// Len returns the number of units.
	Len() int
	// Spans iterates the units in time order as class-independent spans.
	Spans() iter.Seq[Span]
	// Validate checks the full tier invariants, including domain coverage
	// for interval tiers. Tiers under construction may fail it.
	Validate() error
	// Crop returns a new tier restricted to the window [from, to],
	// clamped to the tier's domain.
	Crop(from, to Time, mode CropMode) (Tier, error)
	// Shift returns a copy with the domain and every unit moved by delta.
	Shift(delta Time) Tier
	// Copy returns a deep copy sharing no units with the receiver.
	Copy() Tier
}
