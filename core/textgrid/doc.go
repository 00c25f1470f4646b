// Package textgrid reads and writes Praat TextGrid files.
//
// The format has two textual variants carrying identical content. The long
// variant is self-describing, one "field = value" per line; the short
// variant is positional, one bare value per line. Both declare the tier
// count and per-tier unit counts up front. Parse detects the variant from
// the first declaration line after the two-line header, and the detection
// can be overridden through ParseOptions for hand-edited files that
// resemble the other variant.
//
// Parsing is strict and atomic: declared counts must match the records
// present, malformed fields fail with a FormatError naming the offending
// line, and no partial Grid is ever returned. Labels are quoted with
// doubled-quote escaping. The long variant permits raw newlines inside a
// quoted label; the short variant is line-oriented and rejects them.
// Two legacy spellings are accepted on input: a point's time field may be
// named "number" or "time", and a point tier's count line may be declared
// as either "points: size" or "intervals: size".
//
// Writing is deterministic and round-trips: parsing the output of Marshal
// yields a structurally equal Grid. Timestamps are rendered with the
// shortest representation that parses back to the identical float64.
// Binary TextGrid files are out of scope and rejected as unsupported.
package textgrid
