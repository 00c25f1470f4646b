// Command tgt is the CLI tool for TextGridTools.
// It provides commands for converting annotation files, extracting and
// shifting annotation windows, computing inter-annotator agreement, and
// managing corpus databases and bundle archives.
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/hbuschme/TextGridTools/core/agreement"
	"github.com/hbuschme/TextGridTools/core/annot"
	"github.com/hbuschme/TextGridTools/core/bundle"
	"github.com/hbuschme/TextGridTools/core/eaf"
	"github.com/hbuschme/TextGridTools/core/store"
	"github.com/hbuschme/TextGridTools/core/textgrid"
	"github.com/hbuschme/TextGridTools/internal/fileio"
	"github.com/hbuschme/TextGridTools/internal/logging"
)

const version = "0.3.0"

// CLI defines the command-line interface for tgt.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" default:"warn" help:"Log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" default:"text" help:"Log format (text, json)"`

	// Commands
	Convert ConvertCmd  `cmd:"" help:"Convert an annotation file to another representation"`
	Tiers   TiersCmd    `cmd:"" help:"Print the tier names of an annotation file"`
	Extract ExtractCmd  `cmd:"" help:"Extract the part of an annotation file between two times"`
	Shift   ShiftCmd    `cmd:"" help:"Shift all annotations by a time delta"`
	Agree   AgreeCmd    `cmd:"" help:"Compute inter-annotator agreement between tiers"`
	Concat  ConcatCmd   `cmd:"" help:"Concatenate annotation files end to end"`
	Corpus  CorpusGroup `cmd:"" help:"Corpus database operations (init, add, list, show, rm, export)"`
	Bundle  BundleGroup `cmd:"" help:"Bundle archive operations (pack, unpack, verify)"`
	Version VersionCmd  `cmd:"" help:"Print version information"`
}

// ConvertCmd converts an annotation file to another representation.
type ConvertCmd struct {
	Path     string `arg:"" help:"Path to annotation file" type:"existingfile"`
	To       string `required:"" enum:"long,short,eaf,csv" help:"Target representation"`
	Out      string `short:"o" help:"Output path (default: stdout)" type:"path"`
	Variant  string `enum:"auto,long,short" default:"auto" help:"Force the input variant instead of detecting it"`
	Encoding string `enum:"utf-8,utf-16le,utf-16be" default:"utf-8" help:"Output text encoding"`
}

func (c *ConvertCmd) Run() error {
	g, _, err := readAnnotationFile(c.Path, c.Variant)
	if err != nil {
		return err
	}

	out, err := renderGrid(g, c.To)
	if err != nil {
		return err
	}

	if c.Out == "" {
		_, err := os.Stdout.Write(out)
		return err
	}

	enc, err := fileio.EncodingFromString(c.Encoding)
	if err != nil {
		return err
	}
	if err := fileio.WriteFile(c.Out, out, enc); err != nil {
		return err
	}

	logging.ConvertReport(c.Path, c.Out, c.To)
	fmt.Printf("Converted: %s\n", c.Path)
	fmt.Printf("  Output: %s (%s, %s)\n", c.Out, c.To, c.Encoding)
	return nil
}

// TiersCmd prints the tier names of an annotation file, one per line.
type TiersCmd struct {
	Path string `arg:"" help:"Path to annotation file" type:"existingfile"`
}

func (c *TiersCmd) Run() error {
	g, _, err := readAnnotationFile(c.Path, "auto")
	if err != nil {
		return err
	}
	for _, name := range g.TierNames() {
		fmt.Println(name)
	}
	return nil
}

// ExtractCmd extracts the part of an annotation file between two times.
type ExtractCmd struct {
	Path  string  `arg:"" help:"Path to annotation file" type:"existingfile"`
	Start float64 `short:"s" required:"" help:"Window start time in seconds"`
	End   float64 `short:"e" required:"" help:"Window end time in seconds"`
	Mode  string  `enum:"strict,lax" default:"lax" help:"strict keeps only fully contained annotations, lax clips stragglers"`
	Out   string  `short:"o" required:"" help:"Output path" type:"path"`
}

func (c *ExtractCmd) Run() error {
	g, variant, err := readAnnotationFile(c.Path, "auto")
	if err != nil {
		return err
	}

	part, err := g.Crop(annot.Time(c.Start), annot.Time(c.End), annot.CropMode(c.Mode))
	if err != nil {
		return err
	}
	// Strict cropping can leave coverage gaps; fill them so the result
	// serializes.
	part = part.FillGaps()

	if err := writeGrid(c.Out, part, variant); err != nil {
		return err
	}

	fmt.Printf("Extracted: %s\n", c.Path)
	fmt.Printf("  Window: [%s, %s] (%s)\n", part.Start(), part.End(), c.Mode)
	fmt.Printf("  Output: %s\n", c.Out)
	return nil
}

// ShiftCmd shifts every annotation and the time domain by a delta.
type ShiftCmd struct {
	Path string  `arg:"" help:"Path to annotation file" type:"existingfile"`
	By   float64 `required:"" help:"Time delta in seconds (may be negative)"`
	Out  string  `short:"o" required:"" help:"Output path" type:"path"`
}

func (c *ShiftCmd) Run() error {
	g, variant, err := readAnnotationFile(c.Path, "auto")
	if err != nil {
		return err
	}

	shifted := g.Shift(annot.Time(c.By))
	if err := writeGrid(c.Out, shifted, variant); err != nil {
		return err
	}

	fmt.Printf("Shifted: %s by %ss\n", c.Path, annot.Time(c.By))
	fmt.Printf("  Domain: [%s, %s]\n", shifted.Start(), shifted.End())
	fmt.Printf("  Output: %s\n", c.Out)
	return nil
}

// AgreeCmd computes an inter-annotator agreement coefficient.
type AgreeCmd struct {
	Paths     []string `arg:"" help:"Annotation files" type:"existingfile"`
	Method    string   `enum:"cohen,fleiss,scott" default:"cohen" help:"Agreement coefficient"`
	Tiers     []string `name:"tier" help:"Tier names to compare (default: all tiers of every file)"`
	Tolerance float64  `help:"Time tolerance in seconds for matching boundaries"`
}

func (c *AgreeCmd) Run() error {
	var tiers []annot.Tier
	for _, path := range c.Paths {
		g, _, err := readAnnotationFile(path, "auto")
		if err != nil {
			return err
		}
		names := c.Tiers
		if len(names) == 0 {
			names = g.TierNames()
		}
		for _, name := range names {
			t, err := g.Tier(name)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			tiers = append(tiers, t)
		}
	}

	opts := agreement.Options{Tolerance: annot.Time(c.Tolerance)}

	var result *agreement.Result
	var err error
	switch c.Method {
	case "cohen":
		if len(tiers) != 2 {
			return fmt.Errorf("cohen compares exactly two tiers, got %d", len(tiers))
		}
		result, err = agreement.CohenKappa(tiers[0], tiers[1], opts)
	case "scott":
		if len(tiers) != 2 {
			return fmt.Errorf("scott compares exactly two tiers, got %d", len(tiers))
		}
		result, err = agreement.ScottPi(tiers[0], tiers[1], opts)
	case "fleiss":
		result, err = agreement.FleissKappa(tiers, opts)
	}
	if err != nil {
		return err
	}

	coefficient := "Kappa"
	if c.Method == "scott" {
		coefficient = "Pi"
	}

	fmt.Printf("Method: %s\n", c.Method)
	fmt.Printf("  Raters: %s\n", strings.Join(result.Alignment.Raters, ", "))
	fmt.Printf("  Aligned units: %d\n", len(result.Alignment.Units))
	fmt.Printf("  Observed agreement: %.4f\n", result.Observed)
	fmt.Printf("  Expected agreement: %.4f\n", result.Expected)
	fmt.Printf("  %s: %.4f\n", coefficient, result.Kappa)
	fmt.Println()

	fmt.Printf("%-12s %-12s", "START", "END")
	for _, rater := range result.Alignment.Raters {
		fmt.Printf(" %-20s", rater)
	}
	fmt.Println()
	for _, unit := range result.Alignment.Units {
		fmt.Printf("%-12s %-12s", unit.Start, unit.End)
		for _, label := range unit.Labels {
			fmt.Printf(" %-20s", label)
		}
		fmt.Println()
	}

	return nil
}

// ConcatCmd concatenates annotation files end to end.
type ConcatCmd struct {
	Paths []string `arg:"" help:"Annotation files in order" type:"existingfile"`
	Out   string   `short:"o" required:"" help:"Output path" type:"path"`
}

func (c *ConcatCmd) Run() error {
	var grids []*annot.Grid
	variant := textgrid.VariantLong
	for i, path := range c.Paths {
		g, v, err := readAnnotationFile(path, "auto")
		if err != nil {
			return err
		}
		if i == 0 {
			variant = v
		}
		grids = append(grids, g)
	}

	combined, err := annot.Concat(grids...)
	if err != nil {
		return err
	}

	if err := writeGrid(c.Out, combined, variant); err != nil {
		return err
	}

	fmt.Printf("Concatenated %d file(s)\n", len(c.Paths))
	fmt.Printf("  Domain: [%s, %s]\n", combined.Start(), combined.End())
	fmt.Printf("  Output: %s\n", c.Out)
	return nil
}

// CorpusGroup contains corpus database operations.
type CorpusGroup struct {
	DB string `help:"Path to the corpus database" default:"corpus.db" type:"path"`

	Init   CorpusInitCmd   `cmd:"" help:"Create an empty corpus database"`
	Add    CorpusAddCmd    `cmd:"" help:"Parse annotation files and store them"`
	List   CorpusListCmd   `cmd:"" help:"List stored grids"`
	Show   CorpusShowCmd   `cmd:"" help:"Show the tiers of a stored grid"`
	Rm     CorpusRmCmd     `cmd:"" help:"Remove a stored grid"`
	Export CorpusExportCmd `cmd:"" help:"Export a stored grid to a file"`
}

// CorpusInitCmd creates an empty corpus database.
type CorpusInitCmd struct{}

func (c *CorpusInitCmd) Run() error {
	s, err := store.Open(CLI.Corpus.DB)
	if err != nil {
		return err
	}
	defer s.Close()

	info := store.GetInfo()
	fmt.Printf("Initialized corpus: %s\n", CLI.Corpus.DB)
	fmt.Printf("  Driver: %s (%s)\n", info.DriverType, info.Package)
	return nil
}

// CorpusAddCmd parses annotation files and stores them.
type CorpusAddCmd struct {
	Paths []string `arg:"" help:"Annotation files to store" type:"existingfile"`
	Name  string   `help:"Grid name (single file only; default: file stem)"`
}

func (c *CorpusAddCmd) Run() error {
	if c.Name != "" && len(c.Paths) > 1 {
		return fmt.Errorf("--name applies to a single file, got %d", len(c.Paths))
	}

	s, err := store.Open(CLI.Corpus.DB)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, path := range c.Paths {
		g, _, err := readAnnotationFile(path, "auto")
		if err != nil {
			return err
		}
		name := c.Name
		if name == "" {
			name = gridName(path)
		}
		if err := s.SaveGrid(name, g); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Printf("Added: %s (%d tiers, [%s, %s])\n", name, g.Len(), g.Start(), g.End())
	}
	return nil
}

// CorpusListCmd lists stored grids.
type CorpusListCmd struct{}

func (c *CorpusListCmd) Run() error {
	s, err := store.Open(CLI.Corpus.DB)
	if err != nil {
		return err
	}
	defer s.Close()

	grids, err := s.ListGrids()
	if err != nil {
		return err
	}
	if len(grids) == 0 {
		fmt.Println("Corpus is empty.")
		return nil
	}

	fmt.Printf("%-24s %-6s %-10s %-10s %s\n", "NAME", "TIERS", "START", "END", "CREATED")
	for _, gi := range grids {
		fmt.Printf("%-24s %-6d %-10s %-10s %s\n",
			gi.Name, gi.Tiers, gi.Start, gi.End, gi.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("\nTotal: %d grid(s)\n", len(grids))
	return nil
}

// CorpusShowCmd shows the tiers of a stored grid.
type CorpusShowCmd struct {
	Name string `arg:"" help:"Grid name"`
}

func (c *CorpusShowCmd) Run() error {
	s, err := store.Open(CLI.Corpus.DB)
	if err != nil {
		return err
	}
	defer s.Close()

	g, err := s.LoadGrid(c.Name)
	if err != nil {
		return err
	}
	fingerprint, err := textgrid.Fingerprint(g)
	if err != nil {
		return err
	}

	fmt.Printf("Grid: %s\n", c.Name)
	fmt.Printf("  Domain: [%s, %s]\n", g.Start(), g.End())
	fmt.Printf("  Fingerprint: %s\n", fingerprint)
	fmt.Println("  Tiers:")
	for t := range g.Tiers() {
		fmt.Printf("    %-24s %-12s %d units\n", t.Name(), t.Class(), t.Len())
	}
	return nil
}

// CorpusRmCmd removes a stored grid.
type CorpusRmCmd struct {
	Name string `arg:"" help:"Grid name"`
}

func (c *CorpusRmCmd) Run() error {
	s, err := store.Open(CLI.Corpus.DB)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.DeleteGrid(c.Name); err != nil {
		return err
	}
	fmt.Printf("Removed: %s\n", c.Name)
	return nil
}

// CorpusExportCmd exports a stored grid to a file.
type CorpusExportCmd struct {
	Name string `arg:"" help:"Grid name"`
	To   string `enum:"long,short,eaf,csv" default:"long" help:"Target representation"`
	Out  string `short:"o" help:"Output path (default: derived from the grid name)" type:"path"`
}

func (c *CorpusExportCmd) Run() error {
	s, err := store.Open(CLI.Corpus.DB)
	if err != nil {
		return err
	}
	defer s.Close()

	g, err := s.LoadGrid(c.Name)
	if err != nil {
		return err
	}

	out, err := renderGrid(g, c.To)
	if err != nil {
		return err
	}

	path := c.Out
	if path == "" {
		path = outputName(c.Name, c.To)
	}
	if err := fileio.WriteFile(path, out, fileio.UTF8); err != nil {
		return err
	}

	fmt.Printf("Exported: %s\n", c.Name)
	fmt.Printf("  Output: %s (%s)\n", path, c.To)
	return nil
}

// BundleGroup contains bundle archive operations.
type BundleGroup struct {
	Pack   BundlePackCmd   `cmd:"" help:"Pack annotation files into a bundle archive"`
	Unpack BundleUnpackCmd `cmd:"" help:"Extract a bundle archive"`
	Verify BundleVerifyCmd `cmd:"" help:"Check bundle contents against its manifest"`
}

// BundlePackCmd packs annotation files into a bundle archive.
type BundlePackCmd struct {
	Paths       []string `arg:"" help:"Annotation files to pack" type:"existingfile"`
	Out         string   `short:"o" required:"" help:"Output archive path" type:"path"`
	Compression string   `enum:"xz,gzip" default:"xz" help:"Archive compression"`
}

func (c *BundlePackCmd) Run() error {
	opts := bundle.PackOptions{Compression: bundle.Compression(c.Compression)}
	manifest, err := bundle.Pack(c.Out, c.Paths, opts)
	if err != nil {
		return err
	}

	fmt.Printf("Packed %d file(s) into %s\n", len(manifest.Files), c.Out)
	fmt.Printf("  Bundle ID: %s\n", manifest.BundleID)
	fmt.Printf("  Created: %s\n", manifest.CreatedAt)
	return nil
}

// BundleUnpackCmd extracts a bundle archive.
type BundleUnpackCmd struct {
	Archive string `arg:"" help:"Path to bundle archive" type:"existingfile"`
	Dest    string `short:"o" default:"." help:"Destination directory" type:"path"`
}

func (c *BundleUnpackCmd) Run() error {
	manifest, err := bundle.Unpack(c.Archive, c.Dest)
	if err != nil {
		return err
	}

	fmt.Printf("Unpacked %s into %s\n", c.Archive, c.Dest)
	for _, rec := range manifest.Files {
		fmt.Printf("  %s (%d bytes)\n", rec.Name, rec.SizeBytes)
	}
	return nil
}

// BundleVerifyCmd checks bundle contents against the manifest.
type BundleVerifyCmd struct {
	Archive string `arg:"" help:"Path to bundle archive" type:"existingfile"`
}

func (c *BundleVerifyCmd) Run() error {
	manifest, err := bundle.Verify(c.Archive)
	if err != nil {
		return err
	}

	fmt.Printf("Bundle: %s\n", c.Archive)
	fmt.Printf("  Bundle ID: %s\n", manifest.BundleID)
	fmt.Printf("  Created: %s\n", manifest.CreatedAt)
	for _, rec := range manifest.Files {
		fmt.Printf("  [OK] %s (%d bytes)\n", rec.Name, rec.SizeBytes)
	}
	fmt.Println("Verification passed!")
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	info := store.GetInfo()
	fmt.Printf("tgt version %s\n", version)
	fmt.Printf("  SQLite driver: %s (%s)\n", info.DriverType, info.Package)
	return nil
}

// Helper functions

// readAnnotationFile loads a TextGrid or EAF file into a grid. It also
// reports the variant to use when writing a derived grid back out: the
// detected input variant for TextGrid files, long for everything else.
func readAnnotationFile(path, variant string) (*annot.Grid, textgrid.Variant, error) {
	data, err := fileio.ReadFile(path)
	if err != nil {
		return nil, textgrid.VariantLong, err
	}

	began := time.Now()
	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("<")) {
		g, err := eaf.Import(data)
		if err != nil {
			return nil, textgrid.VariantLong, err
		}
		logging.ParseReport(path, "eaf", g.Len(), time.Since(began))
		return g, textgrid.VariantLong, nil
	}

	forced := textgrid.VariantAuto
	if variant != "auto" {
		forced = textgrid.Variant(variant)
	}
	g, err := textgrid.ParseWithOptions(bytes.NewReader(data), textgrid.ParseOptions{Variant: forced})
	if err != nil {
		return nil, textgrid.VariantLong, err
	}

	out := forced
	if !out.IsValid() {
		if out, err = textgrid.DetectVariant(data); err != nil {
			return nil, textgrid.VariantLong, err
		}
	}
	logging.ParseReport(path, string(out), g.Len(), time.Since(began))
	return g, out, nil
}

// renderGrid serializes a grid into the requested representation.
func renderGrid(g *annot.Grid, to string) ([]byte, error) {
	switch to {
	case "long":
		return textgrid.Marshal(g, textgrid.VariantLong)
	case "short":
		return textgrid.Marshal(g, textgrid.VariantShort)
	case "eaf":
		return eaf.Export(g, eaf.ExportOptions{})
	case "csv":
		var buf bytes.Buffer
		if err := textgrid.WriteTable(&buf, g, ','); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown target representation: %s", to)
}

// writeGrid marshals a grid and writes it as UTF-8.
func writeGrid(path string, g *annot.Grid, variant textgrid.Variant) error {
	out, err := textgrid.Marshal(g, variant)
	if err != nil {
		return err
	}
	return fileio.WriteFile(path, out, fileio.UTF8)
}

// gridName derives a corpus grid name from a file path.
func gridName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// outputName derives a default export file name.
func outputName(name, to string) string {
	switch to {
	case "eaf":
		return name + ".eaf"
	case "csv":
		return name + ".csv"
	}
	return name + ".TextGrid"
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("tgt"),
		kong.Description("TextGridTools - tooling for time-aligned annotation data"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	level, err := logging.LevelFromString(CLI.LogLevel)
	ctx.FatalIfErrorf(err)
	format, err := logging.FormatFromString(CLI.LogFormat)
	ctx.FatalIfErrorf(err)
	logging.InitLogger(level, format)

	err = ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
