package textgrid

import (
	"strings"
	"testing"

	"github.com/hbuschme/TextGridTools/core/annot"
	"github.com/hbuschme/TextGridTools/core/errors"
)

// longSample and shortSample encode the grid built by referenceGrid, one
// per variant, exactly as Marshal renders them.
const longSample = `File type = "ooTextFile"
Object class = "TextGrid"

xmin = 0
xmax = 2.3
tiers? <exists>
size = 2
item []:
	item [1]:
		class = "IntervalTier"
		name = "words ""quoted"""
		xmin = 0
		xmax = 2.3
		intervals: size = 3
		intervals [1]:
			xmin = 0
			xmax = 0.55
			text = "hello"
		intervals [2]:
			xmin = 0.55
			xmax = 1.2
			text = ""
		intervals [3]:
			xmin = 1.2
			xmax = 2.3
			text = "wo""rld"
	item [2]:
		class = "TextTier"
		name = "tones"
		xmin = 0
		xmax = 2.3
		points: size = 2
		points [1]:
			number = 0.8
			mark = "H*"
		points [2]:
			number = 1.9
			mark = "L-L%"
`

const shortSample = `File type = "ooTextFile"
Object class = "TextGrid"

0
2.3
<exists>
2
"IntervalTier"
"words ""quoted"""
0
2.3
3
0
0.55
"hello"
0.55
1.2
""
1.2
2.3
"wo""rld"
"TextTier"
"tones"
0
2.3
2
0.8
"H*"
1.9
"L-L%"
`

func TestParseLong(t *testing.T) {
	want := referenceGrid(t)
	tests := []struct {
		name string
		in   string
	}{
		{"plain", longSample},
		{"crlf", strings.ReplaceAll(longSample, "\n", "\r\n")},
		{"bom", "\uFEFF" + longSample},
		{"blank lines between records", strings.ReplaceAll(longSample, "\n", "\n\n")},
		{"no trailing newline", strings.TrimSuffix(longSample, "\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseString(tt.in)
			if err != nil {
				t.Fatalf("ParseString error: %v", err)
			}
			assertGridsEqual(t, got, want)
		})
	}
}

func TestParseShort(t *testing.T) {
	want := referenceGrid(t)
	tests := []struct {
		name string
		in   string
	}{
		{"plain", shortSample},
		{"crlf", strings.ReplaceAll(shortSample, "\n", "\r\n")},
		{"bom", "\uFEFF" + shortSample},
		{"legacy file type", strings.Replace(shortSample,
			`File type = "ooTextFile"`, `File type = "ooTextFile short"`, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseString(tt.in)
			if err != nil {
				t.Fatalf("ParseString error: %v", err)
			}
			assertGridsEqual(t, got, want)
		})
	}
}

func TestParseReader(t *testing.T) {
	got, err := Parse(strings.NewReader(longSample))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	assertGridsEqual(t, got, referenceGrid(t))
}

// Praat names a point's time field "number"; older files say "time".
// Some writers also declare a point tier's count as "intervals: size".
// Both legacy spellings must parse.
func TestParseLegacyPointFields(t *testing.T) {
	in := `File type = "ooTextFile"
Object class = "TextGrid"

xmin = 0
xmax = 2.3
tiers? <exists>
size = 1
item []:
	item [1]:
		class = "TextTier"
		name = "tones"
		xmin = 0
		xmax = 2.3
		intervals: size = 2
		points [1]:
			time = 0.8
			mark = "H*"
		points [2]:
			time = 1.9
			mark = "L-L%"
`
	g, err := ParseString(in)
	if err != nil {
		t.Fatalf("ParseString error: %v", err)
	}
	tier, err := g.Tier("tones")
	if err != nil {
		t.Fatalf("Tier(tones) error: %v", err)
	}
	pt, ok := tier.(*annot.PointTier)
	if !ok {
		t.Fatalf("tier is %T, want *annot.PointTier", tier)
	}
	if pt.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", pt.Len())
	}
	if got := pt.At(0); got.Time != 0.8 || got.Text != "H*" {
		t.Errorf("At(0) = %v, want {0.8 H*}", got)
	}
	if got := pt.At(1); got.Time != 1.9 || got.Text != "L-L%" {
		t.Errorf("At(1) = %v, want {1.9 L-L%%}", got)
	}
}

// Praat numbers unit blocks sequentially, but the indices carry no
// information and hand-edited files get them wrong, so they are ignored.
func TestParseBlockIndicesIgnored(t *testing.T) {
	in := `File type = "ooTextFile"
Object class = "TextGrid"

xmin = 0
xmax = 1
tiers? <exists>
size = 1
item []:
	item [7]:
		class = "IntervalTier"
		name = "phones"
		xmin = 0
		xmax = 1
		intervals: size = 2
		intervals []:
			xmin = 0
			xmax = 0.5
			text = "a"
		intervals [99]:
			xmin = 0.5
			xmax = 1
			text = "b"
`
	g, err := ParseString(in)
	if err != nil {
		t.Fatalf("ParseString error: %v", err)
	}
	tier, err := g.Tier("phones")
	if err != nil {
		t.Fatalf("Tier(phones) error: %v", err)
	}
	if tier.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tier.Len())
	}
}

// The long variant carries raw newlines inside quoted labels.
func TestParseMultilineLabel(t *testing.T) {
	in := `File type = "ooTextFile"
Object class = "TextGrid"

xmin = 0
xmax = 1
tiers? <exists>
size = 1
item []:
	item [1]:
		class = "IntervalTier"
		name = "words"
		xmin = 0
		xmax = 1
		intervals: size = 1
		intervals [1]:
			xmin = 0
			xmax = 1
			text = "two
lines"
`
	g, err := ParseString(in)
	if err != nil {
		t.Fatalf("ParseString error: %v", err)
	}
	tier, err := g.Tier("words")
	if err != nil {
		t.Fatalf("Tier(words) error: %v", err)
	}
	it := tier.(*annot.IntervalTier)
	if got, want := it.At(0).Text, "two\nlines"; got != want {
		t.Errorf("At(0).Text = %q, want %q", got, want)
	}
}

func TestParseDropZeroLength(t *testing.T) {
	long := `File type = "ooTextFile"
Object class = "TextGrid"

xmin = 0
xmax = 1
tiers? <exists>
size = 1
item []:
	item [1]:
		class = "IntervalTier"
		name = "phones"
		xmin = 0
		xmax = 1
		intervals: size = 3
		intervals [1]:
			xmin = 0
			xmax = 0.5
			text = "a"
		intervals [2]:
			xmin = 0.5
			xmax = 0.5
			text = ""
		intervals [3]:
			xmin = 0.5
			xmax = 1
			text = "b"
`
	short := `File type = "ooTextFile"
Object class = "TextGrid"

0
1
<exists>
1
"IntervalTier"
"phones"
0
1
3
0
0.5
"a"
0.5
0.5
""
0.5
1
"b"
`
	for _, tt := range []struct {
		name string
		in   string
	}{
		{"long", long},
		{"short", short},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseString(tt.in); !errors.Is(err, errors.ErrFormat) {
				t.Errorf("ParseString error = %v, want ErrFormat for the zero-length interval", err)
			}
			g, err := ParseWithOptions(strings.NewReader(tt.in), ParseOptions{DropZeroLength: true})
			if err != nil {
				t.Fatalf("ParseWithOptions error: %v", err)
			}
			tier, err := g.Tier("phones")
			if err != nil {
				t.Fatalf("Tier(phones) error: %v", err)
			}
			if tier.Len() != 2 {
				t.Errorf("Len() = %d, want 2 after dropping the artifact", tier.Len())
			}
		})
	}
}

func TestParseVariantOverride(t *testing.T) {
	t.Run("short forced on short input", func(t *testing.T) {
		g, err := ParseWithOptions(strings.NewReader(shortSample), ParseOptions{Variant: VariantShort})
		if err != nil {
			t.Fatalf("ParseWithOptions error: %v", err)
		}
		assertGridsEqual(t, g, referenceGrid(t))
	})
	t.Run("short forced on long input", func(t *testing.T) {
		_, err := ParseWithOptions(strings.NewReader(longSample), ParseOptions{Variant: VariantShort})
		var ferr *errors.FormatError
		if !errors.As(err, &ferr) {
			t.Fatalf("error = %v, want FormatError", err)
		}
		if ferr.Line != 4 {
			t.Errorf("error line = %d, want 4", ferr.Line)
		}
	})
	t.Run("long forced on short input", func(t *testing.T) {
		_, err := ParseWithOptions(strings.NewReader(shortSample), ParseOptions{Variant: VariantLong})
		var ferr *errors.FormatError
		if !errors.As(err, &ferr) {
			t.Fatalf("error = %v, want FormatError", err)
		}
		if ferr.Line != 4 {
			t.Errorf("error line = %d, want 4", ferr.Line)
		}
	})
	t.Run("unknown variant", func(t *testing.T) {
		_, err := ParseWithOptions(strings.NewReader(longSample), ParseOptions{Variant: "terse"})
		if !errors.Is(err, errors.ErrStructure) {
			t.Errorf("error = %v, want ErrStructure", err)
		}
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantLine int
		want     string
	}{
		{
			name:     "empty input",
			in:       "",
			wantLine: 1,
			want:     "empty input",
		},
		{
			name:     "binary file",
			in:       "ooBinaryFile\x08TextGrid",
			wantLine: 0,
			want:     "binary TextGrid files are not supported",
		},
		{
			name:     "unknown file type",
			in:       "File type = \"ooSpreadsheet\"\nObject class = \"TextGrid\"\n",
			wantLine: 1,
			want:     "not a text TextGrid",
		},
		{
			name:     "missing object class",
			in:       "File type = \"ooTextFile\"\n",
			wantLine: 2,
			want:     "missing object class line",
		},
		{
			name:     "wrong object class",
			in:       "File type = \"ooTextFile\"\nObject class = \"Pitch\"\n",
			wantLine: 2,
			want:     "not a TextGrid object",
		},
		{
			name: "undetectable variant",
			in: `File type = "ooTextFile"
Object class = "TextGrid"

bogus here
`,
			wantLine: 4,
			want:     "cannot detect variant",
		},
		{
			name: "long malformed number",
			in: `File type = "ooTextFile"
Object class = "TextGrid"

xmin = 0
xmax = fast
`,
			wantLine: 5,
			want:     "cannot parse",
		},
		{
			name: "long inverted domain",
			in: `File type = "ooTextFile"
Object class = "TextGrid"

xmin = 1
xmax = 0
`,
			wantLine: 5,
			want:     "before start",
		},
		{
			name: "long malformed tier count",
			in: `File type = "ooTextFile"
Object class = "TextGrid"

xmin = 0
xmax = 1
tiers? <exists>
size = 2.5
`,
			wantLine: 7,
			want:     "malformed count",
		},
		{
			name: "long negative unit count",
			in: `File type = "ooTextFile"
Object class = "TextGrid"

xmin = 0
xmax = 1
tiers? <exists>
size = 1
item []:
	item [1]:
		class = "IntervalTier"
		name = "phones"
		xmin = 0
		xmax = 1
		intervals: size = -1
`,
			wantLine: 14,
			want:     "malformed count",
		},
		{
			name: "long overlapping intervals",
			in: `File type = "ooTextFile"
Object class = "TextGrid"

xmin = 0
xmax = 1
tiers? <exists>
size = 1
item []:
	item [1]:
		class = "IntervalTier"
		name = "phones"
		xmin = 0
		xmax = 1
		intervals: size = 2
		intervals [1]:
			xmin = 0
			xmax = 0.6
			text = "a"
		intervals [2]:
			xmin = 0.4
			xmax = 1
			text = "b"
`,
			wantLine: 19,
			want:     "overlaps",
		},
		{
			name: "long coverage gap",
			in: `File type = "ooTextFile"
Object class = "TextGrid"

xmin = 0
xmax = 1
tiers? <exists>
size = 1
item []:
	item [1]:
		class = "IntervalTier"
		name = "phones"
		xmin = 0
		xmax = 1
		intervals: size = 1
		intervals [1]:
			xmin = 0.25
			xmax = 1
			text = "late"
`,
			wantLine: 9,
			want:     "starts at",
		},
		{
			name: "long fewer units than declared",
			in: `File type = "ooTextFile"
Object class = "TextGrid"

xmin = 0
xmax = 1
tiers? <exists>
size = 1
item []:
	item [1]:
		class = "IntervalTier"
		name = "phones"
		xmin = 0
		xmax = 1
		intervals: size = 2
		intervals [1]:
			xmin = 0
			xmax = 0.5
			text = "a"`,
			wantLine: 18,
			want:     "unexpected end of input",
		},
		{
			name: "long more units than declared",
			in: `File type = "ooTextFile"
Object class = "TextGrid"

xmin = 0
xmax = 1
tiers? <exists>
size = 1
item []:
	item [1]:
		class = "IntervalTier"
		name = "phones"
		xmin = 0
		xmax = 1
		intervals: size = 1
		intervals [1]:
			xmin = 0
			xmax = 1
			text = "a"
		intervals [2]:
`,
			wantLine: 19,
			want:     "unexpected content after the last declared tier",
		},
		{
			name: "long interval tier declaring point units",
			in: `File type = "ooTextFile"
Object class = "TextGrid"

xmin = 0
xmax = 1
tiers? <exists>
size = 1
item []:
	item [1]:
		class = "IntervalTier"
		name = "phones"
		xmin = 0
		xmax = 1
		points: size = 1
`,
			wantLine: 14,
			want:     "declares",
		},
		{
			name: "long unknown tier class",
			in: `File type = "ooTextFile"
Object class = "TextGrid"

xmin = 0
xmax = 1
tiers? <exists>
size = 1
item []:
	item [1]:
		class = "SpectrumTier"
		name = "phones"
		xmin = 0
		xmax = 1
		intervals: size = 0
`,
			wantLine: 10,
			want:     "unknown tier class",
		},
		{
			name: "long duplicate point time",
			in: `File type = "ooTextFile"
Object class = "TextGrid"

xmin = 0
xmax = 1
tiers? <exists>
size = 1
item []:
	item [1]:
		class = "TextTier"
		name = "tones"
		xmin = 0
		xmax = 1
		points: size = 2
		points [1]:
			number = 0.5
			mark = "H*"
		points [2]:
			number = 0.5
			mark = "L%"
`,
			wantLine: 18,
			want:     "already present",
		},
		{
			name: "long tier outside grid domain",
			in: `File type = "ooTextFile"
Object class = "TextGrid"

xmin = 0
xmax = 1
tiers? <exists>
size = 1
item []:
	item [1]:
		class = "IntervalTier"
		name = "phones"
		xmin = 0
		xmax = 5
		intervals: size = 1
		intervals [1]:
			xmin = 0
			xmax = 5
			text = "a"
`,
			wantLine: 9,
			want:     "outside grid domain",
		},
		{
			name: "short malformed number",
			in: `File type = "ooTextFile"
Object class = "TextGrid"

0
xyz
`,
			wantLine: 5,
			want:     "malformed number",
		},
		{
			name: "short rejects nan",
			in: `File type = "ooTextFile"
Object class = "TextGrid"

0
nan
`,
			wantLine: 5,
			want:     "malformed number",
		},
		{
			name: "short negative tier count",
			in: `File type = "ooTextFile"
Object class = "TextGrid"

0
1
<exists>
-3
`,
			wantLine: 7,
			want:     "malformed count",
		},
		{
			name: "short missing exists flag",
			in: `File type = "ooTextFile"
Object class = "TextGrid"

0
1
1
`,
			wantLine: 6,
			want:     "<exists>",
		},
		{
			name: "short unknown tier class",
			in: `File type = "ooTextFile"
Object class = "TextGrid"

0
1
<exists>
1
"Spectrum"
"x"
0
1
0
`,
			wantLine: 8,
			want:     "unknown tier class",
		},
		{
			name: "short unterminated label",
			in: `File type = "ooTextFile"
Object class = "TextGrid"

0
1
<exists>
1
"IntervalTier"
"words"
0
1
1
0
1
"cut
`,
			wantLine: 15,
			want:     "cannot carry newlines",
		},
		{
			name: "short unquoted label",
			in: `File type = "ooTextFile"
Object class = "TextGrid"

0
1
<exists>
1
"IntervalTier"
"words"
0
1
1
0
1
hello
`,
			wantLine: 15,
			want:     "expected a quoted label",
		},
		{
			name: "short fewer units than declared",
			in: `File type = "ooTextFile"
Object class = "TextGrid"

0
1
<exists>
1
"IntervalTier"
"words"
0
1
2
0
0.5
"a"`,
			wantLine: 15,
			want:     "missing interval start",
		},
		{
			name: "short overlapping intervals",
			in: `File type = "ooTextFile"
Object class = "TextGrid"

0
1
<exists>
1
"IntervalTier"
"words"
0
1
2
0
0.6
"a"
0.4
1
"b"
`,
			wantLine: 16,
			want:     "overlaps",
		},
		{
			name: "short coverage gap",
			in: `File type = "ooTextFile"
Object class = "TextGrid"

0
1
<exists>
1
"IntervalTier"
"words"
0
1
1
0.25
1
"late"
`,
			wantLine: 8,
			want:     "starts at",
		},
		{
			name: "short more content than declared",
			in: `File type = "ooTextFile"
Object class = "TextGrid"

0
1
<exists>
1
"IntervalTier"
"words"
0
1
1
0
1
"a"
7
`,
			wantLine: 16,
			want:     "unexpected content after the last declared tier",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ParseString(tt.in)
			if g != nil {
				t.Fatalf("ParseString returned a grid alongside error %v", err)
			}
			var ferr *errors.FormatError
			if !errors.As(err, &ferr) {
				t.Fatalf("ParseString error = %v, want FormatError", err)
			}
			if ferr.Line != tt.wantLine {
				t.Errorf("error line = %d, want %d (error: %v)", ferr.Line, tt.wantLine, err)
			}
			if !strings.Contains(ferr.Message, tt.want) {
				t.Errorf("error message %q does not contain %q", ferr.Message, tt.want)
			}
			if !errors.Is(err, errors.ErrFormat) {
				t.Errorf("error %v does not match ErrFormat", err)
			}
		})
	}
}
