package cube

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ironsheep/cube-lut-mcp/internal/lut"
)

// identityCube builds cube text for an identity table of the given size.
func identityCube(size int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TITLE \"identity\"\nLUT_3D_SIZE %d\n", size)
	for bi := 0; bi < size; bi++ {
		for gi := 0; gi < size; gi++ {
			for ri := 0; ri < size; ri++ {
				fmt.Fprintf(&b, "%f %f %f\n",
					float64(ri)/float64(size-1), float64(gi)/float64(size-1), float64(bi)/float64(size-1))
			}
		}
	}
	return b.String()
}

// nodes flattens a volume into a comparable slice.
func nodes(v *lut.Volume) []lut.Triple {
	out := make([]lut.Triple, v.Len())
	for i := range out {
		out[i] = v.Node(i)
	}
	return out
}

func TestParse_MinimalIdentity(t *testing.T) {
	text := `# minimal
LUT_3D_SIZE 2
0 0 0
1 0 0
0 1 0
1 1 0
0 0 1
1 0 1
0 1 1
1 1 1
`
	v, err := ParseString(text)
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	if v.Size() != 2 {
		t.Fatalf("Size: got %d, want 2", v.Size())
	}
	if got := v.At(1, 1, 1); got != (lut.Triple{R: 1, G: 1, B: 1}) {
		t.Errorf("node [1,1,1]: got %+v, want (1,1,1)", got)
	}
	if got := v.At(1, 0, 0); got != (lut.Triple{R: 1}) {
		t.Errorf("node [1,0,0]: got %+v, want red", got)
	}
	if got := v.At(0, 0, 1); got != (lut.Triple{B: 1}) {
		t.Errorf("node [0,0,1]: got %+v, want blue", got)
	}
	if v.DomainMin() != lut.UnitMin || v.DomainMax() != lut.UnitMax {
		t.Errorf("default domain: got %+v..%+v", v.DomainMin(), v.DomainMax())
	}
}

func TestParse_EntryCountMismatch(t *testing.T) {
	var b strings.Builder
	b.WriteString("LUT_3D_SIZE 4\n")
	for i := 0; i < 10; i++ {
		b.WriteString("0.5 0.5 0.5\n")
	}

	v, err := ParseString(b.String())
	if err == nil {
		t.Fatal("ParseString should fail on a short table")
	}
	if v != nil {
		t.Error("no volume should be returned on error")
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error %T is not a *ParseError", err)
	}
	if !strings.Contains(pe.Msg, "64") || !strings.Contains(pe.Msg, "10") {
		t.Errorf("message should mention expected and actual counts: %q", pe.Msg)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantLine int
	}{
		{"missing size", "0 0 0\n1 1 1\n", 0},
		{"size not a number", "LUT_3D_SIZE big\n", 1},
		{"size too small", "LUT_3D_SIZE 1\n0 0 0\n", 1},
		{"size fractional", "LUT_3D_SIZE 2.5\n", 1},
		{"size too large", "LUT_3D_SIZE 257\n", 1},
		{"size cube wraps int", "LUT_3D_SIZE 4194304\n", 1},
		{"size cube wraps int as float", "LUT_3D_SIZE 4194304.0\n", 1},
		{"size without value", "LUT_3D_SIZE\n", 1},
		{"repeated size", "LUT_3D_SIZE 2\nLUT_3D_SIZE 2\n", 2},
		{"non-numeric token", "LUT_3D_SIZE 2\n0 0 0\n0 abc 0\n", 3},
		{"two values", "LUT_3D_SIZE 2\n0 0\n", 2},
		{"four values", "LUT_3D_SIZE 2\n0 0 0 0\n", 2},
		{"nan value", "LUT_3D_SIZE 2\nNaN 0 0\n", 2},
		{"bad domain", "DOMAIN_MIN 0 0\nLUT_3D_SIZE 2\n", 1},
		{"one dimensional", "LUT_1D_SIZE 1024\n", 1},
		{"too many entries", "LUT_3D_SIZE 2\n" + strings.Repeat("0 0 0\n", 9), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.text)
			if err == nil {
				t.Fatal("expected a parse error")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %T is not a *ParseError", err)
			}
			if pe.Line != tt.wantLine {
				t.Errorf("Line: got %d, want %d (%v)", pe.Line, tt.wantLine, err)
			}
		})
	}
}

func TestParse_HeaderVariants(t *testing.T) {
	body := strings.Repeat("0.25 0.5 0.75\n", 8)
	tests := []struct {
		name    string
		text    string
		wantMin lut.Triple
		wantMax lut.Triple
	}{
		{
			"explicit domain",
			"LUT_3D_SIZE 2\nDOMAIN_MIN 0.1 0.2 0.3\nDOMAIN_MAX 0.9 1.5 2\n" + body,
			lut.Triple{R: 0.1, G: 0.2, B: 0.3},
			lut.Triple{R: 0.9, G: 1.5, B: 2},
		},
		{
			"lower-case keywords",
			"lut_3d_size 2\ndomain_max 2 2 2\n" + body,
			lut.UnitMin,
			lut.Triple{R: 2, G: 2, B: 2},
		},
		{
			"input range",
			"LUT_3D_SIZE 2\nLUT_3D_INPUT_RANGE -0.5 1.5\n" + body,
			lut.Triple{R: -0.5, G: -0.5, B: -0.5},
			lut.Triple{R: 1.5, G: 1.5, B: 1.5},
		},
		{
			"size spelled as float",
			"LUT_3D_SIZE 2.0\n" + body,
			lut.UnitMin,
			lut.UnitMax,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseString(tt.text)
			if err != nil {
				t.Fatalf("ParseString failed: %v", err)
			}
			if v.DomainMin() != tt.wantMin {
				t.Errorf("DomainMin: got %+v, want %+v", v.DomainMin(), tt.wantMin)
			}
			if v.DomainMax() != tt.wantMax {
				t.Errorf("DomainMax: got %+v, want %+v", v.DomainMax(), tt.wantMax)
			}
		})
	}
}

func TestParse_CommentsAndVendorKeywords(t *testing.T) {
	text := "\ufeffTITLE \"Look #2\"\n" +
		"# generated\n" +
		"\n" +
		"LUT_IN_VIDEO_RANGE\n" +
		"LUT_3D_SIZE 2 # two\n" +
		strings.Repeat("   0.1 0.2 0.3   # entry\n", 8)

	v, info, err := ParseWithInfo(strings.NewReader(text))
	if err != nil {
		t.Fatalf("ParseWithInfo failed: %v", err)
	}
	if info.Title != "Look #2" {
		t.Errorf("Title: got %q, want %q", info.Title, "Look #2")
	}
	if diff := cmp.Diff([]string{"LUT_IN_VIDEO_RANGE"}, info.Skipped); diff != "" {
		t.Errorf("Skipped mismatch (-want +got):\n%s", diff)
	}
	if got := v.At(1, 1, 1); math.Abs(got.G-0.2) > 1e-6 {
		t.Errorf("entry: got %+v", got)
	}
}

func TestParse_ClampsValues(t *testing.T) {
	text := "LUT_3D_SIZE 2\n-0.5 1.5 0.5\n" + strings.Repeat("0 0 0\n", 7)
	v, err := ParseString(text)
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	if got := v.At(0, 0, 0); got != (lut.Triple{R: 0, G: 1, B: 0.5}) {
		t.Errorf("clamped entry: got %+v, want (0,1,0.5)", got)
	}
}

func TestParse_LargeTable(t *testing.T) {
	v, err := ParseString(identityCube(33))
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	if !v.Equal(lut.Identity(33), 1e-6) {
		t.Error("33-point identity file does not match lut.Identity")
	}
}

func TestRoundTrip(t *testing.T) {
	texts := map[string]string{
		"identity 5": identityCube(5),
		"with domain": "LUT_3D_SIZE 2\nDOMAIN_MIN 0.1 0.2 0.3\nDOMAIN_MAX 0.9 0.8 0.7\n" +
			"0.1 0.2 0.3\n0.4 0.5 0.6\n0.7 0.8 0.9\n0.123456 0.654321 0.5\n" +
			"1 0 1\n0 1 0\n0.333333 0.666667 1\n0.999999 0.000001 0.5\n",
	}

	for name, text := range texts {
		t.Run(name, func(t *testing.T) {
			first, err := ParseString(text)
			if err != nil {
				t.Fatalf("ParseString failed: %v", err)
			}
			second, err := ParseString(string(Serialize(first)))
			if err != nil {
				t.Fatalf("re-parse of serialized text failed: %v", err)
			}

			if first.Size() != second.Size() {
				t.Fatalf("Size: got %d, want %d", second.Size(), first.Size())
			}
			if diff := cmp.Diff(first.DomainMin(), second.DomainMin()); diff != "" {
				t.Errorf("DomainMin mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(first.DomainMax(), second.DomainMax()); diff != "" {
				t.Errorf("DomainMax mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(nodes(first), nodes(second), cmpopts.EquateApprox(0, 1e-6)); diff != "" {
				t.Errorf("nodes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncode_Layout(t *testing.T) {
	var b strings.Builder
	if err := Encode(&b, lut.Identity(2), "custom"); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")

	want := []string{
		`TITLE "custom"`,
		"LUT_3D_SIZE 2",
		"DOMAIN_MIN 0.000000 0.000000 0.000000",
		"DOMAIN_MAX 1.000000 1.000000 1.000000",
		"",
		"0.000000 0.000000 0.000000",
		"1.000000 0.000000 0.000000",
		"0.000000 1.000000 0.000000",
		"1.000000 1.000000 0.000000",
		"0.000000 0.000000 1.000000",
		"1.000000 0.000000 1.000000",
		"0.000000 1.000000 1.000000",
		"1.000000 1.000000 1.000000",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("Encode output mismatch (-want +got):\n%s", diff)
	}
}

func TestSerialize_NoTitle(t *testing.T) {
	out := string(Serialize(lut.Identity(3)))
	if strings.Contains(out, "TITLE") {
		t.Error("Serialize should not write a TITLE line")
	}
	if !strings.HasPrefix(out, "LUT_3D_SIZE 3\n") {
		t.Errorf("unexpected header: %q", out[:20])
	}
}

func TestParseError_Message(t *testing.T) {
	if got := (&ParseError{Line: 7, Msg: "bad"}).Error(); got != "cube: line 7: bad" {
		t.Errorf("got %q", got)
	}
	if got := (&ParseError{Msg: "missing LUT_3D_SIZE"}).Error(); got != "cube: missing LUT_3D_SIZE" {
		t.Errorf("got %q", got)
	}
}
