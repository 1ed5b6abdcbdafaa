// Package cube reads and writes the plaintext .cube 3D LUT format used by
// most color grading tools.
//
// A file is a header followed by N³ lines of three floats:
//
//	TITLE "Warm"
//	LUT_3D_SIZE 33
//	DOMAIN_MIN 0.0 0.0 0.0
//	DOMAIN_MAX 1.0 1.0 1.0
//	0.000000 0.000000 0.000000
//	...
//
// Entries are listed with R varying fastest, then G, then B, which is also
// the node order of lut.Volume.
package cube

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/cube-lut-mcp/internal/lut"
)

// ParseError reports malformed cube text.
type ParseError struct {
	// Line is the 1-based line the problem was found on, or 0 when the
	// problem concerns the file as a whole.
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("cube: line %d: %s", e.Line, e.Msg)
	}
	return "cube: " + e.Msg
}

func errorf(line int, format string, args ...interface{}) *ParseError {
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// Info describes a parsed file beyond the lookup table itself.
type Info struct {
	Title string `json:"title,omitempty"`

	// Skipped lists unrecognised vendor keywords that were ignored.
	Skipped []string `json:"skipped,omitempty"`
}

// Parse reads cube text from r.
func Parse(r io.Reader) (*lut.Volume, error) {
	v, _, err := ParseWithInfo(r)
	return v, err
}

// ParseString parses cube text held in memory.
func ParseString(text string) (*lut.Volume, error) {
	return Parse(strings.NewReader(text))
}

// ParseWithInfo reads cube text from r and also returns header details that
// do not affect the table.
func ParseWithInfo(r io.Reader) (*lut.Volume, *Info, error) {
	var (
		info      Info
		size      int
		sizeLine  int
		domainMin = lut.UnitMin
		domainMax = lut.UnitMax
		values    []float32
		lineNo    int
	)

	scanner := bufio.NewScanner(r)
	// a 65³ table is ~275k lines; individual lines stay short but allow slack
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		keyword := strings.ToUpper(fields[0])
		if keyword != "TITLE" {
			if i := strings.IndexByte(line, '#'); i >= 0 {
				fields = strings.Fields(line[:i])
			}
		}

		switch {
		case keyword == "TITLE":
			info.Title = strings.Trim(strings.TrimSpace(line[len(fields[0]):]), `"`)

		case keyword == "LUT_3D_SIZE":
			if sizeLine != 0 {
				return nil, nil, errorf(lineNo, "LUT_3D_SIZE repeated (first on line %d)", sizeLine)
			}
			n, err := parseSize(fields)
			if err != nil {
				return nil, nil, errorf(lineNo, "%v", err)
			}
			size, sizeLine = n, lineNo

		case keyword == "DOMAIN_MIN":
			t, err := parseTriple(fields[1:])
			if err != nil {
				return nil, nil, errorf(lineNo, "DOMAIN_MIN: %v", err)
			}
			domainMin = t

		case keyword == "DOMAIN_MAX":
			t, err := parseTriple(fields[1:])
			if err != nil {
				return nil, nil, errorf(lineNo, "DOMAIN_MAX: %v", err)
			}
			domainMax = t

		case keyword == "LUT_3D_INPUT_RANGE":
			if len(fields) != 3 {
				return nil, nil, errorf(lineNo, "LUT_3D_INPUT_RANGE needs 2 values, got %d", len(fields)-1)
			}
			lo, err1 := parseFloat(fields[1])
			hi, err2 := parseFloat(fields[2])
			if err1 != nil || err2 != nil {
				return nil, nil, errorf(lineNo, "LUT_3D_INPUT_RANGE: invalid number")
			}
			domainMin = lut.Triple{R: lo, G: lo, B: lo}
			domainMax = lut.Triple{R: hi, G: hi, B: hi}

		case keyword == "LUT_1D_SIZE":
			return nil, nil, errorf(lineNo, "1D LUTs are not supported")

		case isKeyword(fields[0]):
			log.WithFields(log.Fields{"line": lineNo, "keyword": fields[0]}).Debug("skipping unknown cube keyword")
			info.Skipped = append(info.Skipped, fields[0])

		default:
			t, err := parseTriple(fields)
			if err != nil {
				return nil, nil, errorf(lineNo, "%v", err)
			}
			values = append(values,
				float32(lut.Clamp(t.R, 0, 1)),
				float32(lut.Clamp(t.G, 0, 1)),
				float32(lut.Clamp(t.B, 0, 1)),
			)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("cube: failed to read: %w", err)
	}

	if size == 0 {
		return nil, nil, errorf(0, "missing LUT_3D_SIZE")
	}
	got, want := len(values)/3, size*size*size
	if got != want {
		return nil, nil, errorf(0, "LUT_3D_SIZE %d needs %d entries, got %d", size, want, got)
	}

	v, err := lut.New(size, values, domainMin, domainMax)
	if err != nil {
		return nil, nil, errorf(0, "%v", err)
	}
	return v, &info, nil
}

func parseSize(fields []string) (int, error) {
	if len(fields) != 2 {
		return 0, fmt.Errorf("LUT_3D_SIZE needs 1 value, got %d", len(fields)-1)
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		// some writers emit "33.0"
		f, ferr := parseFloat(fields[1])
		if ferr != nil || f != math.Trunc(f) || f > math.MaxInt32 {
			return 0, fmt.Errorf("invalid LUT_3D_SIZE %q", fields[1])
		}
		n = int(f)
	}
	if n < lut.MinSize {
		return 0, fmt.Errorf("LUT_3D_SIZE %d is below the minimum of %d", n, lut.MinSize)
	}
	if n > lut.MaxSize {
		return 0, fmt.Errorf("LUT_3D_SIZE %d is above the maximum of %d", n, lut.MaxSize)
	}
	return n, nil
}

func parseTriple(fields []string) (lut.Triple, error) {
	if len(fields) != 3 {
		return lut.Triple{}, fmt.Errorf("expected 3 values, got %d", len(fields))
	}
	var t [3]float64
	for i, f := range fields {
		v, err := parseFloat(f)
		if err != nil {
			return lut.Triple{}, err
		}
		t[i] = v
	}
	return lut.Triple{R: t[0], G: t[1], B: t[2]}, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

// isKeyword reports whether s looks like a cube header keyword: an upper-case
// letter followed by upper-case letters, digits or underscores.
func isKeyword(s string) bool {
	if s == "" || s[0] < 'A' || s[0] > 'Z' {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_') {
			return false
		}
	}
	return true
}

// Encode writes v as cube text. An empty title omits the TITLE line.
func Encode(w io.Writer, v *lut.Volume, title string) error {
	bw := bufio.NewWriter(w)

	if title != "" {
		fmt.Fprintf(bw, "TITLE %q\n", title)
	}
	fmt.Fprintf(bw, "LUT_3D_SIZE %d\n", v.Size())
	dmin, dmax := v.DomainMin(), v.DomainMax()
	fmt.Fprintf(bw, "DOMAIN_MIN %s\n", formatTriple(dmin))
	fmt.Fprintf(bw, "DOMAIN_MAX %s\n\n", formatTriple(dmax))

	for i, n := 0, v.Len(); i < n; i++ {
		bw.WriteString(formatTriple(v.Node(i)))
		bw.WriteByte('\n')
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("cube: failed to write: %w", err)
	}
	return nil
}

// Serialize returns v as cube text without a title.
func Serialize(v *lut.Volume) []byte {
	var buf bytes.Buffer
	buf.Grow(v.Len() * 27)
	_ = Encode(&buf, v, "")
	return buf.Bytes()
}

func formatTriple(t lut.Triple) string {
	return strconv.FormatFloat(t.R, 'f', 6, 64) + " " +
		strconv.FormatFloat(t.G, 'f', 6, 64) + " " +
		strconv.FormatFloat(t.B, 'f', 6, 64)
}
