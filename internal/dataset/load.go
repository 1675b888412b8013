package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SeparatorPolicy controls how the field separator is chosen.
type SeparatorPolicy struct {
	// Candidates are tried in order when Fixed is 0.
	Candidates []rune
	// MinColumns: the first candidate yielding more columns than this wins.
	// Otherwise the last successful parse is kept.
	MinColumns int
	// Fixed disables detection and parses with this separator only.
	Fixed rune
	// Fallback picks among successful parses when none exceeds MinColumns.
	Fallback Fallback
}

// Fallback selects the parse kept when no candidate exceeds MinColumns.
type Fallback string

const (
	// FallbackLast keeps the last successful parse.
	FallbackLast Fallback = "last"
	// FallbackWidest keeps the successful parse with the most columns,
	// earliest candidate first on ties.
	FallbackWidest Fallback = "widest"
)

// ParseFallback validates a fallback name; the empty string means FallbackLast.
func ParseFallback(s string) (Fallback, error) {
	switch Fallback(strings.ToLower(strings.TrimSpace(s))) {
	case "", FallbackLast:
		return FallbackLast, nil
	case FallbackWidest:
		return FallbackWidest, nil
	default:
		return "", fmt.Errorf("unsupported separator fallback: %q (use last|widest)", s)
	}
}

// DefaultSeparatorPolicy tries ';', ',' and tab, accepting more than 5 columns.
func DefaultSeparatorPolicy() SeparatorPolicy {
	return SeparatorPolicy{
		Candidates: []rune{';', ',', '\t'},
		MinColumns: 5,
		Fallback:   FallbackLast,
	}
}

// SeparatorName returns a printable name for a separator rune.
func SeparatorName(r rune) string {
	switch r {
	case '\t':
		return "tab"
	case 0:
		return "none"
	default:
		return string(r)
	}
}

// ParseSeparator maps a user-supplied name to a separator rune. "auto" and the
// empty string return 0.
func ParseSeparator(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return 0, nil
	case ";", "semicolon":
		return ';', nil
	case ",", "comma":
		return ',', nil
	case "\t", "tab", "\\t":
		return '\t', nil
	default:
		return 0, fmt.Errorf("unsupported separator: %q (use auto|;|,|tab)", s)
	}
}

type parsed struct {
	header  []string
	records [][]string
}

// Load reads a delimited survey file, choosing the separator per policy.
func Load(path string, policy SeparatorPolicy, log *slog.Logger) (*Table, error) {
	if log == nil {
		log = slog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	candidates := policy.Candidates
	if policy.Fixed != 0 {
		candidates = []rune{policy.Fixed}
	} else if len(candidates) == 0 {
		candidates = DefaultSeparatorPolicy().Candidates
	}

	t := &Table{Path: path}
	var chosen *parsed
	for _, sep := range candidates {
		p, err := parseWith(data, sep)
		attempt := SeparatorAttempt{Separator: sep, Err: err}
		if err != nil {
			log.Debug("separator rejected", "separator", SeparatorName(sep), "error", err)
			t.Attempts = append(t.Attempts, attempt)
			continue
		}
		attempt.Rows = len(p.records)
		attempt.Columns = len(p.header)
		t.Attempts = append(t.Attempts, attempt)
		log.Debug("separator parsed", "separator", SeparatorName(sep), "rows", attempt.Rows, "columns", attempt.Columns)
		if chosen != nil && policy.Fallback == FallbackWidest && len(p.header) <= len(chosen.header) {
			continue
		}
		chosen = p
		t.Separator = sep
		if policy.Fixed != 0 || len(p.header) > policy.MinColumns {
			break
		}
	}
	if chosen == nil {
		return nil, fmt.Errorf("load %s: %w", path, ErrNoSeparator)
	}
	if err := t.bind(chosen); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	log.Info("table loaded", "separator", SeparatorName(t.Separator), "rows", t.Rows(), "columns", len(t.Columns))
	return t, nil
}

func parseWith(data []byte, sep rune) (*parsed, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sep
	r.FieldsPerRecord = -1
	// With a whitespace separator csv would also eat the delimiter after an
	// empty field; cells are trimmed later instead.
	r.TrimLeadingSpace = !unicode.IsSpace(sep)

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	// A UTF-8 BOM would otherwise stick to the first column name.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	p := &parsed{header: header}
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		if len(rec) > len(header) {
			return nil, fmt.Errorf("row %d: expected %d fields, saw %d", line, len(header), len(rec))
		}
		if len(rec) < len(header) {
			tmp := make([]string, len(header))
			copy(tmp, rec)
			rec = tmp
		}
		p.records = append(p.records, rec)
	}
	return p, nil
}

func (t *Table) bind(p *parsed) error {
	idx := map[string]int{}
	t.Columns = make([]string, len(p.header))
	for i, h := range p.header {
		name := normalizeLabel(h)
		t.Columns[i] = name
		key := strings.ToLower(name)
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	for _, req := range []string{ColX, ColY} {
		if _, ok := idx[req]; !ok {
			return &MissingColumnError{Column: req, Columns: t.Columns}
		}
	}
	col := func(name string) int {
		if i, ok := idx[name]; ok {
			return i
		}
		return -1
	}
	ix, iy := col(ColX), col(ColY)
	ibx, iby, ibz := col(ColBx), col(ColBy), col(ColBz)
	imag, ipoi := col(ColMagnitude), col(ColPOIType)
	t.HasField = ibx >= 0 && iby >= 0 && ibz >= 0
	t.HasMagnitude = imag >= 0
	t.HasPOI = ipoi >= 0

	num := func(rec []string, i int) float64 {
		if i < 0 {
			return math.NaN()
		}
		return parseCell(rec[i])
	}
	t.Samples = make([]Sample, 0, len(p.records))
	for _, rec := range p.records {
		s := Sample{
			X:         num(rec, ix),
			Y:         num(rec, iy),
			Bx:        num(rec, ibx),
			By:        num(rec, iby),
			Bz:        num(rec, ibz),
			Magnitude: num(rec, imag),
		}
		if ipoi >= 0 {
			label := normalizeLabel(rec[ipoi])
			if _, missing := missingTokens[strings.ToLower(label)]; !missing {
				s.POIType = label
			}
		}
		t.Samples = append(t.Samples, s)
	}
	return nil
}

// normalizeLabel applies NFKC so full-width and composed forms of the same
// header or POI label compare equal, then trims whitespace.
func normalizeLabel(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}
