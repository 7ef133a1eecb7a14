package offers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// delimiters are probed in order; the first one yielding more than one
// header column wins. A plain comma read is the last resort.
var delimiters = []rune{',', ';', '\t', '|'}

// IngestionError means the dataset contained no discoverable offer rows
// after all delimiter fallbacks. It aborts the run before any matching.
type IngestionError struct {
	Path string
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("no usable offer rows found in %s", e.Path)
}

// Load reads the offer dataset at path, detects its delimiter and
// semantic columns, and derives one normalized offer per row. No row is
// ever dropped; unparsable cells degrade to absent fields.
func Load(path string) (*Set, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading offers dataset: %w", err)
	}

	text, err := decodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding offers dataset %s: %w", path, err)
	}

	header, rows := probe(text)
	if len(rows) == 0 {
		return nil, &IngestionError{Path: path}
	}

	for i, h := range header {
		header[i] = normalizeHeader(h)
	}
	columns := ResolveColumns(header)

	set := &Set{
		Offers:  make([]*Offer, 0, len(rows)),
		Columns: columns,
	}
	for _, row := range rows {
		set.Offers = append(set.Offers, newOffer(header, row, columns))
	}

	return set, nil
}

// probe tries each candidate delimiter and accepts the first structurally
// valid result (more than one column). Parse failures inside this bounded
// scope are part of the probing, not swallowed errors.
func probe(text string) ([]string, [][]string) {
	for _, d := range delimiters {
		header, rows, err := parseTable(text, d)
		if err == nil && len(header) > 1 {
			return header, rows
		}
	}

	header, rows, _ := parseTable(text, ',')
	return header, rows
}

func parseTable(text string, comma rune) ([]string, [][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty dataset")
	}

	return records[0], records[1:], nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText strips a UTF-8 BOM and falls back to Windows-1251 when the
// payload is not valid UTF-8.
func decodeText(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw), nil
	}

	decoded, err := charmap.Windows1251.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}

	return string(decoded), nil
}

func newOffer(header []string, row []string, columns map[Field]string) *Offer {
	raw := make(map[string]string, len(header))
	for i, name := range header {
		if i < len(row) {
			raw[name] = strings.TrimSpace(row[i])
		}
	}

	o := &Offer{Raw: raw}

	if col, ok := columns[FieldOrigin]; ok {
		o.OriginKey = NormalizeKey(raw[col])
	}
	if col, ok := columns[FieldDestination]; ok {
		o.DestKey = NormalizeKey(raw[col])
	}
	if col, ok := columns[FieldPrice]; ok {
		o.Price, o.HasPrice = parsePrice(raw[col])
	}
	if col, ok := columns[FieldDate]; ok {
		o.Date, o.HasDate = parseDate(raw[col])
	}
	if col, ok := columns[FieldCarrier]; ok {
		o.Carrier = raw[col]
	}
	if col, ok := columns[FieldDuration]; ok {
		o.Duration = raw[col]
	}

	return o
}
