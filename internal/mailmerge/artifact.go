package mailmerge

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// artifactColumns is the fixed column order of the merge artifact.
var artifactColumns = []string{
	"email", "name", "origin", "destination", "days_window", "max_price",
	"cheapest_price", "flight_date", "airline", "duration", "active",
}

// MissingArtifactError means dispatch started before the matcher
// produced the merge artifact.
type MissingArtifactError struct {
	Path string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("merge artifact %s does not exist, run `fare-mailer prepare` first", e.Path)
}

// WriteArtifact persists the merged records in artifact column order.
func WriteArtifact(path string, records []Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating merge artifact: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(artifactColumns); err != nil {
		return err
	}

	for i := range records {
		if err := w.Write(artifactRow(&records[i])); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func artifactRow(r *Record) []string {
	active := "0"
	if r.Active {
		active = "1"
	}

	return []string{
		r.Email,
		r.Name,
		r.Origin,
		r.Destination,
		strconv.Itoa(r.DaysWindow),
		FormatPrice(r.MaxPrice),
		r.CheapestPrice,
		r.FlightDate,
		r.Airline,
		r.Duration,
		active,
	}
}

// ReadArtifact loads the merge artifact back for dispatch. Columns
// outside the fixed contract land in Record.Extra.
func ReadArtifact(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingArtifactError{Path: path}
		}
		return nil, fmt.Errorf("opening merge artifact: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading merge artifact %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	known := make(map[string]bool, len(artifactColumns))
	for _, c := range artifactColumns {
		known[c] = true
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec, err := decodeArtifactRow(header, row, known)
		if err != nil {
			return nil, fmt.Errorf("decoding merge artifact row %v: %w", row, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func decodeArtifactRow(header, row []string, known map[string]bool) (Record, error) {
	values := make(map[string]string, len(header))
	extra := make(map[string]string)
	for i, name := range header {
		if i >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[i])
		if !known[name] {
			if name != "" && cell != "" {
				extra[name] = cell
			}
			continue
		}
		if cell == "" {
			continue
		}
		values[name] = cell
	}

	if a, ok := values["active"]; ok {
		values["active"] = strconv.FormatBool(a == "1")
	}

	rec := Record{
		DaysWindow: 30,
		MaxPrice:   math.Inf(1),
		Active:     true,
		Extra:      extra,
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &rec,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return rec, err
	}
	if err := decoder.Decode(values); err != nil {
		return rec, err
	}

	return rec, nil
}
