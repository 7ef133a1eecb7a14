package recipients

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const defaultDaysWindow = 30

// Spec is one row of the recipient source of truth.
type Spec struct {
	Email       string  `mapstructure:"email"`
	Name        string  `mapstructure:"name"`
	Origin      string  `mapstructure:"origin"`
	Destination string  `mapstructure:"destination"`
	DaysWindow  int     `mapstructure:"days_window"`
	MaxPrice    float64 `mapstructure:"max_price"`
	Active      bool    `mapstructure:"active"`
}

// Load reads the recipient CSV. The email column is required; active
// defaults to true, days_window to 30 and max_price to unbounded.
func Load(path string) ([]Spec, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening recipients file: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading recipients file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("recipients file %s is empty", path)
	}

	header := records[0]
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	hasEmail := false
	for _, h := range header {
		if h == "email" {
			hasEmail = true
		}
	}
	if !hasEmail {
		return nil, fmt.Errorf("recipients file %s has no email column", path)
	}

	specs := make([]Spec, 0, len(records)-1)
	for _, row := range records[1:] {
		spec, err := decodeRow(header, row)
		if err != nil {
			return nil, fmt.Errorf("decoding recipient row %v: %w", row, err)
		}
		specs = append(specs, spec)
	}

	return specs, nil
}

// decodeRow weakly decodes one CSV row into a Spec. Empty cells are
// dropped so struct defaults survive the decode.
func decodeRow(header, row []string) (Spec, error) {
	values := make(map[string]string, len(header))
	for i, name := range header {
		if i >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[i])
		if cell == "" {
			continue
		}
		values[name] = cell
	}

	// active is an integer flag in the source; only 1 means active.
	if a, ok := values["active"]; ok {
		values["active"] = strconv.FormatBool(a == "1")
	}

	spec := Spec{
		DaysWindow: defaultDaysWindow,
		MaxPrice:   math.Inf(1),
		Active:     true,
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &spec,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return spec, err
	}
	if err := decoder.Decode(values); err != nil {
		return spec, err
	}

	if spec.DaysWindow < 0 {
		spec.DaysWindow = 0
	}

	return spec, nil
}

// Active returns only the specs marked active.
func Active(specs []Spec) []Spec {
	active := make([]Spec, 0, len(specs))
	for _, s := range specs {
		if s.Active {
			active = append(active, s)
		}
	}
	return active
}
