package offers

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeDataset(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "offers.csv")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing dataset: %v", err)
	}
	return path
}

func TestLoadDetectsSemicolonDelimiter(t *testing.T) {
	path := writeDataset(t, []byte("Origin;Destination;Price;Date\nNYC;LON;$450.00;2025-03-01\nnyc;lon;500;2025-03-05\n"))

	set, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if set.Len() != 2 {
		t.Fatalf("expected 2 offers, got %d", set.Len())
	}

	for _, f := range []Field{FieldOrigin, FieldDestination, FieldPrice, FieldDate} {
		if !set.Detected(f) {
			t.Fatalf("expected %s column to be detected", f)
		}
	}

	first := set.Offers[0]
	if first.OriginKey != "nyc" || first.DestKey != "lon" {
		t.Fatalf("expected lowercased keys, got %q/%q", first.OriginKey, first.DestKey)
	}
	if !first.HasPrice || first.Price != 450 {
		t.Fatalf("expected price 450, got %v (has=%v)", first.Price, first.HasPrice)
	}
	if !first.HasDate || first.Date.Format("2006-01-02") != "2025-03-01" {
		t.Fatalf("unexpected date: %v", first.Date)
	}
}

func TestLoadPipeDelimiter(t *testing.T) {
	path := writeDataset(t, []byte("from|to|fare\nSVO|LED|1,299\n"))

	set, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	o := set.Offers[0]
	if o.OriginKey != "svo" {
		t.Fatalf("expected origin svo, got %q", o.OriginKey)
	}
	if !o.HasPrice || o.Price != 1299 {
		t.Fatalf("expected thousands separator stripped, got %v", o.Price)
	}
}

func TestLoadKeepsUnparsableRows(t *testing.T) {
	path := writeDataset(t, []byte("origin,destination,price,date\nNYC,LON,n/a,not-a-date\n"))

	set, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if set.Len() != 1 {
		t.Fatalf("row with unparsable cells must not be dropped, got %d rows", set.Len())
	}

	o := set.Offers[0]
	if o.HasPrice || o.HasDate {
		t.Fatalf("expected absent price and date, got has_price=%v has_date=%v", o.HasPrice, o.HasDate)
	}
}

func TestLoadNoRowsIsIngestionError(t *testing.T) {
	path := writeDataset(t, []byte("origin,destination,price\n"))

	_, err := Load(path)
	var ingestion *IngestionError
	if !errors.As(err, &ingestion) {
		t.Fatalf("expected IngestionError, got %v", err)
	}
}

func TestLoadWindows1251Fallback(t *testing.T) {
	// "Москва" in Windows-1251.
	moscow := []byte{0xCC, 0xEE, 0xF1, 0xEA, 0xE2, 0xE0}
	data := append([]byte("origin,destination,price\n"), moscow...)
	data = append(data, []byte(",LED,100\n")...)
	path := writeDataset(t, data)

	set, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if set.Offers[0].OriginKey != "москва" {
		t.Fatalf("expected decoded cyrillic key, got %q", set.Offers[0].OriginKey)
	}
}

func TestResolveColumnsPriority(t *testing.T) {
	columns := ResolveColumns([]string{"source", "origin", "dest", "fare", "airline_code"})

	if columns[FieldOrigin] != "origin" {
		t.Fatalf("expected origin to win over source, got %q", columns[FieldOrigin])
	}
	if columns[FieldDestination] != "dest" {
		t.Fatalf("expected dest, got %q", columns[FieldDestination])
	}
	if columns[FieldPrice] != "fare" {
		t.Fatalf("expected fare, got %q", columns[FieldPrice])
	}
	if columns[FieldCarrier] != "airline_code" {
		t.Fatalf("expected airline_code, got %q", columns[FieldCarrier])
	}
	if _, ok := columns[FieldDate]; ok {
		t.Fatalf("did not expect a date column")
	}
}
