package offers

import (
	"strings"
	"time"
)

// Field is a canonical semantic column of the offer dataset.
type Field string

const (
	FieldOrigin      Field = "origin"
	FieldDestination Field = "destination"
	FieldDate        Field = "date"
	FieldPrice       Field = "price"
	FieldCarrier     Field = "carrier"
	FieldDuration    Field = "duration"
)

// Offer is one normalized row of the dataset. Raw keeps the original
// cells keyed by lowercased header name; the typed fields are derived
// once at load time and never re-inspected from Raw downstream.
type Offer struct {
	Raw map[string]string

	OriginKey string
	DestKey   string

	Price    float64
	HasPrice bool

	Date    time.Time
	HasDate bool

	Carrier  string
	Duration string
}

// Set is the full normalized dataset plus the resolved column mapping.
type Set struct {
	Offers []*Offer
	// Columns maps each detected canonical field to its source column
	// name. A field absent from the map was not found in the header.
	Columns map[Field]string
}

func (s *Set) Len() int {
	return len(s.Offers)
}

// Detected reports whether the dataset carries the given canonical field.
func (s *Set) Detected(f Field) bool {
	_, ok := s.Columns[f]
	return ok
}

// Subset returns a narrowed view sharing the column mapping.
func (s *Set) Subset(items []*Offer) *Set {
	return &Set{Offers: items, Columns: s.Columns}
}

// NormalizeKey lowercases and trims a categorical value. Origin and
// destination keys are always either fully normalized or empty.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
