package mailmerge

import (
	"math"
	"strconv"
)

// Record is one recipient joined with at most one best-matching offer.
// Match fields stay empty when no offer was found; that is a valid
// outcome, not an error.
type Record struct {
	Email       string  `mapstructure:"email"`
	Name        string  `mapstructure:"name"`
	Origin      string  `mapstructure:"origin"`
	Destination string  `mapstructure:"destination"`
	DaysWindow  int     `mapstructure:"days_window"`
	MaxPrice    float64 `mapstructure:"max_price"`

	CheapestPrice string `mapstructure:"cheapest_price"`
	FlightDate    string `mapstructure:"flight_date"`
	Airline       string `mapstructure:"airline"`
	Duration      string `mapstructure:"duration"`

	Active bool `mapstructure:"active"`

	// Extra keeps artifact columns outside the fixed contract, such as
	// a per-recipient attachment name.
	Extra map[string]string `mapstructure:"-"`
}

// Fields returns the template field map: every artifact column plus any
// extra columns carried through the artifact.
func (r *Record) Fields() map[string]any {
	fields := map[string]any{
		"email":          r.Email,
		"name":           r.Name,
		"origin":         r.Origin,
		"destination":    r.Destination,
		"days_window":    r.DaysWindow,
		"max_price":      r.MaxPrice,
		"cheapest_price": r.CheapestPrice,
		"flight_date":    r.FlightDate,
		"airline":        r.Airline,
		"duration":       r.Duration,
	}

	for k, v := range r.Extra {
		fields[k] = v
	}

	return fields
}

// Attachment returns the optional attachment file name for the record.
func (r *Record) Attachment() string {
	return r.Extra["attachment"]
}

// FormatPrice serializes a price for the artifact. Mathematically
// integral values carry no decimal point; an unbounded ceiling
// serializes as empty.
func FormatPrice(v float64) string {
	if math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
