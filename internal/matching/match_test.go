package matching

import (
	"testing"
	"time"

	"github.com/akarpov/fare-mailer/internal/offers"
	"github.com/akarpov/fare-mailer/internal/recipients"
)

func datedOffer(origin, dest string, price float64, date time.Time) *offers.Offer {
	return &offers.Offer{
		OriginKey: origin,
		DestKey:   dest,
		Price:     price,
		HasPrice:  true,
		Date:      date,
		HasDate:   true,
	}
}

func fullColumns() map[offers.Field]string {
	return map[offers.Field]string{
		offers.FieldOrigin:      "origin",
		offers.FieldDestination: "destination",
		offers.FieldPrice:       "price",
		offers.FieldDate:        "date",
	}
}

func TestMatchSelectsCheapestInWindow(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	set := &offers.Set{
		Columns: fullColumns(),
		Offers: []*offers.Offer{
			datedOffer("nyc", "lon", 450, now.AddDate(0, 0, 3)),
			datedOffer("nyc", "lon", 900, now.AddDate(0, 0, 5)),
			datedOffer("nyc", "par", 100, now.AddDate(0, 0, 2)),
			datedOffer("nyc", "lon", 200, now.AddDate(0, 0, 40)),
		},
	}

	spec := recipients.Spec{
		Email:       "ann@example.com",
		Origin:      "NYC",
		Destination: "LON",
		DaysWindow:  10,
		MaxPrice:    1000,
		Active:      true,
	}

	rec := Match(now, spec, set, nil)

	if rec.CheapestPrice != "450" {
		t.Fatalf("expected cheapest_price 450, got %q", rec.CheapestPrice)
	}
	if rec.FlightDate != "2025-03-04" {
		t.Fatalf("expected flight_date 2025-03-04, got %q", rec.FlightDate)
	}
}

func TestMatchTieBreaksOnFirstEncountered(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	d1 := now.AddDate(0, 0, 1)
	d2 := now.AddDate(0, 0, 2)
	d3 := now.AddDate(0, 0, 3)

	set := &offers.Set{
		Columns: fullColumns(),
		Offers: []*offers.Offer{
			datedOffer("nyc", "lon", 500, d1),
			datedOffer("nyc", "lon", 300, d2),
			datedOffer("nyc", "lon", 300, d3),
		},
	}

	spec := recipients.Spec{Origin: "nyc", Destination: "lon", DaysWindow: 30}
	rec := Match(now, spec, set, nil)

	if rec.CheapestPrice != "300" {
		t.Fatalf("expected price 300, got %q", rec.CheapestPrice)
	}
	if rec.FlightDate != d2.Format("2006-01-02") {
		t.Fatalf("tie must go to the first encountered offer, got %q", rec.FlightDate)
	}
}

func TestMatchNoCandidatesIsNotAnError(t *testing.T) {
	now := time.Now()
	set := &offers.Set{
		Columns: fullColumns(),
		Offers: []*offers.Offer{
			datedOffer("svo", "led", 100, now.AddDate(0, 0, 1)),
		},
	}

	spec := recipients.Spec{Email: "ann@example.com", Origin: "NYC", Destination: "LON", DaysWindow: 30}
	rec := Match(now, spec, set, nil)

	if rec.CheapestPrice != "" || rec.FlightDate != "" || rec.Airline != "" || rec.Duration != "" {
		t.Fatalf("expected empty match fields, got %+v", rec)
	}
	if rec.Email != "ann@example.com" {
		t.Fatalf("recipient fields must carry over, got %q", rec.Email)
	}
}

func TestMatchDatelessDatasetSkipsWindow(t *testing.T) {
	now := time.Now()
	set := &offers.Set{
		Columns: map[offers.Field]string{
			offers.FieldOrigin:      "origin",
			offers.FieldDestination: "destination",
			offers.FieldPrice:       "price",
		},
		Offers: []*offers.Offer{
			{OriginKey: "nyc", DestKey: "lon", Price: 700, HasPrice: true},
			{OriginKey: "nyc", DestKey: "lon", Price: 650, HasPrice: true},
		},
	}

	spec := recipients.Spec{Origin: "nyc", Destination: "lon", DaysWindow: 1}
	rec := Match(now, spec, set, nil)

	if rec.CheapestPrice != "650" {
		t.Fatalf("dateless dataset must skip the window filter, got %q", rec.CheapestPrice)
	}
	if rec.FlightDate != "" {
		t.Fatalf("expected empty flight_date, got %q", rec.FlightDate)
	}
}

func TestMatchUndetectedRouteColumnsPassThrough(t *testing.T) {
	now := time.Now()
	set := &offers.Set{
		Columns: map[offers.Field]string{
			offers.FieldPrice: "price",
		},
		Offers: []*offers.Offer{
			{Price: 80, HasPrice: true},
			{Price: 60, HasPrice: true},
		},
	}

	spec := recipients.Spec{Origin: "NYC", Destination: "LON"}
	rec := Match(now, spec, set, nil)

	if rec.CheapestPrice != "60" {
		t.Fatalf("filters on undetected columns must be skipped, got %q", rec.CheapestPrice)
	}
}

func TestMatchUnpricedSurvivorsYieldNoMatch(t *testing.T) {
	now := time.Now()
	set := &offers.Set{
		Columns: map[offers.Field]string{offers.FieldOrigin: "origin"},
		Offers: []*offers.Offer{
			{OriginKey: "nyc"},
		},
	}

	rec := Match(now, recipients.Spec{Origin: "nyc"}, set, nil)
	if rec.CheapestPrice != "" {
		t.Fatalf("offers without prices cannot match, got %q", rec.CheapestPrice)
	}
}
