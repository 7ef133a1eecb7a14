package matching

import (
	"time"

	"go.uber.org/zap"

	"github.com/akarpov/fare-mailer/internal/mailmerge"
	"github.com/akarpov/fare-mailer/internal/offers"
	"github.com/akarpov/fare-mailer/internal/recipients"
)

// Filter represents a single narrowing step applied to the offer set
// for one recipient. Filters are pure: they never mutate the input set.
type Filter interface {
	Name() string
	Apply(spec recipients.Spec, set *offers.Set) (*offers.Set, Step)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Match filters the normalized offer set for one recipient and selects
// the cheapest surviving candidate. Recipients never share matching
// state; the function is re-run independently per recipient.
func Match(now time.Time, spec recipients.Spec, set *offers.Set, logger *zap.Logger) mailmerge.Record {
	if logger == nil {
		logger = zap.NewNop()
	}

	rec := mailmerge.Record{
		Email:       spec.Email,
		Name:        spec.Name,
		Origin:      spec.Origin,
		Destination: spec.Destination,
		DaysWindow:  spec.DaysWindow,
		MaxPrice:    spec.MaxPrice,
		Active:      spec.Active,
	}

	steps := []Filter{
		NewRoute(offers.FieldOrigin),
		NewRoute(offers.FieldDestination),
		NewDateWindow(now),
	}

	for _, step := range steps {
		var info Step
		set, info = step.Apply(spec, set)
		logger.Debug("filter step",
			zap.String("name", step.Name()),
			zap.String("email", spec.Email),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)
	}

	best := cheapest(set.Offers)
	if best == nil {
		return rec
	}

	rec.CheapestPrice = mailmerge.FormatPrice(best.Price)
	if best.HasDate {
		rec.FlightDate = best.Date.Format("2006-01-02")
	}
	rec.Airline = best.Carrier
	rec.Duration = best.Duration

	return rec
}

// cheapest returns the minimum-price offer among candidates carrying a
// price. Ties go to the first-encountered offer; no secondary key.
func cheapest(items []*offers.Offer) *offers.Offer {
	var best *offers.Offer
	for _, o := range items {
		if !o.HasPrice {
			continue
		}
		if best == nil || o.Price < best.Price {
			best = o
		}
	}
	return best
}
