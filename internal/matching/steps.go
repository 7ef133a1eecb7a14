package matching

import (
	"time"

	"github.com/akarpov/fare-mailer/internal/offers"
	"github.com/akarpov/fare-mailer/internal/recipients"
)

type routeFilter struct {
	field offers.Field
}

// NewRoute creates a filter keeping offers whose origin or destination
// key matches the recipient. A no-op when the dataset never carried the
// column.
func NewRoute(field offers.Field) Filter {
	return &routeFilter{field: field}
}

func (f *routeFilter) Name() string {
	return string(f.field)
}

func (f *routeFilter) Apply(spec recipients.Spec, set *offers.Set) (*offers.Set, Step) {
	initial := set.Len()
	if !set.Detected(f.field) {
		return set, Step{Initial: initial, Left: initial}
	}

	want := offers.NormalizeKey(f.want(spec))
	kept := make([]*offers.Offer, 0, initial)
	for _, o := range set.Offers {
		if f.key(o) == want {
			kept = append(kept, o)
		}
	}

	return set.Subset(kept), Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}
}

func (f *routeFilter) want(spec recipients.Spec) string {
	if f.field == offers.FieldOrigin {
		return spec.Origin
	}
	return spec.Destination
}

func (f *routeFilter) key(o *offers.Offer) string {
	if f.field == offers.FieldOrigin {
		return o.OriginKey
	}
	return o.DestKey
}

type dateWindowFilter struct {
	now time.Time
}

// NewDateWindow creates a filter keeping offers dated inside
// [now, now+days_window]. Datasets with no temporal dimension pass
// through untouched rather than rejecting the recipient.
func NewDateWindow(now time.Time) Filter {
	return &dateWindowFilter{now: now}
}

func (f *dateWindowFilter) Name() string {
	return "date_window"
}

func (f *dateWindowFilter) Apply(spec recipients.Spec, set *offers.Set) (*offers.Set, Step) {
	initial := set.Len()
	if !set.Detected(offers.FieldDate) || !anyDated(set.Offers) {
		return set, Step{Initial: initial, Left: initial}
	}

	end := f.now.AddDate(0, 0, spec.DaysWindow)
	kept := make([]*offers.Offer, 0, initial)
	for _, o := range set.Offers {
		if !o.HasDate {
			continue
		}
		if o.Date.Before(f.now) || o.Date.After(end) {
			continue
		}
		kept = append(kept, o)
	}

	return set.Subset(kept), Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}
}

func anyDated(items []*offers.Offer) bool {
	for _, o := range items {
		if o.HasDate {
			return true
		}
	}
	return false
}
