package offers

import "strings"

// fieldAliases lists the accepted header names for every canonical
// field, in priority order. The first alias present in the header wins.
// When multiple raw headers mean the same thing, they all appear here.
var fieldAliases = map[Field][]string{
	FieldOrigin:      {"origin", "source", "from", "source_city", "from_city", "departure_city", "src"},
	FieldDestination: {"destination", "dest", "to", "destination_city", "to_city", "arrival_city", "dst"},
	FieldDate:        {"date", "journey_date", "date_of_journey", "departure_date", "dep_time", "flight_date"},
	FieldPrice:       {"price", "fare", "ticket_price", "selling_price", "amount", "cost"},
	FieldCarrier:     {"airline", "carrier", "airline_name", "airline_code"},
	FieldDuration:    {"duration", "journey_time", "travel_time"},
}

// normalizeHeader trims, lowercases and unquotes a raw header cell.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Trim(h, "\"'")
}

// ResolveColumns maps each canonical field to the first matching alias
// present in the header. Fields with no matching column are simply
// absent from the result; filters on them are skipped downstream.
func ResolveColumns(header []string) map[Field]string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[normalizeHeader(h)] = true
	}

	columns := make(map[Field]string)
	for field, aliases := range fieldAliases {
		for _, alias := range aliases {
			if present[alias] {
				columns[field] = alias
				break
			}
		}
	}

	return columns
}
