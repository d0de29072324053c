package flexdate

import "time"

// Historical PM records were keyed in by hand over several years, so last
// completion dates arrive in a handful of layouts. ISO is tried first;
// ambiguous values like 01/02/2024 resolve to the US reading.
var layouts = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"01-02-2006",
}

// Parse attempts each known layout in priority order and reports whether
// the input could be understood. It never returns an error: a blank or
// unparseable string yields ok=false, which callers treat as missing data.
func Parse(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
