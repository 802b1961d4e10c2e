package lead

import (
	"strings"

	"golang.org/x/text/cases"
)

// Criteria narrows a record list. Zero values match everything.
type Criteria struct {
	// Query matches any displayed field, ignoring case.
	Query string
	// Activity must equal the record's activity exactly.
	Activity string
	// City matches a substring of the record's city, ignoring case.
	City string
}

// IsZero reports whether c filters nothing.
func (c Criteria) IsZero() bool {
	return strings.TrimSpace(c.Query) == "" && c.Activity == "" && strings.TrimSpace(c.City) == ""
}

// Filter returns the records matching c, in their original order.
func Filter(records []Display, c Criteria) []Display {
	if c.IsZero() {
		return records
	}
	fold := cases.Fold()
	query := fold.String(strings.TrimSpace(c.Query))
	city := fold.String(strings.TrimSpace(c.City))

	out := make([]Display, 0, len(records))
	for _, d := range records {
		if c.Activity != "" && d.Activity != c.Activity {
			continue
		}
		if city != "" && !strings.Contains(fold.String(d.City), city) {
			continue
		}
		if query != "" && !matchesAny(fold, d, query) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Activities lists the distinct non-empty activities in first-seen order.
func Activities(records []Display) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range records {
		if d.Activity == "" {
			continue
		}
		if _, ok := seen[d.Activity]; ok {
			continue
		}
		seen[d.Activity] = struct{}{}
		out = append(out, d.Activity)
	}
	return out
}

func matchesAny(fold cases.Caser, d Display, query string) bool {
	for _, v := range []string{
		d.Name, d.SIRET, d.Manager, d.Address, d.Phone, d.Website,
		d.RegistryLink, d.Activity, d.Email, d.City, d.PostalCode,
	} {
		if strings.Contains(fold.String(v), query) {
			return true
		}
	}
	return false
}
