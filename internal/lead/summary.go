package lead

import "strings"

// Summary holds the statistics shown above the lead table.
type Summary struct {
	Total         int `json:"total" yaml:"total"`
	ManagersFound int `json:"managers_found" yaml:"managers_found"`
	PhonesFound   int `json:"phones_found" yaml:"phones_found"`
	EmailsFound   int `json:"emails_found" yaml:"emails_found"`
	Localities    int `json:"localities" yaml:"localities"`
}

// LocalityKey returns the last whitespace-separated token of an address, which
// for French addresses is usually the town. It is an approximation: keys are
// not folded for case or accents, so "Lyon" and "LYON" count as two localities.
func LocalityKey(address string) string {
	fields := strings.Fields(address)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// Summarize derives the summary statistics from a record snapshot. Records
// without an address contribute the empty locality key.
func Summarize(records []Display) Summary {
	s := Summary{Total: len(records)}
	localities := make(map[string]struct{}, len(records))
	for _, d := range records {
		if d.HasManager {
			s.ManagersFound++
		}
		if d.HasPhone {
			s.PhonesFound++
		}
		if strings.Contains(d.Email, "@") {
			s.EmailsFound++
		}
		key := ""
		if d.HasAddress {
			key = LocalityKey(d.Address)
		}
		localities[key] = struct{}{}
	}
	s.Localities = len(localities)
	return s
}
