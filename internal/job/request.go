package job

import (
	"strings"

	"github.com/sells-group/prospect-cli/internal/resilience"
)

// DefaultMaxRecords is the number of listings scraped per search when the
// request does not say otherwise.
const DefaultMaxRecords = 20

// Request is a search submission: a business activity keyword and a postal
// code.
type Request struct {
	Keyword    string `json:"keyword"`
	ZipCode    string `json:"zip_code"`
	MaxRecords int    `json:"max_records"`
}

// Valid reports whether both keyword and zip code are non-empty after
// trimming.
func (r Request) Valid() bool {
	return r.Validate() == nil
}

// Validate returns a *resilience.ValidationError naming the first empty field.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Keyword) == "" {
		return &resilience.ValidationError{Field: "keyword"}
	}
	if strings.TrimSpace(r.ZipCode) == "" {
		return &resilience.ValidationError{Field: "zip_code"}
	}
	return nil
}

// WithDefaults returns r with trimmed fields and MaxRecords defaulted.
func (r Request) WithDefaults() Request {
	r.Keyword = strings.TrimSpace(r.Keyword)
	r.ZipCode = strings.TrimSpace(r.ZipCode)
	if r.MaxRecords <= 0 {
		r.MaxRecords = DefaultMaxRecords
	}
	return r
}
