// Package lead turns raw lead rows returned by the prospecting backend into
// display-ready records with deterministic placeholders.
package lead

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Placeholders shown when the backend did not provide a value.
const (
	PlaceholderMissing   = "N/A"
	PlaceholderSIRET     = "Inconnu"
	PlaceholderManager   = "Non trouvé"
	PlaceholderPhone     = "Aucun numéro"
	defaultWebsiteScheme = "https://"
)

// Field identifies a logical lead field independently of the backend's
// column naming.
type Field string

const (
	FieldName         Field = "name"
	FieldSIRET        Field = "siret"
	FieldManager      Field = "manager"
	FieldAddress      Field = "address"
	FieldPhone        Field = "phone"
	FieldSitePhone    Field = "site_phone"
	FieldWebsite      Field = "website"
	FieldRegistryLink Field = "registry_link"
	FieldActivity     Field = "activity"
	FieldEmail        Field = "email"
	FieldCity         Field = "city"
	FieldPostalCode   Field = "postal_code"
)

// columns lists the backend column names for each field. The backend serves
// either its intermediate enrichment file or the consolidated one, and the two
// use different headers for the same data. First non-empty column wins.
var columns = map[Field][]string{
	FieldName:         {"Nom", "Nom Entreprise"},
	FieldSIRET:        {"SIRET"},
	FieldManager:      {"Dirigeants", "Dirigeant"},
	FieldAddress:      {"Adresse"},
	FieldPhone:        {"Téléphone"},
	FieldSitePhone:    {"Téléphone trouvé sur site", "Téléphone Secondaire"},
	FieldWebsite:      {"Site web", "Site Web"},
	FieldRegistryLink: {"Lien Pappers"},
	FieldActivity:     {"Activité"},
	FieldEmail:        {"Email"},
	FieldCity:         {"Ville"},
	FieldPostalCode:   {"Code Postal"},
}

// Columns returns the backend column names accepted for f, in priority order.
func Columns(f Field) []string {
	return append([]string(nil), columns[f]...)
}

// Raw is a lead row as decoded from the backend. No field is guaranteed to be
// present and values are not guaranteed to be strings.
type Raw map[string]any

// Get returns the first non-empty value among the columns mapped to f.
func (r Raw) Get(f Field) string {
	for _, col := range columns[f] {
		if v := Text(r[col]); v != "" {
			return v
		}
	}
	return ""
}

// Text coerces a decoded JSON value to trimmed display text. Integral numbers
// are rendered without exponent or fractional part, so a SIRET stored as a
// float by the backend comes back as its digits.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return numberText(t.String())
	case float64:
		return floatText(t)
	case float32:
		return floatText(float64(t))
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func numberText(s string) string {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil && strings.ContainsAny(s, ".eE") {
		if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1e18 {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return s
}

func floatText(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Display is a normalized lead. Every field holds either the backend value or
// its placeholder, except Website and RegistryLink which stay empty when absent
// so the caller can suppress the corresponding link. The Has* flags tell a
// real value from a placeholder; never compare against placeholder text.
// SitePhone is the phone found on the company site, kept even when Phone
// already holds the registry number.
type Display struct {
	Name         string `json:"name" yaml:"name"`
	HasName      bool   `json:"has_name" yaml:"has_name"`
	SIRET        string `json:"siret" yaml:"siret"`
	HasSIRET     bool   `json:"has_siret" yaml:"has_siret"`
	Manager      string `json:"manager" yaml:"manager"`
	HasManager   bool   `json:"has_manager" yaml:"has_manager"`
	Address      string `json:"address" yaml:"address"`
	HasAddress   bool   `json:"has_address" yaml:"has_address"`
	Phone        string `json:"phone" yaml:"phone"`
	HasPhone     bool   `json:"has_phone" yaml:"has_phone"`
	SitePhone    string `json:"site_phone,omitempty" yaml:"site_phone,omitempty"`
	Website      string `json:"website" yaml:"website"`
	RegistryLink string `json:"registry_link" yaml:"registry_link"`
	Activity     string `json:"activity,omitempty" yaml:"activity,omitempty"`
	Email        string `json:"email,omitempty" yaml:"email,omitempty"`
	City         string `json:"city,omitempty" yaml:"city,omitempty"`
	PostalCode   string `json:"postal_code,omitempty" yaml:"postal_code,omitempty"`
}

// Normalize converts one raw row. It never fails.
func Normalize(raw Raw) Display {
	d := Display{
		Name:         raw.Get(FieldName),
		SIRET:        raw.Get(FieldSIRET),
		SitePhone:    raw.Get(FieldSitePhone),
		Website:      raw.Get(FieldWebsite),
		RegistryLink: raw.Get(FieldRegistryLink),
		Activity:     raw.Get(FieldActivity),
		Email:        raw.Get(FieldEmail),
		City:         raw.Get(FieldCity),
		PostalCode:   raw.Get(FieldPostalCode),
	}

	d.HasName = d.Name != ""
	d.Name = orDefault(d.Name, PlaceholderMissing)
	d.HasSIRET = d.SIRET != ""
	d.SIRET = orDefault(d.SIRET, PlaceholderSIRET)

	d.Manager = raw.Get(FieldManager)
	d.HasManager = d.Manager != ""
	if !d.HasManager {
		d.Manager = PlaceholderManager
	}

	d.Address = raw.Get(FieldAddress)
	d.HasAddress = d.Address != ""
	if !d.HasAddress {
		d.Address = PlaceholderMissing
	}

	d.Phone = raw.Get(FieldPhone)
	if d.Phone == "" {
		d.Phone = d.SitePhone
	}
	d.HasPhone = d.Phone != ""
	if !d.HasPhone {
		d.Phone = PlaceholderPhone
	}

	return d
}

// NormalizeAll normalizes every row, preserving count and order.
func NormalizeAll(raws []Raw) []Display {
	out := make([]Display, 0, len(raws))
	for _, r := range raws {
		out = append(out, Normalize(r))
	}
	return out
}

// WebsiteLink builds the link target for the website column. The second
// return is false when the lead has no website and no link should be shown.
// Addresses without an http(s) scheme get https:// prepended; the stored
// Website is left as received.
func WebsiteLink(d Display) (string, bool) {
	if d.Website == "" {
		return "", false
	}
	if strings.HasPrefix(d.Website, "http") {
		return d.Website, true
	}
	return defaultWebsiteScheme + d.Website, true
}

// RegistryLink returns the business registry link, if any.
func RegistryLink(d Display) (string, bool) {
	return d.RegistryLink, d.RegistryLink != ""
}

func orDefault(v, placeholder string) string {
	if v == "" {
		return placeholder
	}
	return v
}
