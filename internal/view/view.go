// Package view renders normalized leads for the terminal, for files and for
// the browser.
package view

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/prospect-cli/internal/lead"
)

// Format names an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatXLSX  Format = "xlsx"
)

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML, FormatXLSX:
		return f, nil
	case "":
		return FormatTable, nil
	}
	return "", eris.Errorf("view: unknown format %q (want table, json, yaml or xlsx)", s)
}

// Binary reports whether the format must go to a file rather than a terminal.
func (f Format) Binary() bool {
	return f == FormatXLSX
}

// Headers are the column titles used by the table and spreadsheet skins.
var Headers = []string{"Entreprise", "SIRET", "Dirigeant", "Adresse", "Téléphone", "Site web", "Pappers"}

// Row flattens a lead into the cells shown under Headers.
func Row(d lead.Display) []string {
	website, _ := lead.WebsiteLink(d)
	registry, _ := lead.RegistryLink(d)
	return []string{d.Name, d.SIRET, d.Manager, d.Address, d.Phone, website, registry}
}

// Write encodes leads to w in the given format.
func Write(w io.Writer, f Format, leads []lead.Display) error {
	switch f {
	case FormatTable, "":
		return WriteTable(w, leads)
	case FormatJSON:
		return WriteJSON(w, leads)
	case FormatYAML:
		return WriteYAML(w, leads)
	case FormatXLSX:
		return WriteXLSX(w, leads)
	}
	return eris.Errorf("view: unknown format %q", f)
}

// WriteJSON writes leads as an indented JSON array.
func WriteJSON(w io.Writer, leads []lead.Display) error {
	if leads == nil {
		leads = []lead.Display{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return eris.Wrap(enc.Encode(leads), "view: encode json")
}

// WriteYAML writes leads as a YAML sequence.
func WriteYAML(w io.Writer, leads []lead.Display) error {
	if leads == nil {
		leads = []lead.Display{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(leads); err != nil {
		return eris.Wrap(err, "view: encode yaml")
	}
	return eris.Wrap(enc.Close(), "view: close yaml encoder")
}
