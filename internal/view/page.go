package view

import (
	"html/template"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/lead"
)

// PageData is everything the dashboard page renders.
type PageData struct {
	Title      string
	Keyword    string
	ZipCode    string
	SubmitOpen bool
	Busy       bool
	Notice     string
	LastError  string
	ExportURL  string
	Filter     lead.Criteria
	Activities []string
	Summary    lead.Summary
	Leads      []lead.Display
	RefreshSec int
}

var pageFuncs = template.FuncMap{
	"website": func(d lead.Display) string {
		u, _ := lead.WebsiteLink(d)
		return u
	},
	"registry": func(d lead.Display) string {
		u, _ := lead.RegistryLink(d)
		return u
	},
}

var pageTmpl = template.Must(template.New("page").Funcs(pageFuncs).Parse(pageHTML))

// WritePage renders the dashboard HTML page.
func WritePage(w io.Writer, data PageData) error {
	if data.Title == "" {
		data.Title = "Prospection"
	}
	return eris.Wrap(pageTmpl.Execute(w, data), "view: render page")
}

const pageHTML = `<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{if gt .RefreshSec 0}}<meta http-equiv="refresh" content="{{.RefreshSec}}">{{end}}
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Notice}}<div class="alert" role="alert">{{.Notice}}</div>{{end}}
{{if .LastError}}<div class="stale">{{.LastError}}</div>{{end}}
<form id="search" method="post" action="/search">
<input type="text" name="keyword" placeholder="Activité" value="{{.Keyword}}">
<input type="text" name="zipcode" placeholder="Code postal" value="{{.ZipCode}}">
<button type="submit"{{if not .SubmitOpen}} disabled{{end}}>{{if .Busy}}Chargement...{{else}}Rechercher{{end}}</button>
</form>
<form id="refresh" method="post" action="/refresh"><button type="submit">Rafraîchir</button></form>
<a id="export" href="{{.ExportURL}}">Exporter</a>
<ul id="summary">
<li class="total">{{.Summary.Total}}</li>
<li class="managers">{{.Summary.ManagersFound}}</li>
<li class="phones">{{.Summary.PhonesFound}}</li>
<li class="emails">{{.Summary.EmailsFound}}</li>
<li class="localities">{{.Summary.Localities}}</li>
</ul>
<form id="filter" method="get" action="/">
<input type="text" name="q" value="{{.Filter.Query}}">
<select name="activity"><option value="">Toutes</option>{{range .Activities}}<option value="{{.}}"{{if eq . $.Filter.Activity}} selected{{end}}>{{.}}</option>{{end}}</select>
<input type="text" name="city" value="{{.Filter.City}}">
<button type="submit">Filtrer</button>
</form>
<table id="leads">
<thead><tr><th>Entreprise</th><th>SIRET</th><th>Dirigeant</th><th>Adresse</th><th>Téléphone</th><th>Site web</th><th>Pappers</th></tr></thead>
<tbody>
{{range .Leads}}<tr>
<td class="name">{{.Name}}</td>
<td class="siret">{{.SIRET}}</td>
<td class="manager">{{.Manager}}</td>
<td class="address">{{.Address}}</td>
<td class="phone">{{.Phone}}</td>
<td class="website">{{with website .}}<a href="{{.}}" target="_blank" rel="noopener">{{.}}</a>{{end}}</td>
<td class="registry">{{with registry .}}<a href="{{.}}" target="_blank" rel="noopener">Voir</a>{{end}}</td>
</tr>
{{else}}<tr class="empty"><td colspan="7">Aucun prospect</td></tr>
{{end}}</tbody>
</table>
</body>
</html>
`
