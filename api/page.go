package api

import (
	"embed"
	"html/template"
	"net/url"

	"beta-dashboard/dashboard"
	"beta-dashboard/models"
	"beta-dashboard/report"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"beta":  report.FormatBeta,
	"query": queryWith,
}).ParseFS(templateFS, "templates/dashboard.html"))

type pageData struct {
	dashboard.View
	Current  string // request URI, posted back by forms as the redirect target
	MaxBytes int64
}

// queryWith builds a URL on path carrying the language and filter selection.
func queryWith(path string, lang models.Language, country, bank string) string {
	q := url.Values{}
	q.Set("lang", string(lang))
	if country != "" && country != dashboard.All {
		q.Set("country", country)
	}
	if bank != "" && bank != dashboard.All {
		q.Set("bank", bank)
	}
	return path + "?" + q.Encode()
}
