// Package view holds the server-rendered HTML pages.
package view

import (
	"embed"
	"html/template"

	"github.com/shopspring/decimal"
)

const (
	CatalogPage = "catalog.tmpl"
	AdminPage   = "admin.tmpl"
)

//go:embed templates/*.tmpl
var files embed.FS

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string {
		return d.StringFixed(2)
	},
}

// Templates parses the embedded pages. It panics on a malformed template since
// they are compiled into the binary.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(files, "templates/*.tmpl"))
}
