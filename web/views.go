// Package web renders the catalog's HTML pages from embedded templates.
package web

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

type Views struct {
	templates *template.Template
}

func NewViews() (*Views, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Views{templates: t}, nil
}

// Render writes the named page. Each page template is defined in its own
// file and shares the header and footer from layout.html.
func (v *Views) Render(w io.Writer, name string, data interface{}) error {
	return v.templates.ExecuteTemplate(w, name, data)
}
