package http

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates static
var assets embed.FS

var (
	pageTemplate  = template.Must(template.New("page.html").Funcs(templateFuncs).ParseFS(assets, "templates/page.html"))
	errorTemplate = template.Must(template.New("error.html").ParseFS(assets, "templates/error.html"))
)

// StaticFS — встроенные app.js и style.css.
func StaticFS() fs.FS {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
