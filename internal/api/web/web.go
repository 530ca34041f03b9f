// Package web embeds the host page templates and the browser host script.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// HostScriptPath is where the browser frame controller is served
const HostScriptPath = "/static/host.js"

// Templates parses the page templates
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"hostScript": func() string { return HostScriptPath },
	}).ParseFS(templateFS, "templates/*.html")
}

// Static returns the static assets rooted at static/
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
