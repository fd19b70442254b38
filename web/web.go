// Package web holds the HTML templates of the site.
package web

import (
	"embed"
	"html/template"
	"time"

	"github.com/emilythestrangee/yatube/internal/models"
	"github.com/emilythestrangee/yatube/internal/storage"
)

//go:embed templates
var FS embed.FS

// Funcs are the helpers available to every template.
var Funcs = template.FuncMap{
	"truncate": models.Truncate,
	"date": func(t time.Time) string {
		return t.Format("2 January 2006")
	},
	"media": storage.URL,
	"year": func() int {
		return time.Now().Year()
	},
	// page adds a title to the context of a page, for the shared head.
	"page": func(title string, data map[string]any) map[string]any {
		out := make(map[string]any, len(data)+1)
		for k, v := range data {
			out[k] = v
		}
		out["title"] = title
		return out
	},
}

// Templates parses every page; each file defines a template named after its
// path, such as "posts/index.html".
func Templates() (*template.Template, error) {
	return template.New("yatube").Funcs(Funcs).ParseFS(FS, "templates/*/*.html")
}
