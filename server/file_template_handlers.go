package server

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html
var templateFiles embed.FS

const layoutTemplate = "layout.html"

func templatesFS() fs.FS {
	sub, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("templates sub filesystem: " + err.Error())
	}
	return sub
}

// ParseTemplate parses a page together with the shared layout. The page is
// the root template; the layout contributes "header", "messages" and "footer".
func ParseTemplate(page string) (*template.Template, error) {
	return template.New(page).ParseFS(templatesFS(), layoutTemplate, page)
}
