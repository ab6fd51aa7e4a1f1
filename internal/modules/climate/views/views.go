package views

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates
var viewsFS embed.FS

var indexTmpl *template.Template

// loadTemplatesFromFS parses the index templates found under dir in fsys.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	indexTmpl = tmpl
	return nil
}

// LoadTemplates parses the embedded templates. Call it once at startup and
// refuse to serve if it fails.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// RouteLink is one titled group of API paths on the index page.
type RouteLink struct {
	Title string
	Paths []string
}

type IndexData struct {
	Routes []RouteLink
}

func RenderIndex(w io.Writer, data *IndexData) error {
	if indexTmpl == nil {
		return errors.New("index template not loaded: call views.LoadTemplates during startup")
	}
	return indexTmpl.ExecuteTemplate(w, "index.html", data)
}
