package webapp

import (
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded views. Install the result on the gin engine
// via SetHTMLTemplate.
func Templates() *template.Template {
	funcs := template.FuncMap{
		"date": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"dateInput": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format(dueDateLayout)
		},
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}
