package handlers

import (
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"ama/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

// views maps render names to files under views/.
var views = []string{
	"sessions/index.html",
	"sessions/new.html",
	"sessions/detail.html",
	"sessions/question.html",
	"auth/login.html",
	"auth/register.html",
	"error.html",
}

// TemplateFuncs returns the helpers available to every page.
func TemplateFuncs(loc *time.Location) template.FuncMap {
	if loc == nil {
		loc = time.Local
	}
	return template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"markdown": utils.RenderMarkdown,
		// en-GB short date, e.g. 01/02/2024
		"formatDate": func(t time.Time) string {
			return t.In(loc).Format("02/01/2006")
		},
		// en-GB full date and short time, e.g. Thursday, 1 February 2024 at 09:30
		"formatDateTime": func(t time.Time) string {
			return t.In(loc).Format("Monday, 2 January 2006 at 15:04")
		},
		"isoDate": func(t time.Time) string {
			return t.In(loc).Format(utils.DayLayout)
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}
}

// LoadTemplates builds one template set per view: layouts, includes and
// components are shared, the view defines "content".
func LoadTemplates(templatesDir string, loc *time.Location) (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	var shared []string
	for _, dir := range []string{"layouts", "includes", "components"} {
		files, err := filepath.Glob(filepath.Join(templatesDir, dir, "*.html"))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", dir, err)
		}
		shared = append(shared, files...)
	}
	if len(shared) == 0 {
		return nil, fmt.Errorf("no layouts found in %s", templatesDir)
	}

	funcs := TemplateFuncs(loc)
	for _, view := range views {
		files := append(append([]string{}, shared...), filepath.Join(templatesDir, "views", view))
		tmpl, err := template.New(filepath.Base(files[0])).Funcs(funcs).ParseFiles(files...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", view, err)
		}
		r.Add(view, tmpl)
	}
	return r, nil
}
