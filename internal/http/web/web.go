// Package web renders the HTML home page and the admin site.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"reflect"
	"time"

	"github.com/openfoodfacts/open-prices/internal/service"
	"github.com/openfoodfacts/open-prices/internal/version"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	// deref prints nil pointers as an empty cell.
	"deref": func(v any) any {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer {
			return v
		}
		if rv.IsNil() {
			return ""
		}
		return rv.Elem().Interface()
	},
	"datetime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format("2006-01-02 15:04")
	},
	"add": func(a, b int) int { return a + b },
}

// Site serves the home page and the admin pages.
type Site struct {
	svc    *service.Services
	tmpl   *template.Template
	logger *slog.Logger
}

// New parses the embedded templates.
func New(svc *service.Services, logger *slog.Logger) (*Site, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Site{svc: svc, tmpl: tmpl, logger: logger}, nil
}

// page is the data passed to every template.
type page struct {
	Title   string
	Version string
	Data    any
}

func (s *Site) render(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	s.renderStatus(w, r, http.StatusOK, name, title, data)
}

// renderStatus buffers the output so a template error still produces a clean 500.
func (s *Site) renderStatus(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	var buf bytes.Buffer
	err := s.tmpl.ExecuteTemplate(&buf, name, page{
		Title:   title,
		Version: version.Get().Short(),
		Data:    data,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Site) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("page failed", "path", r.URL.Path, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Home renders the landing page.
func (s *Site) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.render(w, r, "home", "Open Prices", nil)
}
