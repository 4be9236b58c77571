package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

//go:embed templates/*.html
var templateFS embed.FS

// PrincipalContextKey is where the session gate stores the signed-in principal
const PrincipalContextKey = "principal"

const layoutFile = "templates/layout.html"

// Renderer renders the embedded page templates inside the shared layout
type Renderer struct {
	pages map[string]*template.Template
}

// Page is what every template receives
type Page struct {
	User    interface{}
	Flashes []Flash
	Data    interface{}
}

// NewRenderer parses every page template
func NewRenderer() (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		name := strings.TrimSuffix(path.Base(file), ".html")
		tmpl, err := template.New(path.Base(layoutFile)).Funcs(funcs).ParseFS(templateFS, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// Render implements echo.Renderer
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	page := Page{Data: data}
	if c != nil {
		page.User = c.Get(PrincipalContextKey)
		page.Flashes = Flashes(c)
	}
	return tmpl.ExecuteTemplate(w, path.Base(layoutFile), page)
}

// Has reports whether a page template exists
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

var funcs = template.FuncMap{
	"money":     money,
	"date":      formatDate,
	"datetime":  formatDateTime,
	"deref":     deref,
	"uploadURL": uploadURL,
}

func money(v interface{}) string {
	switch d := v.(type) {
	case decimal.Decimal:
		return d.StringFixed(2)
	case decimal.NullDecimal:
		if !d.Valid {
			return ""
		}
		return d.Decimal.StringFixed(2)
	default:
		return fmt.Sprint(v)
	}
}

func formatDate(v interface{}) string {
	switch d := v.(type) {
	case datatypes.Date:
		return time.Time(d).Format("2006-01-02")
	case *datatypes.Date:
		if d == nil {
			return ""
		}
		return time.Time(*d).Format("2006-01-02")
	case time.Time:
		return d.Format("2006-01-02")
	default:
		return ""
	}
}

func formatDateTime(v interface{}) string {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format("2006-01-02 15:04")
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.UTC().Format("2006-01-02 15:04")
	default:
		return ""
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// uploadURL turns a stored upload path into the URL it is served at
func uploadURL(stored *string) string {
	if stored == nil || *stored == "" {
		return ""
	}
	return "/" + strings.TrimPrefix(*stored, "/")
}
