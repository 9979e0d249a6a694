package httpcontroller

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

	"github.com/sofi-fitness/studio-landing/internal/logger"
	"github.com/sofi-fitness/studio-landing/internal/observability/metrics"
)

//go:embed views
var ViewsFs embed.FS

// layoutTemplate is the entry point of every page; pages define "content".
const layoutTemplate = "layout"

// TemplateRenderer renders pages from per-page template sets so that every
// page can define its own "content" block on top of the shared layout.
type TemplateRenderer struct {
	pages   map[string]*template.Template
	metrics *metrics.HTTPMetrics
}

// Render renders the page name with data.
func (t *TemplateRenderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	tmpl, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	start := time.Now()
	err := tmpl.ExecuteTemplate(w, layoutTemplate, data)
	t.metrics.RecordTemplateRender(name, time.Since(start).Seconds(), err)
	return err
}

// Has reports whether a page template exists.
func (t *TemplateRenderer) Has(name string) bool {
	_, ok := t.pages[name]
	return ok
}

// setupTemplateRenderer configures the template renderer for the server
func (s *Server) setupTemplateRenderer() error {
	renderer, err := newTemplateRenderer(ViewsFs, s.GetTemplateFunctions())
	if err != nil {
		return err
	}
	if s.Metrics != nil {
		renderer.metrics = s.Metrics.HTTP
	}
	s.Echo.Renderer = renderer

	if result, err := ValidateTemplates(ViewsFs, "views"); err != nil {
		s.log.Warn("template validation failed", logger.Error(err))
	} else if result.HasIssues() {
		s.log.Warn(result.String(), logger.Int("issues", len(result.Issues)))
	}
	return nil
}

// newTemplateRenderer parses views/layout.html and views/partials/*.html once
// and clones them for each views/pages/*.html file.
func newTemplateRenderer(fsys fs.FS, funcs template.FuncMap) (*TemplateRenderer, error) {
	base, err := template.New("").Funcs(funcs).ParseFS(fsys, "views/layout.html", "views/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(fsys, "views/pages/*.html")
	if err != nil {
		return nil, err
	}

	r := &TemplateRenderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".html")
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := clone.ParseFS(fsys, file); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		r.pages[name] = clone
	}
	return r, nil
}
