package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path"

	"github.com/gin-gonic/gin/render"
	"go.uber.org/zap"
)

//go:embed templates
var embeddedTemplates embed.FS

const (
	layoutFile  = "layout.html"
	partialsDir = "partials"
	layoutName  = "layout"
)

// TemplateRenderer implements gin's render.HTMLRender. Each page template is
// parsed together with the layout and the shared partials. In debug mode
// templates are re-read from disk on every render.
type TemplateRenderer struct {
	logger  *zap.Logger
	debug   bool
	source  fs.FS
	funcMap template.FuncMap
	pages   map[string]*template.Template
}

// NewTemplateRenderer loads every page. With debug set and a non-empty
// templateDir the files are read from templateDir instead of the binary.
func NewTemplateRenderer(templateDir string, debug bool, logger *zap.Logger) (*TemplateRenderer, error) {
	var source fs.FS
	if debug && templateDir != "" {
		source = os.DirFS(templateDir)
	} else {
		sub, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			return nil, fmt.Errorf("failed to open embedded templates: %w", err)
		}
		source = sub
	}

	r := &TemplateRenderer{
		logger:  logger.Named("TemplateRenderer"),
		debug:   debug,
		source:  source,
		funcMap: FuncMap(),
	}
	pages, err := r.loadAll()
	if err != nil {
		return nil, err
	}
	r.pages = pages
	r.logger.Info("Templates loaded", zap.Int("pages", len(pages)), zap.Bool("debug", debug))
	return r, nil
}

func (r *TemplateRenderer) loadAll() (map[string]*template.Template, error) {
	names, err := fs.Glob(r.source, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == layoutFile {
			continue
		}
		tmpl, err := r.parsePage(name)
		if err != nil {
			return nil, err
		}
		pages[name] = tmpl
	}
	return pages, nil
}

func (r *TemplateRenderer) parsePage(name string) (*template.Template, error) {
	files := []string{layoutFile}
	partials, err := fs.Glob(r.source, path.Join(partialsDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to list partials: %w", err)
	}
	files = append(files, partials...)
	files = append(files, name)

	tmpl, err := template.New(name).Funcs(r.funcMap).ParseFS(r.source, files...)
	if err != nil {
		r.logger.Error("Failed to parse template", zap.String("template", name), zap.Error(err))
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return tmpl, nil
}

func (r *TemplateRenderer) lookup(name string) (*template.Template, error) {
	if r.debug {
		return r.parsePage(name)
	}
	tmpl, ok := r.pages[name]
	if !ok {
		return nil, fmt.Errorf("template %s not found", name)
	}
	return tmpl, nil
}

// Instance implements render.HTMLRender.
func (r *TemplateRenderer) Instance(name string, data any) render.Render {
	tmpl, err := r.lookup(name)
	return &pageRender{name: name, tmpl: tmpl, err: err, data: data, logger: r.logger}
}

type pageRender struct {
	name   string
	tmpl   *template.Template
	err    error
	data   any
	logger *zap.Logger
}

var htmlContentType = []string{"text/html; charset=utf-8"}

func (p *pageRender) Render(w http.ResponseWriter) error {
	p.WriteContentType(w)
	if p.err != nil {
		return p.err
	}
	if err := p.tmpl.ExecuteTemplate(w, layoutName, p.data); err != nil {
		p.logger.Error("Failed to execute template", zap.String("template", p.name), zap.Error(err))
		return fmt.Errorf("template execution failed for %s: %w", p.name, err)
	}
	return nil
}

func (p *pageRender) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if val := header["Content-Type"]; len(val) == 0 {
		header["Content-Type"] = htmlContentType
	}
}
