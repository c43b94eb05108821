package templatex

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	LayoutTemplate          = "layout"
	FramesetTemplate        = "frameset"
	NotFoundContentTemplate = "content-404"
)

//go:embed templates/*.html
var builtin embed.FS

// Engine is a thin wrapper around Go templates with built-in defaults.
type Engine struct {
	templates *template.Template
	StaticDir string
}

// PageData represents the data model shared by every template.
type PageData struct {
	Title         string
	PageTitle     string
	SiteName      string
	Section       string
	Description   string
	ContentHTML   template.HTML
	Headings      []Heading
	ContentPane   string
	TOCPage       string
	Home          string
	RequestedPath string
	Generator     string
}

// Heading models a single heading for the in-page navigation.
type Heading struct {
	ID    string
	Text  string
	Level int
}

// Load instantiates an engine from the built-in templates. When templateDir is
// set, its *.html files and partials/*.html are parsed on top and replace any
// template of the same name. An assets/ directory inside templateDir becomes
// StaticDir.
func Load(templateDir string) (*Engine, error) {
	tpl, err := template.New("root").ParseFS(builtin, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse built-in templates: %w", err)
	}

	engine := &Engine{}
	templateDir = strings.TrimSpace(templateDir)
	if templateDir != "" {
		files, err := templateFiles(templateDir)
		if err != nil {
			return nil, err
		}
		if len(files) > 0 {
			if tpl, err = tpl.ParseFiles(files...); err != nil {
				return nil, fmt.Errorf("parse templates: %w", err)
			}
		}
		assetsPath := filepath.Join(templateDir, "assets")
		if info, err := os.Stat(assetsPath); err == nil && info.IsDir() {
			engine.StaticDir = assetsPath
		}
	}

	for _, name := range []string{LayoutTemplate, FramesetTemplate, NotFoundContentTemplate} {
		if tpl.Lookup(name) == nil {
			return nil, fmt.Errorf("template %q is not defined", name)
		}
	}
	engine.templates = tpl
	return engine, nil
}

func templateFiles(templateDir string) ([]string, error) {
	info, err := os.Stat(templateDir)
	if err != nil {
		return nil, fmt.Errorf("template directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template directory %s is not a directory", templateDir)
	}

	files, err := filepath.Glob(filepath.Join(templateDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("glob main templates: %w", err)
	}
	partials, err := filepath.Glob(filepath.Join(templateDir, "partials", "*.html"))
	if err != nil {
		return nil, fmt.Errorf("glob partial templates: %w", err)
	}
	files = append(files, partials...)
	sort.Strings(files)
	return files, nil
}

// Render executes the named template into w.
func (e *Engine) Render(w io.Writer, name string, data *PageData) error {
	if e.templates == nil {
		return fmt.Errorf("template engine not initialized")
	}
	return e.templates.ExecuteTemplate(w, name, data)
}
