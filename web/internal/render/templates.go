package render

import (
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
)

// Version is stamped at build time via -ldflags
var Version = "dev"

// TemplateSet holds all parsed page templates.
// Each page is stored as a completely separate template.Template
// to avoid {{define "content"}} block collisions.
type TemplateSet struct {
	pages map[string]*template.Template
	mu    sync.RWMutex
}

// Execute renders the specified page template.
// pageName should be the filename like "upload.html". This always executes
// the "base" layout, which pulls in the {{define "content"}}, {{define
// "title"}}, etc. blocks from the specific page.
func (ts *TemplateSet) Execute(w io.Writer, pageName string, data interface{}) error {
	ts.mu.RLock()
	tmpl, ok := ts.pages[pageName]
	ts.mu.RUnlock()

	if !ok {
		return fmt.Errorf("template %q not found", pageName)
	}

	// Each page's template set has its own isolated "content", "title", etc.
	// definitions parsed together with base+components, so there's no collision
	return tmpl.ExecuteTemplate(w, "base.html", data)
}

// Has checks if a template exists
func (ts *TemplateSet) Has(pageName string) bool {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	_, ok := ts.pages[pageName]
	return ok
}

// Names returns all available template names
func (ts *TemplateSet) Names() []string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	names := make([]string, 0, len(ts.pages))
	for name := range ts.pages {
		names = append(names, name)
	}
	return names
}

// LoadTemplates parses and loads all HTML templates with custom functions.
// If path is empty, defaults to "web/templates".
// Returns a TemplateSet where each page is completely isolated.
func LoadTemplates(path string) (*TemplateSet, error) {
	if path == "" {
		path = "web/templates"
	}

	funcMap := template.FuncMap{
		"pct": func(v float64) string {
			return fmt.Sprintf("%.1f%%", v*100)
		},
		"add": func(a, b int) int {
			return a + b
		},
		"assetURL": func(filename string) string {
			return "/static/" + Version + "/" + filename
		},
		"title": func(s string) string {
			if s == "" {
				return ""
			}
			// Simple title case: capitalize first letter and lowercase the rest
			return strings.ToUpper(string(s[0])) + strings.ToLower(s[1:])
		},
		"initials": func(name string) string {
			words := strings.Fields(name)
			if len(words) == 0 {
				return "?"
			}

			var result strings.Builder
			for i, word := range words {
				if i >= 2 { // Maximum of 2 initials
					break
				}
				result.WriteString(strings.ToUpper(string(word[0])))
			}
			return result.String()
		},
	}

	// Get file paths
	baseFile := filepath.Join(path, "layouts", "base.html")
	componentFiles, err := filepath.Glob(filepath.Join(path, "components", "*.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to list component templates: %w", err)
	}

	pageFiles, err := filepath.Glob(filepath.Join(path, "pages", "*.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to list page templates: %w", err)
	}

	if len(pageFiles) == 0 {
		return nil, fmt.Errorf("no page templates found in %s/pages", path)
	}

	// Create template set
	ts := &TemplateSet{
		pages: make(map[string]*template.Template),
	}

	// Parse each page into its OWN completely isolated template
	for _, pageFile := range pageFiles {
		pageName := filepath.Base(pageFile)

		// Build list of files: base + components + this page ONLY
		filesToParse := []string{baseFile}
		filesToParse = append(filesToParse, componentFiles...)
		filesToParse = append(filesToParse, pageFile)

		pageTemplate, err := template.New("base").Funcs(funcMap).ParseFiles(filesToParse...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", pageName, err)
		}

		ts.pages[pageName] = pageTemplate
	}

	return ts, nil
}

// LogTemplateNames logs all available template names
func LogTemplateNames(ts *TemplateSet, log *slog.Logger) {
	log.Debug("templates loaded", slog.Any("names", ts.Names()))
}
