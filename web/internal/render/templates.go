package render

import (
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gosimple/slug"
)

// TemplateSet holds all parsed page templates.
// Each page is stored as a completely separate template.Template
// to avoid {{define "content"}} block collisions.
type TemplateSet struct {
	pages map[string]*template.Template
	mu    sync.RWMutex
}

// Execute renders the specified page template. pageName is the filename like
// "meals.html"; the "base" layout is always the entry point and pulls the
// page's own "content" and "title" blocks.
func (ts *TemplateSet) Execute(w io.Writer, pageName string, data interface{}) error {
	ts.mu.RLock()
	tmpl, ok := ts.pages[pageName]
	ts.mu.RUnlock()

	if !ok {
		return fmt.Errorf("template %q not found", pageName)
	}

	return tmpl.ExecuteTemplate(w, "base", data)
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

// Funcs is the template function map. Exposed so tests can parse page
// snippets with the same helpers the server uses.
var Funcs = template.FuncMap{
	"sanitize":  SanitizeUGC,
	"mealSlug":  slug.Make,
	"add":       func(a, b int) int { return a + b },
	"sub":       func(a, b int) int { return a - b },
	"until": func(n int) []int {
		result := make([]int, n)
		for i := range result {
			result[i] = i
		}
		return result
	},
	"price": func(v float64) string {
		return fmt.Sprintf("$%.2f", v)
	},
	// stars accepts both aggregate (float64) and single-review (int) ratings.
	"stars": func(rating interface{}) string {
		var r float64
		switch v := rating.(type) {
		case float64:
			r = v
		case int:
			r = float64(v)
		}
		full := int(r + 0.5)
		if full < 0 {
			full = 0
		}
		if full > 5 {
			full = 5
		}
		return strings.Repeat("★", full) + strings.Repeat("☆", 5-full)
	},
	"shortDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("Jan 02, 2006")
	},
	"initials": func(name string) string {
		words := strings.Fields(name)
		if len(words) == 0 {
			return "?"
		}
		var b strings.Builder
		for i, word := range words {
			if i >= 2 {
				break
			}
			b.WriteString(strings.ToUpper(string(word[0])))
		}
		return b.String()
	},
}

// LoadTemplates parses all page templates under path (default
// "web/templates"). Each page is parsed into its own isolated set together
// with the base layout and shared components.
func LoadTemplates(path string) (*TemplateSet, error) {
	if path == "" {
		path = "web/templates"
	}

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

	ts := &TemplateSet{
		pages: make(map[string]*template.Template),
	}

	for _, pageFile := range pageFiles {
		pageName := filepath.Base(pageFile)

		filesToParse := []string{baseFile}
		filesToParse = append(filesToParse, componentFiles...)
		filesToParse = append(filesToParse, pageFile)

		pageTemplate, err := template.New("base").Funcs(Funcs).ParseFiles(filesToParse...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", pageName, err)
		}

		ts.pages[pageName] = pageTemplate
	}

	return ts, nil
}
