package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Templates live at <project>/web/templates; tests run from
// <project>/web/internal/render.
func testTemplatesPath() string {
	return filepath.Join("..", "..", "templates")
}

func TestLoadTemplates(t *testing.T) {
	ts, err := LoadTemplates(testTemplatesPath())
	if err != nil {
		t.Fatalf("Failed to load templates: %v", err)
	}

	requiredTemplates := []string{
		"home.html",
		"meals.html",
		"meal.html",
		"login.html",
		"register.html",
		"dashboard.html",
		"error.html",
	}

	for _, required := range requiredTemplates {
		if !ts.Has(required) {
			t.Errorf("Expected template %q to be loaded, but it wasn't found", required)
		}
	}

	names := ts.Names()
	if len(names) == 0 {
		t.Fatal("Expected at least one template to be loaded")
	}
	for _, name := range names {
		if name == "" {
			t.Error("Found empty template name")
		}
	}
}

func TestTemplateSourceFileExists(t *testing.T) {
	templatesPath := testTemplatesPath()

	requiredFiles := map[string]string{
		"base layout":           filepath.Join(templatesPath, "layouts", "base.html"),
		"home page":             filepath.Join(templatesPath, "pages", "home.html"),
		"meals page":            filepath.Join(templatesPath, "pages", "meals.html"),
		"meal detail page":      filepath.Join(templatesPath, "pages", "meal.html"),
		"login page":            filepath.Join(templatesPath, "pages", "login.html"),
		"navbar component":      filepath.Join(templatesPath, "components", "navbar.html"),
		"meal-card component":   filepath.Join(templatesPath, "components", "meal-card.html"),
		"review-card component": filepath.Join(templatesPath, "components", "review-card.html"),
	}

	for name, path := range requiredFiles {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Required template file %q does not exist at %s", name, path)
		} else if err != nil {
			t.Errorf("Error checking template file %q at %s: %v", name, path, err)
		}
	}
}

// Each page parses into its own isolated set, so one page's "content" block
// must never leak into another page's rendering.
func TestExecuteRendersTheRequestedPage(t *testing.T) {
	ts, err := LoadTemplates(testTemplatesPath())
	if err != nil {
		t.Fatalf("Failed to load templates: %v", err)
	}

	var buf bytes.Buffer
	data := map[string]interface{}{
		"Viewer":     nil,
		"Search":     "",
		"Order":      "",
		"Meals":      []interface{}{},
		"Page":       1,
		"TotalPages": 1,
	}
	if err := ts.Execute(&buf, "meals.html", data); err != nil {
		t.Fatalf("Failed to execute meals.html: %v", err)
	}

	out := buf.String()
	for _, expected := range []string{
		"Meals - Local Chef Bazaar",
		"All meals",
		"No meals match your search.",
	} {
		if !strings.Contains(out, expected) {
			t.Errorf("meals.html output missing %q", expected)
		}
	}

	// Content from other pages must not bleed in.
	for _, unexpected := range []string{
		"Featured meals",
		"Create account",
	} {
		if strings.Contains(out, unexpected) {
			t.Errorf("meals.html output contains content from another template: %q", unexpected)
		}
	}
}

func TestExecuteUnknownTemplate(t *testing.T) {
	ts, err := LoadTemplates(testTemplatesPath())
	if err != nil {
		t.Fatalf("Failed to load templates: %v", err)
	}

	var buf bytes.Buffer
	if err := ts.Execute(&buf, "nope.html", nil); err == nil {
		t.Error("Expected an error for an unknown template name")
	}
}

func TestTemplateFuncs(t *testing.T) {
	if got := Funcs["price"].(func(float64) string)(12.5); got != "$12.50" {
		t.Errorf("price(12.5) = %q", got)
	}

	stars := Funcs["stars"].(func(interface{}) string)
	if got := stars(4.6); got != "★★★★★" {
		t.Errorf("stars(4.6) = %q", got)
	}
	if got := stars(3); got != "★★★☆☆" {
		t.Errorf("stars(3) = %q", got)
	}
	if got := stars(-1.0); got != "☆☆☆☆☆" {
		t.Errorf("stars(-1.0) = %q", got)
	}

	initials := Funcs["initials"].(func(string) string)
	if got := initials("Jamila Osman"); got != "JO" {
		t.Errorf("initials(Jamila Osman) = %q", got)
	}
	if got := initials(""); got != "?" {
		t.Errorf("initials(empty) = %q", got)
	}

	shortDate := Funcs["shortDate"].(func(time.Time) string)
	if got := shortDate(time.Time{}); got != "" {
		t.Errorf("shortDate(zero) = %q", got)
	}

	until := Funcs["until"].(func(int) []int)
	if got := until(3); len(got) != 3 || got[2] != 2 {
		t.Errorf("until(3) = %v", got)
	}
}
