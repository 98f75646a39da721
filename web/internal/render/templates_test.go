package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Templates live at <project>/web/templates; tests run from web/internal/render
func getTestTemplatesPath() string {
	return filepath.Join("..", "..", "templates")
}

func TestLoadTemplates(t *testing.T) {
	ts, err := LoadTemplates(getTestTemplatesPath())
	if err != nil {
		t.Fatalf("Failed to load templates: %v", err)
	}

	requiredTemplates := []string{
		"home.html",
		"login.html",
		"signup.html",
		"upload.html",
		"result.html",
	}

	for _, required := range requiredTemplates {
		if !ts.Has(required) {
			t.Errorf("Expected template %q to be loaded, but it wasn't found", required)
		}
	}
}

func TestTemplateSourceFileExists(t *testing.T) {
	templatesPath := getTestTemplatesPath()

	requiredFiles := map[string]string{
		"base layout":     filepath.Join(templatesPath, "layouts", "base.html"),
		"home page":       filepath.Join(templatesPath, "pages", "home.html"),
		"login page":      filepath.Join(templatesPath, "pages", "login.html"),
		"signup page":     filepath.Join(templatesPath, "pages", "signup.html"),
		"upload page":     filepath.Join(templatesPath, "pages", "upload.html"),
		"result page":     filepath.Join(templatesPath, "pages", "result.html"),
		"nav component":   filepath.Join(templatesPath, "components", "nav.html"),
		"flash component": filepath.Join(templatesPath, "components", "flash.html"),
	}

	for name, path := range requiredFiles {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Required template file %q does not exist at %s", name, path)
		} else if err != nil {
			t.Errorf("Error checking template file %q at %s: %v", name, path, err)
		}
	}
}

// Each page is parsed into an isolated template set, so executing one page
// must never pick up content blocks defined by another.
func TestTemplateIsolation(t *testing.T) {
	ts, err := LoadTemplates(getTestTemplatesPath())
	if err != nil {
		t.Fatalf("Failed to load templates: %v", err)
	}

	var buf bytes.Buffer
	data := map[string]interface{}{
		"LoggedIn":    true,
		"UserName":    "Ana",
		"CurrentPage": "upload",
	}

	if err := ts.Execute(&buf, "upload.html", data); err != nil {
		t.Fatalf("Failed to execute upload.html template: %v", err)
	}

	rendered := buf.String()
	if !strings.Contains(rendered, "Analyze an image") {
		t.Errorf("upload.html output missing its own content")
	}
	if strings.Contains(rendered, "Create an account") {
		t.Errorf("upload.html output contains signup.html content, template isolation is broken")
	}
}

func TestResultTemplateRendersMetrics(t *testing.T) {
	ts, err := LoadTemplates(getTestTemplatesPath())
	if err != nil {
		t.Fatalf("Failed to load templates: %v", err)
	}

	var buf bytes.Buffer
	data := map[string]interface{}{
		"LoggedIn":    true,
		"UserName":    "Ana",
		"CurrentPage": "upload",
		"Filename":    "dog.jpg",
		"Result": map[string]interface{}{
			"Objects":      []string{"dog", "ball"},
			"Metrics":      map[string]float64{"dog": 0.97, "ball": 0.81},
			"Accuracy":     0.89,
			"ObjectsCount": 2,
			"ImageURL":     "",
		},
	}

	if err := ts.Execute(&buf, "result.html", data); err != nil {
		t.Fatalf("Failed to execute result.html template: %v", err)
	}

	rendered := buf.String()
	for _, expected := range []string{"dog.jpg", "dog", "97.0%", "ball", "81.0%", "89.0%"} {
		if !strings.Contains(rendered, expected) {
			t.Errorf("result.html output missing %q", expected)
		}
	}
}

func TestUnknownTemplate(t *testing.T) {
	ts, err := LoadTemplates(getTestTemplatesPath())
	if err != nil {
		t.Fatalf("Failed to load templates: %v", err)
	}

	if err := ts.Execute(&bytes.Buffer{}, "nope.html", nil); err == nil {
		t.Error("expected an error for an unknown template")
	}
}
