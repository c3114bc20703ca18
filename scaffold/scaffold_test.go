package scaffold

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"text/template"
)

// Every embedded file must parse as a Go text/template, since the
// scaffolder executes each one.
func TestTemplatesParse(t *testing.T) {
	err := fs.WalkDir(Templates, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		content, err := Templates.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if _, err := template.New(filepath.Base(path)).Parse(string(content)); err != nil {
			t.Errorf("parse %s: %v", path, err)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

// The gallery view must wire the instant uploader and expose management
// controls for all three media collections.
func TestGalleryViewCoversAllCollections(t *testing.T) {
	content, err := Templates.ReadFile("templates/views/views.templ.tmpl")
	if err != nil {
		t.Fatal(err)
	}
	views := string(content)

	for _, want := range []string{
		`fetch("/upload-image-instant"`,
		`"X-CSRF-Token"`,
		"page.Images",
		"page.Audio",
		"page.Video",
		`action="/toggle-visibility"`,
		`action="/delete-image"`,
		`action="/set-background"`,
	} {
		if !strings.Contains(views, want) {
			t.Errorf("views.templ.tmpl missing %q", want)
		}
	}
}
