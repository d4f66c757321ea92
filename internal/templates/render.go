// Package templates renders the HTML fragments patched into the
// dashboard over Datastar SSE.
package templates

import (
	"bytes"
	"html/template"
	"path/filepath"
	"strings"
)

// funcMap provides common template functions.
var funcMap = template.FuncMap{
	"upper": strings.ToUpper,
}

// Renderer manages HTML fragment templates.
type Renderer struct {
	templates *template.Template
}

// New creates a renderer from all *.html files under fragmentsDir.
func New(fragmentsDir string) (*Renderer, error) {
	pattern := filepath.Join(fragmentsDir, "*.html")
	tmpl, err := template.New("").Funcs(funcMap).ParseGlob(pattern)
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: tmpl}, nil
}

// Render renders a named template to a string.
func (r *Renderer) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToBuffer renders a named template into buf.
func (r *Renderer) RenderToBuffer(buf *bytes.Buffer, name string, data any) error {
	return r.templates.ExecuteTemplate(buf, name, data)
}
