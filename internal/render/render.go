// Package render turns engine decisions into the prose an agent reads:
// intervention text, reframes, frustration relief, action plans and
// wellness assessments. Templates are embedded and parsed once.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates
var templateFS embed.FS

var funcMap = template.FuncMap{
	"sub":  func(a, b int) int { return a - b },
	"add":  func(a, b int) int { return a + b },
	"join": strings.Join,
}

var templates = template.Must(template.New("render").Funcs(funcMap).ParseFS(templateFS, "templates/*.tmpl"))

// Fill executes the named embedded template (file name without .tmpl).
func Fill(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name+".tmpl", data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func mustFill(name string, data any) string {
	s, err := Fill(name, data)
	if err != nil {
		// Embedded templates are covered by tests; a failure here is a bug.
		panic(err)
	}
	return s
}

// SelfReflection returns the PAUSE/ASSESS/REFRAME/ACT/LEARN protocol.
func SelfReflection() string {
	data, err := templateFS.ReadFile("templates/self_reflection.md")
	if err != nil {
		panic(err)
	}
	return strings.TrimSpace(string(data))
}
