package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Template is a named output layout with {{PLACEHOLDER}} tokens.
type Template struct {
	Format string `yaml:"format"`
	Body   string `yaml:"body"`
}

type templateFile struct {
	Templates map[string]Template `yaml:"templates"`
}

// LoadTemplates reads template presets from a YAML file:
//
//	templates:
//	  compact:
//	    format: html
//	    body: "<h1>{{TITLE}}</h1>"
//
// An empty path returns no templates.
func LoadTemplates(path string) (map[string]Template, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}

	var f templateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	for id, t := range f.Templates {
		if t.Format == "" {
			t.Format = "html"
		}
		if t.Format != "html" && t.Format != "text" {
			return nil, fmt.Errorf("template %q: unknown format %q", id, t.Format)
		}
		if t.Body == "" {
			return nil, fmt.Errorf("template %q: empty body", id)
		}
		f.Templates[id] = t
	}
	return f.Templates, nil
}
