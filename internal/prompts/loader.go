// Package prompts holds the embedded prompt templates used for generation.
// Templates are keyed by name in generation.json and use {{.Key}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

//go:embed generation.json
var promptFiles embed.FS

const templateFile = "generation.json"

var placeholder = regexp.MustCompile(`\{\{\.([A-Za-z][A-Za-z0-9]*)\}\}`)

var load = sync.OnceValues(func() (map[string]string, error) {
	data, err := promptFiles.ReadFile(templateFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", templateFile, err)
	}
	var templates map[string]string
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", templateFile, err)
	}
	return templates, nil
})

// Get returns the raw template stored under key.
func Get(key string) (string, error) {
	templates, err := load()
	if err != nil {
		return "", err
	}
	tmpl, ok := templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, templateFile)
	}
	return tmpl, nil
}

// MustGet is Get for templates that must exist; it panics otherwise.
func MustGet(key string) string {
	tmpl, err := Get(key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return tmpl
}

// Format substitutes {{.Key}} placeholders in one pass. Placeholders without a
// value are left as they are, and substituted values are never rescanned.
func Format(template string, data map[string]string) string {
	out, _ := format(template, data)
	return out
}

// Render formats the template stored under key. Every placeholder in the
// template must have a value.
func Render(key string, data map[string]string) (string, error) {
	tmpl, err := Get(key)
	if err != nil {
		return "", err
	}
	out, missing := format(tmpl, data)
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt %q: no value for %s", key, strings.Join(missing, ", "))
	}
	return out, nil
}

// MustRender is Render for the built-in templates; it panics on error.
func MustRender(key string, data map[string]string) string {
	out, err := Render(key, data)
	if err != nil {
		panic(fmt.Sprintf("failed to render prompt: %v", err))
	}
	return out
}

func format(template string, data map[string]string) (string, []string) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(template, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		if v, ok := data[name]; ok {
			return v
		}
		missing = append(missing, name)
		return m
	})
	return out, missing
}

// Keys lists the available template names in sorted order.
func Keys() ([]string, error) {
	templates, err := load()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(templates))
	for key := range templates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Placeholders lists the distinct placeholder names used by the template under key.
func Placeholders(key string) ([]string, error) {
	tmpl, err := Get(key)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholder.FindAllStringSubmatch(tmpl, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names, nil
}
