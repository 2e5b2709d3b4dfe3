package action

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFromBytes parses a single action template from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Action.
// Postcondition: Returns a validated *Action, or an error.
func LoadFromBytes(data []byte) (*Action, error) {
	var a Action
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing action YAML: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// LoadFromFile reads and validates one action template file.
//
// Precondition: path must point to a readable YAML file.
func LoadFromFile(path string) (*Action, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading action file %s: %w", path, err)
	}
	a, err := LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("action file %s: %w", path, err)
	}
	return a, nil
}

// LoadFromDir loads every *.yaml file in dir in lexicographic order.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all validated templates, or the first error
// encountered; duplicate action names are an error.
func LoadFromDir(dir string) ([]*Action, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading action dir %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Strings(paths)

	seen := make(map[string]string)
	var actions []*Action
	for _, p := range paths {
		a, err := LoadFromFile(p)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[a.Name]; dup {
			return nil, fmt.Errorf("action %q in %s duplicates %s", a.Name, p, prev)
		}
		seen[a.Name] = p
		actions = append(actions, a)
	}
	return actions, nil
}

// Registry holds shared action templates by name.
type Registry struct {
	templates map[string]*Action
}

// NewRegistry creates a Registry over the given templates.
//
// Precondition: template names must be unique.
func NewRegistry(templates []*Action) (*Registry, error) {
	m := make(map[string]*Action, len(templates))
	for _, t := range templates {
		if _, dup := m[t.Name]; dup {
			return nil, fmt.Errorf("action registry: duplicate name %q", t.Name)
		}
		m[t.Name] = t
	}
	return &Registry{templates: m}, nil
}

// Get returns the template with the given name.
//
// Postcondition: Returns (template, true) if found, or (nil, false).
func (r *Registry) Get(name string) (*Action, bool) {
	t, ok := r.templates[name]
	return t, ok
}

// Names returns all template names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.templates))
	for n := range r.templates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
