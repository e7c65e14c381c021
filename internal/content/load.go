package content

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// file is the on-disk layout of a content definition file:
//
//	categories:
//	  unit: [Musketman, Dragoon, Cannon]
//	  building: [Stockade, Fort]
type file struct {
	Categories map[string][]string `yaml:"categories"`
}

// Load reads content tables from a YAML file
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Parse decodes content tables from YAML
func Parse(data []byte) (*Registry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}

	// sorted so errors are reported deterministically
	names := make([]string, 0, len(f.Categories))
	for name := range f.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	r := NewRegistry()
	for _, name := range names {
		c, err := ParseCategory(name)
		if err != nil {
			return nil, err
		}
		if err := r.Set(c, f.Categories[name]...); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Marshal encodes a registry back to YAML
func Marshal(r *Registry) ([]byte, error) {
	f := file{Categories: make(map[string][]string, len(r.tables))}
	for c, t := range r.tables {
		f.Categories[c.String()] = t.Identifiers()
	}
	return yaml.Marshal(&f)
}
