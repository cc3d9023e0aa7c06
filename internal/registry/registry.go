// Package registry reads the service-registry document and checks it
// against the compatibility contract. Only the presence of service
// names is inspected; payloads are opaque to this tool.
package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Registry is the parsed service-registry document.
type Registry struct {
	Path     string
	Services map[string]any
}

// document is the preferred registry shape: entries keyed by service
// name under a top-level "services" map.
type document struct {
	Services map[string]any `yaml:"services"`
}

// Load parses the registry at path. YAML and JSON documents are both
// accepted. A document without a "services" key is treated as a bare
// map of service entries at the top level.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading registry %s: %w", path, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err == nil && doc.Services != nil {
		return &Registry{Path: path, Services: doc.Services}, nil
	}

	var bare map[string]any
	if err := yaml.Unmarshal(data, &bare); err != nil {
		return nil, fmt.Errorf("parsing registry %s: %w", path, err)
	}
	return &Registry{Path: path, Services: bare}, nil
}

// Empty returns a registry with no services, used when the document is
// missing or unreadable: every required service will report as absent.
func Empty(path string) *Registry {
	return &Registry{Path: path, Services: map[string]any{}}
}

// Has reports whether a service entry with the given name exists.
func (r *Registry) Has(name string) bool {
	_, ok := r.Services[name]
	return ok
}
