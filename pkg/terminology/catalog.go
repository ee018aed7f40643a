package terminology

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Catalog is an optional YAML overlay of extra vocabulary, merged on top of
// the built-in tables at construction. Deployments ship region-specific
// term lists this way.
type Catalog struct {
	Conditions  map[string]string `yaml:"conditions" json:"conditions"`
	SystemTypes map[string]string `yaml:"system_types" json:"system_types"`
	Severities  map[string]string `yaml:"severities" json:"severities"`
}

func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return Catalog{}, nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Catalog{}, err
	}
	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return Catalog{}, err
	}
	if len(cat.Conditions)+len(cat.SystemTypes)+len(cat.Severities) == 0 {
		return Catalog{}, fmt.Errorf("terminology catalog %s is empty", path)
	}
	return cat, nil
}
