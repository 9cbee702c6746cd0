package providers

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed pricing/*.yaml
var builtinPricing embed.FS

// LoadPricing reads a YAML pricing file and returns the provider configuration.
func LoadPricing(path string) (*ProviderConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pricing file %s: %w", path, err)
	}

	cfg, err := LoadPricingFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("pricing file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadPricingFromBytes parses and validates YAML pricing data.
func LoadPricingFromBytes(data []byte) (*ProviderConfig, error) {
	var cfg ProviderConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse pricing data: %w", err)
	}

	if cfg.Provider == "" {
		return nil, fmt.Errorf("missing provider name")
	}
	if len(cfg.Models) == 0 {
		return nil, fmt.Errorf("no models defined")
	}
	return &cfg, nil
}

// Builtin returns a registry populated with the price tables shipped in the binary.
func Builtin() (*Registry, error) {
	entries, err := builtinPricing.ReadDir("pricing")
	if err != nil {
		return nil, fmt.Errorf("read builtin pricing: %w", err)
	}

	r := NewRegistry()
	for _, e := range entries {
		data, err := builtinPricing.ReadFile("pricing/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read builtin pricing %s: %w", e.Name(), err)
		}
		cfg, err := LoadPricingFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("builtin pricing %s: %w", e.Name(), err)
		}
		r.Put(NewCatalog(cfg))
	}
	return r, nil
}

// LoadDir replaces or adds providers from every *.yaml file in dir.
// A missing directory is not an error.
func (r *Registry) LoadDir(dir string) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return fmt.Errorf("list pricing dir: %w", err)
	}
	sort.Strings(paths)

	for _, path := range paths {
		p, err := NewCatalogFromFile(path)
		if err != nil {
			return err
		}
		r.Put(p)
	}
	return nil
}
