package providers

import "fmt"

// Catalog is a Provider backed by a static price table.
type Catalog struct {
	config *ProviderConfig
	models map[string]ModelPricing
}

// NewCatalog creates a provider from a pricing config.
func NewCatalog(cfg *ProviderConfig) *Catalog {
	m := make(map[string]ModelPricing, len(cfg.Models))
	for _, model := range cfg.Models {
		m[model.Model] = model
	}
	return &Catalog{config: cfg, models: m}
}

// NewCatalogFromFile creates a provider from a YAML pricing file.
func NewCatalogFromFile(path string) (*Catalog, error) {
	cfg, err := LoadPricing(path)
	if err != nil {
		return nil, err
	}
	return NewCatalog(cfg), nil
}

func (c *Catalog) Name() string    { return c.config.Provider }
func (c *Catalog) Updated() string { return c.config.Updated }

func (c *Catalog) Models() []ModelPricing {
	return c.config.Models
}

func (c *Catalog) Lookup(model string) (ModelPricing, error) {
	pricing, ok := c.models[model]
	if !ok {
		return ModelPricing{}, fmt.Errorf("%s: unknown model %q", c.config.Provider, model)
	}
	return pricing, nil
}

func (c *Catalog) SupportsModel(model string) bool {
	_, ok := c.models[model]
	return ok
}
