package providers

// ModelPricing contains per-model pricing information.
type ModelPricing struct {
	Model                 string  `yaml:"model"`
	InputPerMillion       float64 `yaml:"input_per_million"`
	OutputPerMillion      float64 `yaml:"output_per_million"`
	CachedInputPerMillion float64 `yaml:"cached_input_per_million,omitempty"`
}

// ProviderConfig holds YAML-loaded pricing data for a provider.
type ProviderConfig struct {
	Provider string         `yaml:"provider"`
	Updated  string         `yaml:"updated"`
	Models   []ModelPricing `yaml:"models"`
}

// Provider exposes the published prices of one LLM vendor.
type Provider interface {
	// Name returns the provider identifier (e.g., "openai", "anthropic").
	Name() string

	// Updated returns the date the price table was last revised.
	Updated() string

	// Models returns all known models with pricing, in file order.
	Models() []ModelPricing

	// Lookup returns the pricing of a single model.
	Lookup(model string) (ModelPricing, error)

	// SupportsModel reports whether this provider has pricing for the given model.
	SupportsModel(model string) bool
}
