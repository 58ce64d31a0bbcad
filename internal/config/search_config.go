package config

// SearchConfig tunes the search orchestrator
type SearchConfig struct {
	MaxResults int `json:"max_results,omitempty" yaml:"max_results,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultSearchConfig creates default search configuration
func NewDefaultSearchConfig() SearchConfig {
	return SearchConfig{
		MaxResults: DefaultSearchMaxResults,
	}
}
