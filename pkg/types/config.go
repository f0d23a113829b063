package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "evidence-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the source discovery stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of articles in a final response (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// ResultsPerQuery bounds how many hits one provider call may return (default 5).
	ResultsPerQuery int `json:"results_per_query" yaml:"results_per_query"`

	// NewsAPIKey enables the keyword news provider when set.
	NewsAPIKey string `json:"news_api_key,omitempty" yaml:"news_api_key,omitempty"`

	// SerperAPIKey enables the metadata-rich web provider when set.
	SerperAPIKey string `json:"serper_api_key,omitempty" yaml:"serper_api_key,omitempty"`

	// EnableGoogleNews controls the keyless RSS provider (default true).
	EnableGoogleNews bool `json:"enable_google_news" yaml:"enable_google_news"`
}

// FetchConfig holds settings for the content fetcher.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// ExtractorAPIKey enables the structured extraction service when set.
	// Without it the fetcher goes straight to the direct-HTTP fallback.
	ExtractorAPIKey string `json:"extractor_api_key,omitempty" yaml:"extractor_api_key,omitempty"`

	// RenderWait is how long the extraction service should let dynamic
	// pages render before capturing (default 3s).
	RenderWait time.Duration `json:"render_wait" yaml:"render_wait"`

	// MinContentLen is the threshold below which extracted text counts as a
	// failed attempt (default 100).
	MinContentLen int `json:"min_content_len" yaml:"min_content_len"`

	// MaxContentLen caps fetched article text (default 10000). Longer text
	// is truncated with a marker.
	MaxContentLen int `json:"max_content_len" yaml:"max_content_len"`
}

// OracleConfig holds shared settings for stages that call the text-generation
// oracle (relevance scoring, recommendation, card cutting).
type OracleConfig struct {
	HTTPConfig `yaml:",inline"`

	// Model is the oracle model identifier.
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the oracle API. Scoring and
	// recommendation degrade to their local fallbacks without it.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxConcurrent bounds parallel oracle calls during ranking (default 4).
	MaxConcurrent int `json:"max_concurrent" yaml:"max_concurrent"`
}

// ServeConfig holds settings for the HTTP serving mode.
type ServeConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`
}

// StoreConfig holds settings for the evidence-card store.
type StoreConfig struct {
	// Dir is the directory holding the store database (default "evidence").
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of listed cards (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Search SearchConfig `json:"search" yaml:"search"`
	Fetch  FetchConfig  `json:"fetch" yaml:"fetch"`
	Oracle OracleConfig `json:"oracle" yaml:"oracle"`
	Serve  ServeConfig  `json:"serve" yaml:"serve"`
	Store  StoreConfig  `json:"store" yaml:"store"`
}
