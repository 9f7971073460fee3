package profileapi

import "time"

// Config represents the configuration for the upstream profiles API client
type Config struct {
	// BaseURL is the upstream REST API base URL
	BaseURL string

	// Timeout bounds every request to the upstream
	Timeout time.Duration
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrInvalidRequest
	}
	return nil
}
