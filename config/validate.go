package config

import "github.com/teranos/gripterra/errors"

// Validate checks the loaded configuration
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.Newf("port %d out of range", c.Port)
	}
	if c.Server.MaxWorkers <= 0 {
		return errors.Newf("server.max_workers must be positive, got %d", c.Server.MaxWorkers)
	}
	if c.Server.LookupConcurrency <= 0 {
		return errors.Newf("server.lookup_concurrency must be positive, got %d", c.Server.LookupConcurrency)
	}
	if c.Upstream.BaseURL == "" {
		return errors.WithHint(errors.New("upstream.base_url is empty"),
			"set upstream.base_url in the config file or GRIPTERRA_UPSTREAM_URL")
	}
	if c.Upstream.RequestsPerSecond < 0 {
		return errors.Newf("upstream.requests_per_second must not be negative, got %v", c.Upstream.RequestsPerSecond)
	}
	if c.Catalog != nil {
		if err := c.Catalog.Validate(); err != nil {
			return errors.Wrap(err, "invalid catalog")
		}
	}
	return nil
}
