package config

import "github.com/spf13/viper"

// Defaults
const (
	DefaultPort                   = 50051
	DefaultMaxWorkers             = 100
	DefaultLookupConcurrency      = 16
	DefaultUpstreamURL            = "https://api.firecloud.org"
	DefaultUpstreamTimeoutSeconds = 120
	DefaultRequestsPerSecond      = 10
	DefaultBurst                  = 5
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", DefaultPort)

	v.SetDefault("server.max_workers", DefaultMaxWorkers)
	v.SetDefault("server.lookup_concurrency", DefaultLookupConcurrency)

	v.SetDefault("upstream.base_url", DefaultUpstreamURL)
	v.SetDefault("upstream.timeout_seconds", DefaultUpstreamTimeoutSeconds)
	v.SetDefault("upstream.requests_per_second", DefaultRequestsPerSecond)
	v.SetDefault("upstream.burst", DefaultBurst)
	v.SetDefault("upstream.allow_private", false)

	v.SetDefault("log.json", false)
}

// BindSensitiveEnvVars explicitly binds sensitive configuration to environment variables
func BindSensitiveEnvVars(v *viper.Viper) {
	_ = v.BindEnv("upstream.token", "GRIPTERRA_UPSTREAM_TOKEN")
	_ = v.BindEnv("upstream.base_url", "GRIPTERRA_UPSTREAM_URL")
}
