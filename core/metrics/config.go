package metrics

// Config holds configuration for metrics collection.
type Config struct {
	// Enabled turns on the Prometheus collector and the /metrics route.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Namespace prefixes every metric name.
	Namespace string `mapstructure:"namespace" default:"stremio_service"`
}
