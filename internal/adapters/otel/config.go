package otel

// Config holds OTEL exporter configuration. Loaded from EXPERIMENTER_OTEL_*
// by the config package.
type Config struct {
	Endpoint string `envconfig:"ENDPOINT"`
	Enabled  bool   `envconfig:"ENABLED"`
	Insecure bool   `envconfig:"INSECURE"`
}
