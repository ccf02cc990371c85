package supervisor

import (
	"time"

	"stremio-service/core/process"
	"stremio-service/core/settings"
)

// Config holds configuration for the server supervisor.
type Config struct {
	// Dir is the directory holding the runtime, ffmpeg, ffprobe and server.js.
	// Empty means the directory of the running executable.
	Dir string `mapstructure:"dir" default:""`
	// DisableCORS starts the server with NO_CORS=1.
	DisableCORS bool `mapstructure:"disable_cors" default:"false"`
	// GracePeriod is the wait after spawning before the endpoint is checked.
	GracePeriod time.Duration `mapstructure:"grace_period" default:"3s"`
	// SettlePeriod is the wait after killing the server.
	SettlePeriod time.Duration `mapstructure:"settle_period" default:"6s"`
	// EndpointTimeout is the extra wait for the endpoint after the grace period.
	EndpointTimeout time.Duration `mapstructure:"endpoint_timeout" default:"1s"`
	// ProbeTimeout bounds a single settings request.
	ProbeTimeout time.Duration `mapstructure:"probe_timeout" default:"5s"`
	// ProbeAttempts is the total number of settings requests per start.
	ProbeAttempts int `mapstructure:"probe_attempts" default:"1"`
	// ProbeBackoff is the pause between settings requests.
	ProbeBackoff time.Duration `mapstructure:"probe_backoff" default:"1s"`
	// Autostart starts the server together with the service.
	Autostart bool `mapstructure:"autostart" default:"true"`
	// RestartOnChange restarts a running server when its binaries change on disk.
	RestartOnChange bool `mapstructure:"restart_on_change" default:"false"`
	// ChangeDebounce groups bursts of file events into one restart.
	ChangeDebounce time.Duration `mapstructure:"change_debounce" default:"2s"`
}

// ServerConfig resolves and validates the binaries directory.
func (c Config) ServerConfig() (process.ServerConfig, error) {
	dir := c.Dir
	if dir == "" {
		d, err := process.DefaultDir()
		if err != nil {
			return process.ServerConfig{}, err
		}
		dir = d
	}
	return process.ConfigAtDir(dir, process.Features{DisableCORS: c.DisableCORS})
}

// Prober builds the settings prober described by c.
func (c Config) Prober() settings.Prober {
	return settings.Retry(settings.NewClient(c.ProbeTimeout), c.ProbeAttempts, c.ProbeBackoff)
}

// Options converts c into supervisor options.
func (c Config) Options() []Option {
	opts := []Option{WithProber(c.Prober())}
	if c.GracePeriod > 0 {
		opts = append(opts, WithGracePeriod(c.GracePeriod))
	}
	if c.SettlePeriod > 0 {
		opts = append(opts, WithSettlePeriod(c.SettlePeriod))
	}
	if c.EndpointTimeout > 0 {
		opts = append(opts, WithEndpointTimeout(c.EndpointTimeout))
	}
	return opts
}
