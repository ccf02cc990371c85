package api

import (
	"fmt"
	"net"
	"strconv"
)

// Config holds configuration for the local control API.
type Config struct {
	// Enabled starts the HTTP listener.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Host is the interface the API binds to.
	Host string `mapstructure:"host" default:"127.0.0.1"`
	// Port is the port where the API will listen.
	Port string `mapstructure:"port" default:"11471"`
	// ApiKey is the secret key required to access the API. Empty disables the check.
	ApiKey string `mapstructure:"api_key" default:""`
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// BaseURL returns the URL clients use to reach the API.
func (c Config) BaseURL() string {
	host := c.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, c.Port)
}

// Validate checks that the port is usable.
func (c Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid api port %q", c.Port)
	}
	return nil
}
