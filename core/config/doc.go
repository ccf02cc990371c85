// Package config provides configuration management for the service.
//
// It utilizes Viper for loading configuration from environment variables and an optional .env file.
// Defaults come from the `default` struct tags of every section.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: binaries directory, CORS flag, grace/settle/endpoint timings, probe retries, autostart
//   - API: control API bind address and API key
//   - Status: status poll interval
//   - Metrics: Prometheus collector switch and namespace
//   - Log: Logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.GracePeriod)
package config
