package process

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ServerScript is the entry script executed by the runtime.
const ServerScript = "server.js"

// Binaries holds the OS dependent file names expected in the binaries directory.
type Binaries struct {
	Runtime string
	FFmpeg  string
	FFprobe string
	Server  string
}

// BinariesFor returns the binary names for the given GOOS.
// Only linux, darwin and windows are supported.
func BinariesFor(goos string) (Binaries, error) {
	switch goos {
	case "linux", "darwin":
		return Binaries{
			Runtime: "stremio-runtime",
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
			Server:  ServerScript,
		}, nil
	case "windows":
		return Binaries{
			Runtime: "stremio-runtime.exe",
			FFmpeg:  "ffmpeg.exe",
			FFprobe: "ffprobe.exe",
			Server:  ServerScript,
		}, nil
	default:
		return Binaries{}, fmt.Errorf("operating system %s is not supported", goos)
	}
}

// Features are optional switches passed to the server process.
type Features struct {
	// DisableCORS turns off CORS checks in the server.
	DisableCORS bool
}

// ServerConfig is the validated set of paths needed to run the server.
// The zero value is not usable; build one with ConfigAtDir.
type ServerConfig struct {
	dir         string
	runtime     string
	ffmpeg      string
	ffprobe     string
	server      string
	disableCORS bool
}

// ConfigAtDir resolves all binaries inside dir and verifies they exist.
// Every missing file is reported, not only the first one.
func ConfigAtDir(dir string, features Features) (ServerConfig, error) {
	return configAtDir(dir, runtime.GOOS, features)
}

func configAtDir(dir, goos string, features Features) (ServerConfig, error) {
	bins, err := BinariesFor(goos)
	if err != nil {
		return ServerConfig{}, err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return ServerConfig{}, fmt.Errorf("failed to resolve binaries directory %q: %w", dir, err)
	}

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return ServerConfig{}, fmt.Errorf("the path %q does not exist or is not a directory", abs)
	}

	cfg := ServerConfig{
		dir:         abs,
		runtime:     filepath.Join(abs, bins.Runtime),
		ffmpeg:      filepath.Join(abs, bins.FFmpeg),
		ffprobe:     filepath.Join(abs, bins.FFprobe),
		server:      filepath.Join(abs, bins.Server),
		disableCORS: features.DisableCORS,
	}

	var errs []error
	for _, f := range []struct{ name, path string }{
		{"stremio runtime", cfg.runtime},
		{"ffmpeg", cfg.ffmpeg},
		{"ffprobe", cfg.ffprobe},
		{"server.js", cfg.server},
	} {
		if _, err := os.Stat(f.path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				errs = append(errs, fmt.Errorf("%s not found at: %s", f.name, f.path))
			} else {
				errs = append(errs, fmt.Errorf("%s: %w", f.name, err))
			}
		}
	}
	if len(errs) > 0 {
		return ServerConfig{}, fmt.Errorf("one or more binaries were not found: %w", errors.Join(errs...))
	}

	return cfg, nil
}

// DefaultDir returns the directory of the running executable.
func DefaultDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get current executable location: %w", err)
	}
	return filepath.Dir(exe), nil
}

// Dir is the directory the binaries were resolved in.
func (c ServerConfig) Dir() string { return c.dir }

// Runtime is the interpreter binary.
func (c ServerConfig) Runtime() string { return c.runtime }

// FFmpeg is the media decoding helper.
func (c ServerConfig) FFmpeg() string { return c.ffmpeg }

// FFprobe is the media probing helper.
func (c ServerConfig) FFprobe() string { return c.ffprobe }

// Server is the server entry script.
func (c ServerConfig) Server() string { return c.server }

// DisableCORS reports whether the server runs with CORS checks disabled.
func (c ServerConfig) DisableCORS() bool { return c.disableCORS }

// Paths returns the four required files in a fixed order.
func (c ServerConfig) Paths() []string {
	return []string{c.runtime, c.ffmpeg, c.ffprobe, c.server}
}

// IsZero reports whether c was not built by ConfigAtDir.
func (c ServerConfig) IsZero() bool {
	return c.runtime == ""
}

type serverConfigJSON struct {
	Dir         string `json:"dir"`
	Runtime     string `json:"runtime"`
	FFmpeg      string `json:"ffmpeg"`
	FFprobe     string `json:"ffprobe"`
	Server      string `json:"server"`
	DisableCORS bool   `json:"disable_cors"`
}

// MarshalJSON exposes the resolved paths.
func (c ServerConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(serverConfigJSON{
		Dir:         c.dir,
		Runtime:     c.runtime,
		FFmpeg:      c.ffmpeg,
		FFprobe:     c.ffprobe,
		Server:      c.server,
		DisableCORS: c.disableCORS,
	})
}
