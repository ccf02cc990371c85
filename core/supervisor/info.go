package supervisor

import (
	"stremio-service/core/process"
)

// ServerInfo describes a running server. It is a plain value; copies are independent.
type ServerInfo struct {
	Config  process.ServerConfig `json:"config"`
	Version string               `json:"version"`
	BaseURL string               `json:"base_url"`
}
