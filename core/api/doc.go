// Package api holds the configuration of the local control API.
//
// The control API is a small Fiber application bound to loopback by default. It lets the tray
// layer and the ctl command drive the supervisor and read the latest status snapshot.
//
// # Configuration
//
// The Config struct defines the bind host, the port, and an optional API key that must be sent
// in the X-API-Key header.
package api
