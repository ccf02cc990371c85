// Package server exposes the supervisor lifecycle actions over the control API.
//
// Every action notifies the status poller once it completed, successful or not, so that
// subscribers see the new state without waiting for the next periodic poll.
//
// # Endpoints
//
//   - GET  /server: current phase and info
//   - POST /server/start
//   - POST /server/stop
//   - POST /server/restart
//
// Failures answer 500 with the supervisor error code, message and suggestion.
package server
