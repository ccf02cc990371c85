// Package status observes the supervisor and publishes status snapshots.
//
// The Poller calls the cheap Status query every interval (30s by default, first poll one
// interval after start) and whenever Trigger is called after a lifecycle action. Each poll
// produces a Snapshot that is kept as the latest value and broadcast to subscribers.
//
// # Endpoints
//
//   - GET /status: latest snapshot
//   - GET /status/events: server-sent events, one "status" event per poll
package status
