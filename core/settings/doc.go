// Package settings queries the running server for its version and public base URL.
//
// A probe is a single GET {endpoint}/settings request. The response body must look like:
//
//	{ "values": { "serverVersion": "4.20.8" }, "baseUrl": "http://127.0.0.1:11470" }
//
// Failures are reported as *SettingsError with one of four kinds: transport, status, decode or
// invalid. Probes never retry on their own; wrap a Prober with Retry to get bounded retries.
package settings
