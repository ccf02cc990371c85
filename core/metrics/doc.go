// Package metrics records supervisor activity.
//
// Collector is implemented by a no-op collector and by PrometheusCollector, which owns its own
// registry and exposes it through Handler. New picks the implementation from Config.
package metrics
