// Package loader provides the plugin-like feature loading system.
//
// It allows the application to register and initialize features (modules) of the control API.
// Each feature implements the Feature interface, which defines its route registration logic.
//
// # Feature Interface
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// # Manager
//
// The Manager struct holds the registry of available features. It handles:
//   - Registration of features via Register()
//   - Loading of enabled features via LoadAll()
//
// Features such as 'server' (lifecycle actions) and 'status' (snapshots, events) are developed
// and tested in isolation and wired together in the start command.
package loader
