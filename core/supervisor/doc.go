// Package supervisor runs the streaming server as a single supervised child process.
//
// # State machine
//
//	stopped --Start--> starting --ready--> running
//	   ^                  |                   |
//	   +----failure-------+                   |
//	   +----exit detected by Snapshot---------+
//	   +----stopping <--Stop------------------+
//	running --Restart--> restarting --> running | stopped
//
// # Start sequence
//
//  1. Spawn the runtime with server.js through the process.Launcher (SPAWN_FAILED on error)
//  2. Scan stdout for the endpoint sentinel in the background
//  3. Wait the grace period, aborting early if the process exits (NOT_READY)
//  4. Wait up to the endpoint timeout for the sentinel (NOT_READY)
//  5. Probe {endpoint}/settings (SETTINGS_FAILED)
//  6. Store the process and its ServerInfo as running
//
// A failed start always kills the spawned process before returning.
//
// # Concurrency
//
// Lifecycle calls are totally ordered. Two concurrent Start calls spawn exactly one process;
// the second one sees the running state and returns its info.
package supervisor
