// Package endpoint discovers the HTTP address announced by the server on its standard output.
//
// The server prints a single sentinel line once it is listening:
//
//	EngineFS server started at http://127.0.0.1:11470
//
// Watch scans the output line by line and publishes the first valid URL into a Cell. A Cell is
// written at most once and can be awaited with a deadline by any number of readers.
package endpoint
