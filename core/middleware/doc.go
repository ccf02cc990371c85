// Package middleware contains HTTP middleware for the Fiber control API.
//
// It provides cross-cutting concerns that sit between the request and the handler.
//
// # Components
//
//   - Auth: Implements API key validation to protect endpoints.
//   - RayID: Generates a unique Request ID (RayID) for every incoming request,
//     injecting it into the context and response headers for tracing.
//   - RequestLog: Logs every request through zap with its RayID.
//
// They are registered globally in the start command, RayID first.
package middleware
