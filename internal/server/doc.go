// Package server provides HTTP routing, middleware, and the job control endpoints.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [Recover] and [Logging] are registered by [Routes].
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Endpoints
//
//	GET  /        → index page listing the tables
//	POST /start   → {"worksheet": "<table>"}; 200 {"status":"started"} or 400 {"error":"Running"|"Invalid"}
//	GET  /status  → JobStatus snapshot
//	GET  /health  → {"status":"ok"}
//
// Clients observe a job by polling /status; there is no push channel.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
