// Package app wires the dashboard server together: configuration,
// logging, OpenTelemetry, the service container, the chi router, and
// graceful lifecycle management.
//
// The Application owns a single HTTP server. Middleware ordering is
// RequestID, RealIP, OTel, StructuredLogger, Recoverer, SecurityHeaders,
// CORS, RateLimiter; the API subtree adds Timeout, problem+json panic
// recovery, and request body validation. The Prometheus scrape endpoint
// sits outside the middleware group.
package app
