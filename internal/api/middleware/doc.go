// Package middleware provides the HTTP middleware of the PostFrame server.
//
// Middleware stack includes:
//   - RequestID: uuid request ids echoed in X-Request-ID
//   - Logger: one zap line per request, level chosen by status
//   - CORS: cross-origin access to the read-only API
//   - RateLimit: per-IP token bucket rate limiting
//
// Rate Limiting:
//   - Per-IP tracking with idle client eviction
//   - Token bucket algorithm (golang.org/x/time/rate)
//   - Configurable RPS and burst capacity
//   - Global rate limiting option
//
// Example Usage:
//
//	router.Use(middleware.RequestID(), middleware.Logger(logger))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
