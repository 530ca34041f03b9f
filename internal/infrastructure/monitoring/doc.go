/*
Package monitoring provides Prometheus metrics for the service.

# Overview

Every Metrics value owns its own registry, so several servers (and tests) can
run in one process without duplicate registration panics.

# Metrics

- HTTP requests (count, latency, response size) labelled by route template
- Content store calls, latency and errors per store and operation
- Cache hits and misses
- Frames rendered and synthesized document size per frame role
- Size reports and script errors observed by the sandbox emulator
- Go runtime, process and uptime

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "sql", "list_published")
	// ... perform operation ...
	timer.Stop("success")
*/
package monitoring
