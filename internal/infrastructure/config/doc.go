// Package config provides 12-factor configuration management for PostFrame.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host, CORS origins, gzip)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Store: Content store driver and its connection settings
//   - Cache: Redis read-through cache
//   - Frames: Frame sizing policy and sandbox document options
//   - Sandbox: Emulator pool used by the diagnostics endpoint
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST, CORS_ORIGINS, GZIP
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - STORE_DRIVER, STORE_DSN, STORE_SEED, STORE_URL, STORE_API_KEY, STORE_TIMEOUT
//   - CACHE_ENABLED, REDIS_ADDR, REDIS_PASSWORD, REDIS_DB, CACHE_TTL, CACHE_PREFIX
//   - FRAME_INITIAL_HEIGHT, FRAME_MIN_HEIGHT, FRAME_LOCK_VIZ, FRAME_TARGET_ORIGIN,
//     FRAME_STRICT_ORIGIN, FRAME_HOST_ORIGIN, FRAME_CSS_URL, FRAME_DRAWING_URL
//   - LIST_LIMIT, NAV_LIMIT
//   - SANDBOX_POOL_SIZE, SANDBOX_TIMEOUT, SANDBOX_SETTLE
package config
