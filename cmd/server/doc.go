// Command server serves PostFrame: a post listing of sandboxed excerpt frames
// and per-post detail pages with visualization and content frames, plus the
// JSON API and the diagnostics endpoint.
//
// Settings come from the environment (see internal/infrastructure/config);
// flags override them:
//
//	server -store memory -seed 'content/**/*.yaml'
//	server -store postgres -dsn postgres://localhost/blog -cache -redis localhost:6379
//	server -dev
//
// SIGINT or SIGTERM drains in-flight requests before exit.
package main
