// Package server assembles the PostFrame HTTP server.
//
// Server lifecycle:
//  1. Initialize logger (production or development)
//  2. Open the content store selected by STORE_DRIVER, wrapped with metrics
//     and the optional redis cache
//  3. Start the sandbox emulator pool used by the diagnostics endpoint
//  4. Setup middleware and routes
//  5. Serve until Close, which drains requests and releases the store
//
// Routes:
//
//	GET /                            listing page
//	GET /p/:slug                     detail page (302 to / when unknown)
//	GET /static/host.js              browser frame controller
//	GET /api/posts                   listing as JSON
//	GET /api/posts/:slug             detail as JSON (404 {"redirect":"/"})
//	GET /api/posts/:slug/diagnostics emulated size reports per frame
//	GET /health, /metrics
package server
