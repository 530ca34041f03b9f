// Package http contains the gin handlers of the host pages, the JSON views
// and the sandbox diagnostics endpoint.
//
// HTML routes redirect unknown posts to the listing; JSON routes answer 404
// with {"redirect":"/"}. A failing Content Store maps to 502 on both.
package http
