/*
Package post defines the Post record and the read-only Content Store contract
consumed by the rendering core.

# Records

A Post carries two fragment pairs:

  - excerpt: html_excerpt + js_excerpt, rendered on the listing view
  - full:    html_content + js_content, rendered on the detail view

Any fragment may be NULL. Only rows with status "published" are ever rendered.

# Store

Store is implemented by the adapters under internal/store (memory, sqlstore,
rest, cache). GetBySlug reports a missing or unpublished slug with ErrNotFound,
which callers treat as a redirect rather than a failure.
*/
package post
