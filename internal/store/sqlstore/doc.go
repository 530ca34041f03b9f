/*
Package sqlstore implements the Content Store on a SQL "posts" table through
sqlx.

Two drivers are supported: PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite,
pure Go). Queries are written once with "?" placeholders and rebound to the
driver's bindvar style when the store is created.

# Schema

	posts(id, title, slug UNIQUE, excerpt, html_excerpt, js_excerpt,
	      html_content, js_content, status, order_index, created_at, updated_at)

Only the columns the views consume are selected.
*/
package sqlstore
