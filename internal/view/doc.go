/*
Package view assembles the listing and detail pages from Content Store records.

A page is a list of frame mounts: for every frame, the synthesized sandbox
document, its identifier and the sizing policy the host applies when the
sandbox reports its height. Pages are plain values; the HTTP layer renders
them as HTML (templates plus host.js) or JSON.

# Listing

One excerpt frame per published post, ordered by order_index, sized with the
listing policy (150px initial height, no floor) and placed in the grid column
span named by the first col-span-N class of the excerpt markup.

# Detail

A visualization frame (script only, when the post has a script) next to a
content frame (markup only), both sized with the detail policy, plus a
navigation strip of published posts. A missing slug yields ErrRedirect.
*/
package view
