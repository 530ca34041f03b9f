/*
Package document synthesizes the self-contained HTML documents loaded into
sandboxed frames.

# Overview

A document is built from one post.FragmentPair and a sandbox identifier:

 1. Head: viewport meta, the utility-class CSS framework and, on request, the
    2D drawing library. Both load before any fragment script runs.
 2. Body: the markup fragment verbatim, then the script fragment in its own
    block, then the measurement runtime in a separate block.
 3. Runtime: measures the document height, observes the body (and the first
    canvas) for resizes and posts {type:"resize", id, height} to the parent on
    load, on every resize and at each fallback delay.

# Trust boundary

Fragments are not sanitized. Isolation comes from the frame's sandbox
capability set, not from filtering. The only rewrite applied is to script
fragments, so they cannot terminate the enclosing script block early.

# Determinism

Synthesize is a pure function: identical inputs produce byte-identical output.
*/
package document
