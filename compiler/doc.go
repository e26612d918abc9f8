// Package compiler turns a catalog into files on disk: IIIF manifests
// bucketed by identifier, HTML (and optionally Markdown) pages routed by
// artifact type, CSV index tables, a property index and a graph dump.
//
// Every compiler walks the catalog's entity list and continues past
// per-entity failures, logging each one. A Result reports how many files
// were written, skipped or failed. Written files are handed to the
// configured Sinks.
package compiler
