// Package iiif talks to IIIF image servers and builds IIIF Presentation 3
// manifests.
//
// The image side is limited to what the compilers need: an existence probe
// against a service's info.json and URL templating for scaled renditions.
// The presentation side models the subset of the Presentation 3 document
// the compilers emit: a Manifest with metadata, a thumbnail and one Canvas
// per image, each painted by a single image annotation.
package iiif
