// Package publish provides compiler sinks that push compiled output to an
// S3-compatible bucket and announce it on NATS.
package publish
