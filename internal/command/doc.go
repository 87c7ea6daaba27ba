// Package command runs external programs from structured argument vectors.
// Each invocation is bounded by a wall-clock timeout and has its standard
// output and standard error captured rather than streamed, so a failure can
// be reported in full by the caller.
package command
