// Package similarity compares same-variant binaries of a finished build.
//
// Within every <task>/<group> directory of the output tree, each pair of
// artifacts sharing a variant tag is scored by external fuzzy-hashing and
// binary-diffing tools. A failing tool never aborts the sweep: the pair is
// recorded with an ERROR score and the sweep moves on.
package similarity
