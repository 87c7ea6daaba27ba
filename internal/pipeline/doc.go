// Package pipeline builds the fixed set of binary variants for every source
// file of a corpus.
//
// A run is all-or-nothing. Units are built one after another, each stage
// waits for its external process, and the first failing stage removes the
// whole output tree before the error is returned. Downstream analysis can
// therefore assume that every variant exists for every unit whenever an
// output tree exists at all.
package pipeline
