// Package variant enumerates the build configurations produced for every
// source file and the naming rules that tie an artifact on disk back to its
// configuration.
package variant

import "strings"

// Tag identifies one build configuration.
type Tag string

const (
	Base     Tag = "base"
	O0       Tag = "O0"
	O3       Tag = "O3"
	ClangO2  Tag = "clang_O2"
	Stripped Tag = "stripped"
	CFF      Tag = "cff"
	ELit     Tag = "elit"
)

// all is kept in build order.
var all = []Tag{Base, O0, O3, ClangO2, Stripped, CFF, ELit}

// All returns every tag in the order the pipeline builds them.
func All() []Tag {
	out := make([]Tag, len(all))
	copy(out, all)
	return out
}

func (t Tag) String() string { return string(t) }

// ArtifactName returns the file name of the artifact built from a source
// with the given base name, e.g. "1_clang_O2".
func ArtifactName(baseName string, t Tag) string {
	return baseName + "_" + string(t)
}

// Parse splits an artifact file name into its base name and tag. It returns
// false for names that do not end in a known tag or have an empty base.
func Parse(name string) (string, Tag, bool) {
	for _, t := range all {
		suffix := "_" + string(t)
		if strings.HasSuffix(name, suffix) && len(name) > len(suffix) {
			return strings.TrimSuffix(name, suffix), t, true
		}
	}
	return "", "", false
}
